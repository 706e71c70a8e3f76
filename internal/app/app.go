package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/guidoenr/glitchbg/internal/effects"
	"github.com/guidoenr/glitchbg/internal/params"
	"github.com/guidoenr/glitchbg/internal/render"
	"github.com/guidoenr/glitchbg/internal/web"
	"golang.org/x/term"
)

// Output backends.
const (
	BackendTerminal = "terminal"
	BackendSDL      = "sdl"
	BackendWeb      = "web"
)

// Config configures the application runtime.
type Config struct {
	ImagePath     string
	Backdrop      string
	Tint          string
	Width         int
	Height        int
	TargetFPS     float64
	Backend       string
	Palette       string
	Quality       string
	UseANSI       bool
	ShowStatusBar bool
	WebPort       int
	ProfilePath   string
	Params        params.Parameters
	Log           *log.Logger
}

type inputEvent int

const (
	inputEventRandomize inputEvent = iota
	inputEventQuit
)

// App drives the effect scheduler from a frame ticker and fans each block
// out to the renderer and the web hub.
type App struct {
	cfg       Config
	scheduler *effects.Scheduler
	renderer  *render.Renderer
	web       *web.Server
	profiler  *profiler
	log       *log.Logger
	out       io.Writer

	width        int
	height       int
	renderHeight int
	start        time.Time
	last         time.Time
	fps          float64
	presentErr   error

	inputEvents     chan inputEvent
	rng             *rand.Rand
	paletteOptions  []string
	backdropOptions []string
	tintOptions     []string

	mu     sync.Mutex
	status web.Status
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	switch cfg.Backend {
	case "":
		cfg.Backend = BackendTerminal
	case BackendTerminal, BackendSDL, BackendWeb:
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Backend == BackendWeb && cfg.WebPort <= 0 {
		cfg.WebPort = 8080
	}

	renderHeight := cfg.Height
	if cfg.Backend == BackendTerminal && cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}

	a := &App{
		cfg:             cfg,
		log:             cfg.Log,
		out:             os.Stdout,
		width:           cfg.Width,
		height:          cfg.Height,
		renderHeight:    renderHeight,
		fps:             cfg.TargetFPS,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		paletteOptions:  render.PaletteNames(),
		backdropOptions: render.PatternNames(),
		tintOptions:     render.ColorModeNames(),
	}

	var background image.Image
	if cfg.ImagePath != "" {
		img, err := render.LoadImage(cfg.ImagePath)
		if err != nil {
			a.log.Printf("background unavailable, using %s backdrop: %v", orDefault(cfg.Backdrop, "procedural"), err)
			a.cfg.ImagePath = ""
		} else {
			background = img
		}
	}

	if cfg.Backend != BackendWeb {
		renderer, err := render.New(cfg.Width, renderHeight, background, cfg.Palette, cfg.Quality, cfg.UseANSI)
		if err != nil {
			return nil, err
		}
		renderer.SetBackdrop(cfg.Backdrop, cfg.Tint)
		if cfg.Backend == BackendSDL {
			if err := renderer.EnableSDL(); err != nil {
				return nil, err
			}
		}
		a.renderer = renderer
	}

	if cfg.WebPort > 0 {
		a.web = web.NewServer(a, a.log)
	}

	scheduler, err := effects.NewScheduler(effects.Config{
		Params:   cfg.Params,
		Sink:     effects.SinkFunc(a.render),
		Viewport: a.viewport,
		Log:      a.log,
	})
	if err != nil {
		a.closeRenderer()
		return nil, err
	}
	a.scheduler = scheduler
	a.profiler = newProfiler(cfg.ProfilePath, a.log)
	a.refreshStatus()
	return a, nil
}

// Run starts the frame loop until context cancellation or a quit key.
func (a *App) Run(ctx context.Context) error {
	frameDuration := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	terminal := a.cfg.Backend == BackendTerminal
	if terminal {
		enterAltScreen()
		clearScreen()
		hideCursor()
		defer func() {
			showCursor()
			exitAltScreen()
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.web != nil {
		go func() {
			if err := a.web.Start(runCtx, a.cfg.WebPort); err != nil {
				a.log.Printf("web: %v", err)
			}
		}()
	}

	a.startInputListener(runCtx)
	a.ensureDimensions()
	a.start = time.Now()
	a.last = a.start

	for {
		select {
		case <-ctx.Done():
			if terminal {
				moveCursorHome()
			}
			return ctx.Err()
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			switch evt {
			case inputEventRandomize:
				a.randomizeVisuals()
			case inputEventQuit:
				return nil
			}
		case <-ticker.C:
			if err := a.step(); err != nil {
				if errors.Is(err, render.ErrRendererQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Close stops every effect timer and releases held resources.
func (a *App) Close() error {
	a.scheduler.Close()
	err := a.closeRenderer()
	if perr := a.profiler.Close(); err == nil {
		err = perr
	}
	return err
}

func (a *App) closeRenderer() error {
	if a.renderer == nil {
		return nil
	}
	return a.renderer.Close()
}

// Snapshot returns the most recent parameter block.
func (a *App) Snapshot() params.Block { return a.scheduler.Snapshot() }

// Parameters returns the active tunables.
func (a *App) Parameters() params.Parameters { return a.scheduler.Parameters() }

// Status reports host state for the web hub.
func (a *App) Status() web.Status {
	a.mu.Lock()
	st := a.status
	a.mu.Unlock()
	st.Ticks = a.scheduler.Ticks()
	return st
}

func (a *App) step() error {
	a.ensureDimensions()

	now := time.Now()
	delta := now.Sub(a.last).Seconds()
	if delta > 0 {
		a.fps = a.fps*0.9 + (1.0/delta)*0.1
	}
	a.last = now

	a.profiler.beginFrame()
	a.scheduler.Tick(float64(now.Sub(a.start).Microseconds()) / 1000)
	a.profiler.endFrame()
	a.refreshStatus()

	err := a.presentErr
	a.presentErr = nil
	return err
}

// render is the scheduler sink. It runs on the ticker goroutine.
func (a *App) render(b params.Block) {
	a.profiler.markSection("effects")
	if a.web != nil {
		a.web.Publish(b)
	}
	if a.renderer == nil {
		return
	}

	frame := a.renderer.Render(b, a.fps)
	a.profiler.markSection("render")

	if frame.Present != nil {
		a.presentErr = frame.Present(frame.Status)
	} else {
		a.printFrame(frame)
	}
	a.profiler.markSection("present")
}

func (a *App) printFrame(frame render.Frame) {
	var builder strings.Builder
	builder.WriteString("\x1b[H")
	for _, line := range frame.Lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	if a.cfg.ShowStatusBar {
		builder.WriteString(statusBar(frame.Status, a.width))
	}
	io.WriteString(a.out, builder.String())
}

func (a *App) viewport() (int, int) {
	if a.renderer != nil {
		return a.renderer.Size()
	}
	return a.cfg.Width, a.cfg.Height
}

func (a *App) refreshStatus() {
	st := web.Status{
		FPS:     a.fps,
		Backend: a.cfg.Backend,
		Image:   a.cfg.ImagePath,
	}
	if a.renderer != nil {
		st.Palette = a.renderer.PaletteName()
		st.Quality = a.renderer.QualityName()
		if !a.renderer.HasImage() {
			st.Backdrop = a.renderer.BackdropName()
		}
	}
	a.mu.Lock()
	a.status = st
	a.mu.Unlock()
}

func (a *App) ensureDimensions() {
	if a.renderer == nil || a.cfg.Backend != BackendTerminal {
		return
	}
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}

	renderHeight := h
	if a.cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}
	if renderHeight <= 0 {
		renderHeight = 1
	}

	if w == a.width && h == a.height && renderHeight == a.renderHeight {
		return
	}

	a.width = w
	a.height = h
	a.renderHeight = renderHeight
	a.renderer.Resize(w, renderHeight)
	clearScreen()
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
				events <- inputEventQuit
				return
			case char == 'q' || char == 'Q':
				events <- inputEventQuit
				return
			case char == 'r' || char == 'R':
				select {
				case events <- inputEventRandomize:
				default:
				}
			}
		}
	}()
}

// randomizeVisuals picks a new palette, and a new backdrop when no image is loaded.
func (a *App) randomizeVisuals() {
	if a.renderer == nil {
		return
	}
	palette := a.renderer.PaletteName()
	if a.cfg.UseANSI && a.cfg.Backend == BackendTerminal {
		palette = pickRandom(a.paletteOptions, palette, a.rng)
		a.renderer.SetPalette(palette)
	}
	if a.renderer.HasImage() {
		a.log.Printf("Randomize visuals -> palette=%s", palette)
		return
	}
	backdrop := pickRandom(a.backdropOptions, a.renderer.BackdropName(), a.rng)
	tint := pickRandom(a.tintOptions, a.renderer.TintName(), a.rng)
	a.renderer.SetBackdrop(backdrop, tint)
	a.log.Printf("Randomize visuals -> palette=%s backdrop=%s tint=%s", palette, backdrop, tint)
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	return text + strings.Repeat(" ", padding)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func clearScreen() {
	fmt.Print("\x1b[2J")
	moveCursorHome()
}

func moveCursorHome() {
	fmt.Print("\x1b[H")
}

func hideCursor() {
	fmt.Print("\x1b[?25l")
}

func showCursor() {
	fmt.Print("\x1b[?25h")
}

func enterAltScreen() {
	fmt.Print("\x1b[?1049h")
}

func exitAltScreen() {
	fmt.Print("\x1b[?1049l\x1b[0m")
}

func pickRandom(options []string, current string, rng *rand.Rand) string {
	if len(options) == 0 {
		return current
	}
	if len(options) == 1 {
		return options[0]
	}
	var choice string
	for attempts := 0; attempts < 4; attempts++ {
		choice = options[rng.Intn(len(options))]
		if !strings.EqualFold(choice, current) {
			return choice
		}
	}
	return options[rng.Intn(len(options))]
}
