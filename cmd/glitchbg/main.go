package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/guidoenr/glitchbg/internal/app"
	"github.com/guidoenr/glitchbg/internal/params"
	"github.com/guidoenr/glitchbg/internal/render"
	"golang.org/x/term"
)

func main() {
	var (
		imagePath   = flag.String("image", "", "Background image (jpeg, png, gif, bmp, webp)")
		configPath  = flag.String("config", "", "Effect parameter overlay (.json or .toml)")
		backend     = flag.String("backend", app.BackendTerminal, "Output backend (terminal|sdl|web)")
		width       = flag.Int("width", 80, "Frame width (cells, or pixels for sdl)")
		height      = flag.Int("height", 24, "Frame height (cells, or pixels for sdl)")
		targetFPS   = flag.Float64("fps", 60, "Target frames per second")
		palette     = flag.String("palette", "halfblock", "Glyph palette ("+strings.Join(render.PaletteNames(), "|")+")")
		quality     = flag.String("quality", "balanced", "Render quality ("+strings.Join(render.QualityModeNames(), "|")+")")
		backdrop    = flag.String("backdrop", "nebula", "Procedural backdrop when no image is given ("+strings.Join(render.PatternNames(), "|")+")")
		tint        = flag.String("tint", "chromatic", "Backdrop tint ("+strings.Join(render.ColorModeNames(), "|")+")")
		noColor     = flag.Bool("no-color", false, "Disable ANSI color output")
		showStatus  = flag.Bool("status", true, "Display status bar")
		webPort     = flag.Int("web-port", 0, "Serve the websocket stream on this port (0 disables; web backend defaults to 8080)")
		profilePath = flag.String("profile", "", "Append per-frame timings to this CSV file")
		debug       = flag.Bool("debug", false, "Enable verbose logging")
		printConfig = flag.Bool("print-config", false, "Print the effective effect parameters and exit")
	)

	flag.Parse()

	logger := log.New(os.Stdout, "[glitchbg] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	p, err := params.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if *printConfig {
		name := *configPath
		if name == "" {
			name = "glitchbg.toml"
		}
		data, err := p.Encode(filepath.Base(name))
		if err != nil {
			logger.Fatalf("encode config: %v", err)
		}
		os.Stdout.Write(data)
		return
	}

	if *width <= 0 || *height <= 0 {
		logger.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}
	if *targetFPS <= 0 {
		logger.Fatalf("fps must be positive (got %.2f)", *targetFPS)
	}
	if *backend == app.BackendSDL && !render.SupportsSDL() {
		logger.Fatalf("sdl backend requires a build with -tags sdl")
	}

	if *backend == app.BackendTerminal {
		if fd := int(os.Stdout.Fd()); fd >= 0 {
			if w, h, err := term.GetSize(fd); err == nil {
				if w > 0 {
					*width = w
				}
				if h > 0 {
					*height = h
				}
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appConfig := app.Config{
		ImagePath:     *imagePath,
		Backdrop:      *backdrop,
		Tint:          *tint,
		Width:         *width,
		Height:        *height,
		TargetFPS:     *targetFPS,
		Backend:       *backend,
		Palette:       *palette,
		Quality:       *quality,
		UseANSI:       !*noColor,
		ShowStatusBar: *showStatus,
		WebPort:       *webPort,
		ProfilePath:   *profilePath,
		Params:        p,
		Log:           logger,
	}

	a, err := app.New(appConfig)
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}
