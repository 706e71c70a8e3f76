package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/guidoenr/glitchbg/internal/params"
)

type backendMode string
type qualityMode string

const (
	backendTerminal backendMode = "terminal"
	backendSDL      backendMode = "sdl"

	qualityHigh     qualityMode = "high"
	qualityBalanced qualityMode = "balanced"
	qualityEco      qualityMode = "eco"
)

// ErrRendererQuit is returned by Frame.Present when the output window was closed.
var ErrRendererQuit = errors.New("renderer closed")

var qualityModeNames = []string{
	string(qualityHigh),
	string(qualityBalanced),
	string(qualityEco),
}

// QualityModeNames returns the supported quality modes.
func QualityModeNames() []string {
	out := make([]string, len(qualityModeNames))
	copy(out, qualityModeNames)
	sort.Strings(out)
	return out
}

func parseQualityMode(name string) qualityMode {
	switch strings.ToLower(name) {
	case "eco", "low", "pi":
		return qualityEco
	case "balanced", "medium", "mid":
		return qualityBalanced
	case "high", "full", "max":
		return qualityHigh
	default:
		return qualityBalanced
	}
}

// Renderer applies the glitch transform to a background image and turns
// the result into terminal lines or an SDL texture.
type Renderer struct {
	width         int
	height        int
	backend       backendMode
	palette       []rune
	paletteName   string
	quality       qualityMode
	useANSI       bool
	source        image.Image
	backdrop      string
	tint          string
	cover         *pixmap
	shaded        *pixmap
	glitched      *pixmap
	glitch        *glitchPass
	uCoords       []float64
	vCoords       []float64
	statusBuilder strings.Builder
	sdl           *sdlState
}

// Frame contains the rendered output and optional status text. Present is
// set by windowed backends; terminal frames are printed from Lines.
type Frame struct {
	Lines   []string
	Status  string
	Present func(status string) error
}

var (
	resetANSI   = "\x1b[0m"
	fgANSICodes [256]string
	bgANSICodes [256]string
)

func init() {
	for i := range fgANSICodes {
		fgANSICodes[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
		bgANSICodes[i] = "\x1b[48;5;" + strconv.Itoa(i) + "m"
	}
}

// New creates a terminal Renderer. A nil source selects the procedural
// backdrop.
func New(width, height int, source image.Image, paletteName, qualityName string, useANSI bool) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d height=%d", width, height)
	}

	r := &Renderer{
		width:    width,
		height:   height,
		backend:  backendTerminal,
		useANSI:  useANSI,
		source:   source,
		backdrop: defaultPattern,
		tint:     string(colorModeChromatic),
		glitch:   newGlitchPass(),
	}
	r.SetQuality(qualityName)
	r.SetPalette(paletteName)
	return r, nil
}

// EnableSDL switches output to an SDL window of width x height pixels.
func (r *Renderer) EnableSDL() error {
	if err := r.initSDL(r.width, r.height); err != nil {
		return fmt.Errorf("sdl backend: %w", err)
	}
	r.invalidate()
	return nil
}

// SetPalette selects the glyph ramp. "halfblock" draws two pixels per cell
// with 256-color foreground and background.
func (r *Renderer) SetPalette(name string) {
	if name == "" {
		name = defaultPaletteName
	}
	name = strings.ToLower(name)
	r.palette = Palette(name)
	if r.paletteName != name {
		r.paletteName = name
		r.invalidate()
	}
}

// SetBackdrop changes the procedural backdrop used when no image is loaded.
func (r *Renderer) SetBackdrop(pattern, tint string) {
	pattern = strings.ToLower(pattern)
	if _, ok := patternRegistry[pattern]; !ok {
		pattern = defaultPattern
	}
	tint = string(parseColorMode(tint))
	if pattern == r.backdrop && tint == r.tint {
		return
	}
	r.backdrop = pattern
	r.tint = tint
	if r.source == nil {
		r.cover = nil
	}
}

// Resize updates the framebuffer dimensions.
func (r *Renderer) Resize(width, height int) {
	changed := false
	if width > 0 && r.width != width {
		r.width = width
		changed = true
	}
	if height > 0 && r.height != height {
		r.height = height
		changed = true
	}
	if changed {
		r.invalidate()
		r.resizeSDL()
	}
}

// Size reports the pixel dimensions the transform runs at.
func (r *Renderer) Size() (int, int) {
	if r.backend == backendTerminal && r.halfBlock() {
		return r.width, r.height * 2
	}
	return r.width, r.height
}

func (r *Renderer) PaletteName() string  { return r.paletteName }
func (r *Renderer) BackdropName() string { return r.backdrop }
func (r *Renderer) TintName() string     { return r.tint }
func (r *Renderer) QualityName() string  { return string(r.quality) }
func (r *Renderer) Backend() string      { return string(r.backend) }
func (r *Renderer) HasImage() bool       { return r.source != nil }

// SetQuality updates renderer quality preset.
func (r *Renderer) SetQuality(name string) {
	if name == "" {
		name = string(qualityBalanced)
	}
	mode := parseQualityMode(name)
	if mode != r.quality {
		r.quality = mode
		r.cover = nil
	}
}

// Close releases windowed resources.
func (r *Renderer) Close() error {
	return r.closeSDL()
}

func (r *Renderer) halfBlock() bool {
	return r.useANSI && r.paletteName == halfBlockPalette
}

func (r *Renderer) invalidate() {
	r.cover = nil
	r.uCoords = nil
	r.vCoords = nil
}

// Render runs the transform for one parameter block.
func (r *Renderer) Render(b params.Block, fps float64) Frame {
	w, h := r.Size()
	if w <= 0 || h <= 0 {
		return Frame{}
	}

	out := r.process(&b, w, h)
	status := r.buildStatus(&b, fps)

	if r.backend == backendSDL {
		return r.renderSDL(out, status)
	}

	var lines []string
	switch {
	case r.halfBlock():
		lines = encodeHalfBlocks(out, r.height)
	default:
		lines = encodeGlyphs(out, r.palette, r.useANSI)
	}
	return Frame{Lines: lines, Status: status}
}

// process produces the output frame for the current block.
func (r *Renderer) process(b *params.Block, w, h int) *pixmap {
	r.ensureSurface(w, h)

	src := r.cover
	dst := r.shaded
	us, vs := r.uCoords, r.vCoords
	bilinear := r.quality != qualityEco

	parallelRows(h, func(y int) {
		v := vs[y]
		for x := 0; x < w; x++ {
			cr, cg, cb := shade(src, us[x], v, b, bilinear)
			dst.set(x, y, cr, cg, cb)
		}
	})

	if r.glitch.step(b) {
		r.glitch.apply(dst, r.glitched, us, vs)
		return r.glitched
	}
	return dst
}

func (r *Renderer) ensureSurface(w, h int) {
	if r.cover == nil || r.cover.w != w || r.cover.h != h {
		var img *image.RGBA
		if r.source != nil {
			img = Cover(r.source, w, h, string(r.quality))
		} else {
			img = Backdrop(w, h, r.backdrop, r.tint, string(r.quality))
		}
		r.cover = pixmapFromImage(img)
	}
	if r.shaded == nil || r.shaded.w != w || r.shaded.h != h {
		r.shaded = newPixmap(w, h)
		r.glitched = newPixmap(w, h)
	}
	r.ensureCoordinateCache(w, h)
}

// ensureCoordinateCache stores pixel-center texture coordinates, v = 1 at the top.
func (r *Renderer) ensureCoordinateCache(width, height int) {
	if len(r.uCoords) != width {
		r.uCoords = make([]float64, width)
		scale := 1.0 / float64(width)
		for x := range r.uCoords {
			r.uCoords[x] = (float64(x) + 0.5) * scale
		}
	}
	if len(r.vCoords) != height {
		r.vCoords = make([]float64, height)
		scale := 1.0 / float64(height)
		for y := range r.vCoords {
			r.vCoords[y] = 1 - (float64(y)+0.5)*scale
		}
	}
}

// encodeHalfBlocks packs two pixel rows per line using the upper half block.
func encodeHalfBlocks(p *pixmap, rows int) []string {
	lines := make([]string, rows)
	parallelRows(rows, func(row int) {
		var builder strings.Builder
		builder.Grow(p.w * 12)
		lastFg, lastBg := -1, -1
		top, bottom := row*2, row*2+1
		for x := 0; x < p.w; x++ {
			fg := rgbToANSI(p.at(x, top))
			bg := rgbToANSI(p.at(x, bottom))
			if fg != lastFg {
				builder.WriteString(fgANSICodes[fg])
				lastFg = fg
			}
			if bg != lastBg {
				builder.WriteString(bgANSICodes[bg])
				lastBg = bg
			}
			builder.WriteRune('▀')
		}
		builder.WriteString(resetANSI)
		lines[row] = builder.String()
	})
	return lines
}

// encodeGlyphs maps luminance onto the palette, one pixel per cell.
func encodeGlyphs(p *pixmap, palette []rune, useANSI bool) []string {
	lines := make([]string, p.h)
	last := len(palette) - 1
	parallelRows(p.h, func(y int) {
		var builder strings.Builder
		builder.Grow(p.w * 8)
		lastColor := -1
		for x := 0; x < p.w; x++ {
			cr, cg, cb := p.at(x, y)
			lum := clamp01(cr*0.2126 + cg*0.7152 + cb*0.0722)
			if useANSI {
				if c := rgbToANSI(cr, cg, cb); c != lastColor {
					builder.WriteString(colorCode(c))
					lastColor = c
				}
			}
			builder.WriteRune(palette[clampInt(int(lum*float64(last)+0.5), 0, last)])
		}
		if useANSI {
			builder.WriteString(resetANSI)
		}
		lines[y] = builder.String()
	})
	return lines
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(fgANSICodes) {
		index = len(fgANSICodes) - 1
	}
	return fgANSICodes[index]
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = clamp01(h)
	s = clamp01(s)
	v = clamp01(v)

	if s == 0 {
		return v, v, v
	}

	hv := h * 6.0
	i := math.Floor(hv)
	f := hv - i
	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for near-neutral colors
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		gray := int(clampFloat(math.Round(r*23), 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func (r *Renderer) buildStatus(b *params.Block, fps float64) string {
	builder := &r.statusBuilder
	builder.Reset()
	builder.Grow(128)
	switch {
	case b.GlitchWild:
		builder.WriteString("GLITCH(WILD)")
	case b.BigActive > 0:
		builder.WriteString("JITTER")
	default:
		builder.WriteString("IDLE")
	}
	builder.WriteString(" | backend=")
	builder.WriteString(string(r.backend))
	builder.WriteString(" palette=")
	builder.WriteString(r.paletteName)
	builder.WriteString(" quality=")
	builder.WriteString(r.QualityName())
	if r.source == nil {
		builder.WriteString(" backdrop=")
		builder.WriteString(r.backdrop)
	}
	builder.WriteString(" | stripes ")
	builder.WriteString(strconv.Itoa(b.StripeCount))
	builder.WriteString(" rgb ")
	appendFloat(builder, b.RGBShiftRed*b.RGBPulse, 4)
	builder.WriteString(" noise ")
	appendFloat(builder, b.SmallAmplitude, 4)
	builder.WriteString(" fps ")
	appendFloat(builder, fps, 1)
	return builder.String()
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}
