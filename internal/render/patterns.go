package render

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"
)

type patternFunc func(x, y float64, octaves int) float64

type colorMode string

const (
	colorModeChromatic colorMode = "chromatic"
	colorModeFire      colorMode = "fire"
	colorModeAurora    colorMode = "aurora"
	colorModeMono      colorMode = "mono"

	defaultPattern = "nebula"
)

var patternRegistry = map[string]patternFunc{
	"plasma":  patternPlasma,
	"waves":   patternWaves,
	"ripples": patternRipples,
	"nebula":  patternNebula,
	"noise":   patternNoise,
}

// PatternNames returns the available backdrop identifiers.
func PatternNames() []string {
	names := make([]string, 0, len(patternRegistry))
	for name := range patternRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColorModeNames returns the supported backdrop tints.
func ColorModeNames() []string {
	return []string{
		string(colorModeAurora),
		string(colorModeChromatic),
		string(colorModeFire),
		string(colorModeMono),
	}
}

func parseColorMode(name string) colorMode {
	switch strings.ToLower(name) {
	case "fire":
		return colorModeFire
	case "aurora", "cool":
		return colorModeAurora
	case "mono", "monochrome", "bw", "gray":
		return colorModeMono
	default:
		return colorModeChromatic
	}
}

func noiseOctaves(q qualityMode) int {
	switch q {
	case qualityEco:
		return 2
	case qualityHigh:
		return 5
	default:
		return 4
	}
}

// Backdrop paints a still procedural image for runs without a background
// file. Coordinates are aspect-corrected so the pattern is not stretched;
// quality sets how many noise octaves are summed.
func Backdrop(width, height int, pattern, tint, quality string) *image.RGBA {
	fn, ok := patternRegistry[strings.ToLower(pattern)]
	if !ok {
		fn = patternRegistry[defaultPattern]
	}
	mode := parseColorMode(tint)
	octaves := noiseOctaves(parseQualityMode(quality))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	parallelRows(height, func(y int) {
		vy := (float64(y)/float64(height) - 0.5) * 3
		for x := 0; x < width; x++ {
			vx := (float64(x)/float64(width) - 0.5) * 3 * aspect
			base := clampFloat(fn(vx, vy, octaves), -1, 1)
			brightness := clamp01((base + 1) * 0.5)
			r, g, b := hsvToRGB(colorFromMode(mode, base, brightness))
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(r*255 + 0.5),
				G: uint8(g*255 + 0.5),
				B: uint8(b*255 + 0.5),
				A: 255,
			})
		}
	})
	return img
}

func colorFromMode(mode colorMode, base, brightness float64) (float64, float64, float64) {
	baseNorm := clamp01((base + 1.0) * 0.5)
	switch mode {
	case colorModeFire:
		return clamp01(0.02 + baseNorm*0.08), clamp01(0.7 + brightness*0.25), clamp01(0.2 + brightness*0.7)
	case colorModeAurora:
		return clamp01(0.45 + baseNorm*0.25), 0.7, clamp01(0.18 + brightness*0.75)
	case colorModeMono:
		return 0, 0, clamp01(0.1 + brightness*0.8)
	default:
		return clamp01(0.55 + baseNorm*0.35), 0.75, clamp01(0.15 + brightness*0.75)
	}
}

func patternPlasma(x, y float64, _ int) float64 {
	v1 := math.Sin((x*3.4 + 1.2) * 0.9)
	v2 := math.Sin((y*4.1 - 0.7) * 1.1)
	v3 := math.Sin((x+y)*2.3 + 1.7)
	return (v1 + v2 + v3) / 3.0
}

func patternWaves(x, y float64, _ int) float64 {
	const freq = 3.0
	return math.Sin(x*freq) * math.Cos(y*freq*1.1)
}

func patternRipples(x, y float64, _ int) float64 {
	r := math.Hypot(x, y)
	theta := math.Atan2(y, x)
	return math.Sin(r*8 + math.Sin(theta*3)*0.5)
}

func patternNebula(x, y float64, octaves int) float64 {
	base := patternPlasma(x*0.8, y*0.8, octaves)
	swirl := math.Sin((x - y) * 1.5)
	noise := fractalNoise(x*1.2, y*1.2, octaves)
	return base*0.6 + swirl*0.2 + noise*0.6
}

func patternNoise(x, y float64, octaves int) float64 {
	return fractalNoise(x*2.5, y*2.5, octaves)
}

func fractalNoise(x, y float64, octaves int) float64 {
	amp := 0.5
	freq := 1.0
	total := 0.0
	sumAmp := 0.0

	for i := 0; i < octaves; i++ {
		total += valueNoise2(x*freq, y*freq) * amp
		sumAmp += amp
		amp *= 0.5
		freq *= 2.0
	}

	if sumAmp == 0 {
		return 0
	}
	return (total/sumAmp)*2.0 - 1.0
}

func valueNoise2(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	x1 := x0 + 1.0
	y1 := y0 + 1.0

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	n00 := hash2(x0, y0)
	n10 := hash2(x1, y0)
	n01 := hash2(x0, y1)
	n11 := hash2(x1, y1)

	ix0 := lerp(n00, n10, sx)
	ix1 := lerp(n01, n11, sx)

	return lerp(ix0, ix1, sy)
}

func hash2(x, y float64) float64 {
	return frac(math.Sin(x*127.1+y*311.7) * 43758.5453123)
}

func smoothstep(v float64) float64 {
	return v * v * (3 - 2*v)
}

func frac(v float64) float64 {
	return v - math.Floor(v)
}
