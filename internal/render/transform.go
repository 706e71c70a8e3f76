package render

import (
	"math"

	"github.com/guidoenr/glitchbg/internal/params"
)

// shade evaluates the cyberpunk transform for one pixel at (u, v).
// src must already be cover-cropped to the viewport.
func shade(src *pixmap, u, v float64, b *params.Block, bilinear bool) (float64, float64, float64) {
	// subtle wobble
	ox := math.Sin(v*30.0) * b.SmallAmplitude
	oy := math.Cos(u*20.0) * b.SmallAmplitude

	if b.BigActive != 0 {
		amp := b.BigAmplitude * b.BigActive
		ox += (hashNoise(u+b.Time, v+b.Time) - 0.5) * amp
		oy += (hashNoise(u*2-b.Time, v*2-b.Time) - 0.5) * amp
	}

	count := clampInt(b.StripeCount, 0, params.MaxStripes)
	for i := 0; i < count; i++ {
		center := b.StripeCenters[i]
		half := b.StripeWidths[i] * 0.5
		fadeIn := smoothstepRange(center-half, center, v)
		fadeOut := 1.0 - smoothstepRange(center, center+half, v)
		ox += b.StripeOffsets[i] * fadeIn * fadeOut
	}

	redShift := b.RGBShiftRed * b.RGBPulse
	greenShift := b.RGBShiftGreen * b.RGBPulse
	blueShift := b.RGBShiftBlue * b.RGBPulse

	r, _, _ := src.sample(u+ox+redShift, v+oy, bilinear)
	_, g, _ := src.sample(u+ox*0.6+greenShift, v+oy*0.6, bilinear)
	_, _, bl := src.sample(u+ox*0.2+blueShift, v+oy*0.2, bilinear)

	scan := math.Sin(v*b.Resolution[1]*b.ScanlineFrequency+b.Time*40.0) * b.ScanlineIntensity
	r -= scan
	g -= scan
	bl -= scan

	dist := math.Hypot(u-0.5, v-0.5)
	vig := smoothstepRange(0.8, 0.2, dist)
	factor := lerp(1.0-b.VignetteStrength, 1.0, vig)
	r *= factor
	g *= factor
	bl *= factor

	lum := r*0.2126 + g*0.7152 + bl*0.0722
	r = lerp(lum, r, b.Saturation)
	g = lerp(lum, g, b.Saturation)
	bl = lerp(lum, bl, b.Saturation)

	return r, g, bl
}

// hashNoise is the classic sin-dot hash, returning [0,1).
func hashNoise(x, y float64) float64 {
	return frac(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// smoothstepRange follows GLSL smoothstep, including reversed edges.
func smoothstepRange(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
