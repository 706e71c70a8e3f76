package params

// InactiveCenter marks an unused stripe entry.
const InactiveCenter = -1.0

// Block is the parameter set handed to a frame sink every tick.
type Block struct {
	Time       float64    `json:"time"`
	Resolution [2]float64 `json:"resolution"`

	SmallAmplitude float64 `json:"smallAmplitude"`
	BigAmplitude   float64 `json:"bigAmplitude"`
	BigActive      float64 `json:"bigActive"`

	ScanlineIntensity float64 `json:"scanlineIntensity"`
	ScanlineFrequency float64 `json:"scanlineFrequency"`
	VignetteStrength  float64 `json:"vignetteStrength"`
	Saturation        float64 `json:"saturation"`

	RGBShiftRed   float64 `json:"rgbShiftRed"`
	RGBShiftGreen float64 `json:"rgbShiftGreen"`
	RGBShiftBlue  float64 `json:"rgbShiftBlue"`
	RGBPulse      float64 `json:"rgbPulse"`

	StripeCount   int                 `json:"stripeCount"`
	StripeCenters [MaxStripes]float64 `json:"stripeCenters"`
	StripeOffsets [MaxStripes]float64 `json:"stripeOffsets"`
	StripeWidths  [MaxStripes]float64 `json:"stripeWidths"`

	GlitchEnabled bool `json:"glitchEnabled"`
	GlitchWild    bool `json:"glitchWild"`
}

// NewBlock returns the block in its pre-animation state.
func (p Parameters) NewBlock() Block {
	b := Block{
		SmallAmplitude:    p.SubtleNoise.BaseAmplitude,
		BigAmplitude:      p.BigJitter.Amplitude,
		ScanlineIntensity: p.Scanline.Intensity,
		ScanlineFrequency: p.Scanline.Frequency,
		VignetteStrength:  p.Vignette.Strength,
		Saturation:        p.Saturation,
		GlitchEnabled:     p.Glitch.Enabled,
	}
	for i := range b.StripeCenters {
		b.StripeCenters[i] = InactiveCenter
		b.StripeWidths[i] = p.Stripe.Width
	}
	return b
}
