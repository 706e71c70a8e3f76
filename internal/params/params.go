package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// MaxStripes is the fixed length of the stripe arrays in a Block.
const MaxStripes = 8

// ErrInvalid is returned when a parameter table cannot be used.
var ErrInvalid = errors.New("invalid parameters")

// RGBShift tunes the per-channel color separation pulse.
type RGBShift struct {
	TriggerRate   float64 `json:"triggerRate" toml:"triggerRate"`
	ResidualDecay float64 `json:"residualDecay" toml:"residualDecay"`
	MinAmplitude  float64 `json:"minAmplitude" toml:"minAmplitude"`
	MaxAmplitude  float64 `json:"maxAmplitude" toml:"maxAmplitude"`
}

// BigJitter tunes the full-frame shake. Duration is in seconds.
type BigJitter struct {
	Probability float64 `json:"probability" toml:"probability"`
	Duration    float64 `json:"duration" toml:"duration"`
	Amplitude   float64 `json:"amplitude" toml:"amplitude"`
}

// SubtleNoise tunes the low amplitude wobble. Enhance durations are in milliseconds.
type SubtleNoise struct {
	BaseAmplitude      float64 `json:"baseAmplitude" toml:"baseAmplitude"`
	EnhancedMultiplier float64 `json:"enhancedMultiplier" toml:"enhancedMultiplier"`
	EnhanceProbability float64 `json:"enhanceProbability" toml:"enhanceProbability"`
	EnhanceMinDuration float64 `json:"enhanceMinDuration" toml:"enhanceMinDuration"`
	EnhanceMaxDuration float64 `json:"enhanceMaxDuration" toml:"enhanceMaxDuration"`
}

type Scanline struct {
	Intensity float64 `json:"intensity" toml:"intensity"`
	Frequency float64 `json:"frequency" toml:"frequency"`
}

type Vignette struct {
	Strength float64 `json:"strength" toml:"strength"`
}

// Stripe tunes the horizontal band distortions. Lifetimes are in seconds,
// decays are per frame at 60fps.
type Stripe struct {
	SpawnRate   float64 `json:"spawnRate" toml:"spawnRate"`
	MaxCount    int     `json:"maxCount" toml:"maxCount"`
	Width       float64 `json:"width" toml:"width"`
	MinLifetime float64 `json:"minLifetime" toml:"minLifetime"`
	MaxLifetime float64 `json:"maxLifetime" toml:"maxLifetime"`
	MinOffset   float64 `json:"minOffset" toml:"minOffset"`
	MaxOffset   float64 `json:"maxOffset" toml:"maxOffset"`
	OffsetDecay float64 `json:"offsetDecay" toml:"offsetDecay"`
	WidthDecay  float64 `json:"widthDecay" toml:"widthDecay"`
}

// Glitch tunes the glitch pass trigger. Duration and MinInterval are in milliseconds.
type Glitch struct {
	Enabled                bool    `json:"enabled" toml:"enabled"`
	Probability            float64 `json:"probability" toml:"probability"`
	Duration               float64 `json:"duration" toml:"duration"`
	MinInterval            float64 `json:"minInterval" toml:"minInterval"`
	ResidualDecay          float64 `json:"residualDecay" toml:"residualDecay"`
	GoWildProbability      float64 `json:"goWildProbability" toml:"goWildProbability"`
	ResidualSmallAmplitude float64 `json:"residualSmallAmplitude" toml:"residualSmallAmplitude"`
	ResidualBigAmplitude   float64 `json:"residualBigAmplitude" toml:"residualBigAmplitude"`
}

// Parameters is the static table of effect tunables.
type Parameters struct {
	RGBShift    RGBShift    `json:"rgbShift" toml:"rgbShift"`
	BigJitter   BigJitter   `json:"bigJitter" toml:"bigJitter"`
	SubtleNoise SubtleNoise `json:"subtleNoise" toml:"subtleNoise"`
	Scanline    Scanline    `json:"scanline" toml:"scanline"`
	Vignette    Vignette    `json:"vignette" toml:"vignette"`
	Saturation  float64     `json:"saturation" toml:"saturation"`
	Stripe      Stripe      `json:"stripe" toml:"stripe"`
	Glitch      Glitch      `json:"glitchPass" toml:"glitchPass"`
	MaxStripes  int         `json:"maxStripes" toml:"maxStripes"`
}

// Defaults returns the tuned values the site shipped with.
func Defaults() Parameters {
	return Parameters{
		RGBShift: RGBShift{
			TriggerRate:   0.45,
			ResidualDecay: 18.0,
			MinAmplitude:  0.006,
			MaxAmplitude:  0.012,
		},
		BigJitter: BigJitter{
			Probability: 0.014,
			Duration:    0.21658,
			Amplitude:   0.02,
		},
		SubtleNoise: SubtleNoise{
			BaseAmplitude:      0.0,
			EnhancedMultiplier: 2.5,
			EnhanceProbability: 0.006,
			EnhanceMinDuration: 200,
			EnhanceMaxDuration: 600,
		},
		Scanline: Scanline{
			Intensity: 0.12,
			Frequency: 1.5,
		},
		Vignette: Vignette{
			Strength: 0.6,
		},
		Saturation: 1.0,
		Stripe: Stripe{
			SpawnRate:   0.018,
			MaxCount:    3,
			Width:       0.00725,
			MinLifetime: 0.2,
			MaxLifetime: 0.8,
			MinOffset:   0.04,
			MaxOffset:   0.22,
			OffsetDecay: 0.98,
			WidthDecay:  0.97,
		},
		Glitch: Glitch{
			Enabled:                true,
			Probability:            0.001,
			Duration:               120,
			MinInterval:            3000,
			ResidualDecay:          1.6,
			GoWildProbability:      0.2,
			ResidualSmallAmplitude: 0.0,
			ResidualBigAmplitude:   0.0,
		},
		MaxStripes: MaxStripes,
	}
}

// Validate reports tables the block layout cannot represent.
func (p Parameters) Validate() error {
	if p.MaxStripes < 1 || p.MaxStripes > MaxStripes {
		return fmt.Errorf("%w: maxStripes=%d must be within 1..%d", ErrInvalid, p.MaxStripes, MaxStripes)
	}
	if p.Stripe.MaxCount < 0 || p.Stripe.MaxCount > p.MaxStripes {
		return fmt.Errorf("%w: stripe.maxCount=%d must be within 0..%d", ErrInvalid, p.Stripe.MaxCount, p.MaxStripes)
	}
	if p.Stripe.Width <= 0 {
		return fmt.Errorf("%w: stripe.width must be positive (got %g)", ErrInvalid, p.Stripe.Width)
	}
	return nil
}

// Load overlays the file at path on top of Defaults. The format is picked
// from the extension: .toml, otherwise JSON.
func Load(path string) (Parameters, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &p); err != nil {
			return p, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Encode writes the table in the format matching the extension of name.
func (p Parameters) Encode(name string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(p); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return json.MarshalIndent(p, "", "  ")
}
