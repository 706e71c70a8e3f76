package effects

import (
	"math"

	"github.com/guidoenr/glitchbg/internal/params"
)

const rgbFireChance = 0.7

// RGBShift separates the color channels horizontally in short pulses.
type RGBShift struct {
	cfg   params.RGBShift
	block *params.Block
	rng   Rand

	pulse       float64
	lastTrigger float64
}

// NewRGBShift creates the effect writing into block.
func NewRGBShift(cfg params.RGBShift, block *params.Block, deps Deps) *RGBShift {
	deps = deps.withDefaults()
	return &RGBShift{cfg: cfg, block: block, rng: deps.Rand}
}

// Update fires when the minimum interval has passed, then decays the pulse.
func (e *RGBShift) Update(t Tick) {
	interval := 1.0 / math.Max(0.0001, e.cfg.TriggerRate)
	if t.Time-e.lastTrigger >= interval && e.rng.Float64() < rgbFireChance {
		e.Trigger(t.Time)
	}

	e.pulse = decayLinear(e.pulse, e.cfg.ResidualDecay, t.Delta)
	e.block.RGBPulse = e.pulse
}

// Trigger picks new channel offsets and restarts the pulse at full strength.
func (e *RGBShift) Trigger(now float64) {
	e.lastTrigger = now

	amplitude := uniform(e.rng, e.cfg.MinAmplitude, e.cfg.MaxAmplitude)
	e.block.RGBShiftRed = coinSign(e.rng) * amplitude
	e.block.RGBShiftGreen = coinSign(e.rng) * amplitude * 0.9
	e.block.RGBShiftBlue = coinSign(e.rng) * amplitude * 0.8

	e.pulse = 1.0
	e.block.RGBPulse = e.pulse
}

// Pulse returns the current envelope.
func (e *RGBShift) Pulse() float64 { return e.pulse }

func (e *RGBShift) Close() {}
