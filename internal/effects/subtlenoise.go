package effects

import (
	"math"

	"github.com/guidoenr/glitchbg/internal/params"
)

// SubtleNoise briefly multiplies the small wobble amplitude.
type SubtleNoise struct {
	cfg   params.SubtleNoise
	block *params.Block
	rng   Rand
	reset *deferred
}

// NewSubtleNoise creates the effect writing into block.
func NewSubtleNoise(cfg params.SubtleNoise, block *params.Block, deps Deps) *SubtleNoise {
	deps = deps.withDefaults()
	return &SubtleNoise{
		cfg:   cfg,
		block: block,
		rng:   deps.Rand,
		reset: newDeferred(deps.Clock, deps.Lock),
	}
}

func (e *SubtleNoise) Update(Tick) {
	if e.rng.Float64() < e.cfg.EnhanceProbability {
		e.Enhance()
	}
}

// Enhance multiplies whatever amplitude is current and schedules a revert
// to that same value, so it compounds with other writers of SmallAmplitude.
func (e *SubtleNoise) Enhance() {
	e.reset.cancel()

	baseline := e.block.SmallAmplitude
	e.block.SmallAmplitude = baseline * e.cfg.EnhancedMultiplier

	ms := math.Floor(uniform(e.rng, e.cfg.EnhanceMinDuration, e.cfg.EnhanceMaxDuration))
	e.reset.schedule(floorDelay(ms, 1), func() {
		e.block.SmallAmplitude = baseline
	})
}

// Enhanced reports whether a revert is pending.
func (e *SubtleNoise) Enhanced() bool { return e.reset.pending() }

func (e *SubtleNoise) Close() {
	e.reset.cancel()
}
