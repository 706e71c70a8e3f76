package effects

import (
	"math"

	"github.com/guidoenr/glitchbg/internal/params"
)

// BigJitter shakes the whole frame for a short wall-clock interval.
type BigJitter struct {
	cfg   params.BigJitter
	block *params.Block
	rng   Rand
	reset *deferred
}

// NewBigJitter creates the effect writing into block.
func NewBigJitter(cfg params.BigJitter, block *params.Block, deps Deps) *BigJitter {
	deps = deps.withDefaults()
	return &BigJitter{
		cfg:   cfg,
		block: block,
		rng:   deps.Rand,
		reset: newDeferred(deps.Clock, deps.Lock),
	}
}

func (e *BigJitter) Update(Tick) {
	if e.rng.Float64() < e.cfg.Probability {
		e.Trigger()
	}
}

// Trigger activates the shake; firing again restarts the reset timer.
func (e *BigJitter) Trigger() {
	e.block.BigActive = 1.0
	e.reset.schedule(floorDelay(math.Floor(e.cfg.Duration*1000), 10), func() {
		e.block.BigActive = 0.0
	})
}

// Active reports whether the shake is on.
func (e *BigJitter) Active() bool { return e.block.BigActive != 0 }

func (e *BigJitter) Close() {
	e.reset.cancel()
}
