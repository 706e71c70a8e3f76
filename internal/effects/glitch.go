package effects

import (
	"log"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

// Glitch drives the glitch pass: an occasional burst that may switch the
// pass into wild mode, followed by a residual that decays every tick.
type Glitch struct {
	cfg   params.Glitch
	block *params.Block
	clock Clock
	rng   Rand
	log   *log.Logger
	reset *deferred

	baseSmall float64
	baseBig   float64

	active      bool
	residual    float64
	triggered   bool
	lastTrigger time.Time
	wild        *modeOverride
}

// NewGlitch creates the effect. The amplitude bases are read from block now.
func NewGlitch(cfg params.Glitch, block *params.Block, deps Deps) *Glitch {
	deps = deps.withDefaults()
	return &Glitch{
		cfg:       cfg,
		block:     block,
		clock:     deps.Clock,
		rng:       deps.Rand,
		log:       deps.Log,
		reset:     newDeferred(deps.Clock, deps.Lock),
		baseSmall: block.SmallAmplitude,
		baseBig:   block.BigAmplitude,
	}
}

func (e *Glitch) Update(t Tick) {
	if !e.cfg.Enabled {
		return
	}

	if !e.active && e.intervalElapsed() && e.rng.Float64() < e.cfg.Probability {
		e.Trigger()
	}

	e.residual = decayLinear(e.residual, e.cfg.ResidualDecay, t.Delta)

	e.block.SmallAmplitude = e.baseSmall + e.residual*e.cfg.ResidualSmallAmplitude
	e.block.BigAmplitude = e.baseBig + e.residual*e.cfg.ResidualBigAmplitude
}

func (e *Glitch) intervalElapsed() bool {
	if !e.triggered {
		return true
	}
	elapsed := e.clock.Now().Sub(e.lastTrigger)
	return float64(elapsed)/float64(time.Millisecond) >= e.cfg.MinInterval
}

// Trigger starts a burst. Wild mode, if switched on, is put back to its
// previous value when the burst ends.
func (e *Glitch) Trigger() {
	e.active = true
	e.triggered = true
	e.lastTrigger = e.clock.Now()
	e.residual = 1.0

	e.wild.restore()
	e.wild = beginOverride(&e.block.GlitchWild)
	if e.rng.Float64() < e.cfg.GoWildProbability {
		e.wild.set(true)
		e.log.Printf("glitch burst (wild)")
	}

	e.reset.schedule(floorDelay(e.cfg.Duration, 20), func() {
		e.wild.restore()
		e.wild = nil
		e.active = false
	})
}

// Active reports whether a burst is in progress.
func (e *Glitch) Active() bool { return e.active }

// Residual returns the decaying after-effect intensity.
func (e *Glitch) Residual() float64 { return e.residual }

func (e *Glitch) Close() {
	e.reset.cancel()
	e.wild.restore()
	e.wild = nil
	e.active = false
}
