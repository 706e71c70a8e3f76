// Package effects animates the glitch parameters: a stripe pool and four
// stochastic pulse effects, stepped by a Scheduler once per frame.
package effects

import (
	"io"
	"log"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Tick is the time information passed to every effect update, in seconds.
type Tick struct {
	Time  float64
	Delta float64
}

// Effect is a per-tick state machine writing into the shared block.
type Effect interface {
	Update(t Tick)
	Close()
}

// Deps are the collaborators shared by the effects of one scheduler.
// Lock guards the block and all effect state; deferred resets acquire it.
type Deps struct {
	Clock Clock
	Lock  sync.Locker
	Rand  Rand
	Log   *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Lock == nil {
		d.Lock = &sync.Mutex{}
	}
	if d.Rand == nil {
		d.Rand = newRand()
	}
	if d.Log == nil {
		d.Log = log.New(io.Discard, "", 0)
	}
	return d
}

func decayLinear(v, rate, dt float64) float64 {
	if v <= 0 {
		return v
	}
	v -= rate * dt
	if v < 0 {
		return 0
	}
	return v
}
