package effects

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// deferred owns at most one pending wall-clock callback. Callbacks run
// with lock held; schedule and cancel must be called with lock held.
type deferred struct {
	clock Clock
	lock  sync.Locker
	timer clockwork.Timer
	gen   uint64
}

func newDeferred(clock Clock, lock sync.Locker) *deferred {
	return &deferred{clock: clock, lock: lock}
}

// schedule replaces any pending callback with fn after delay.
func (d *deferred) schedule(delay time.Duration, fn func()) {
	d.cancel()
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() {
		d.lock.Lock()
		defer d.lock.Unlock()
		// superseded or cancelled while waiting for the lock
		if d.gen != gen || d.timer == nil {
			return
		}
		d.timer = nil
		fn()
	})
}

func (d *deferred) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *deferred) pending() bool {
	return d.timer != nil
}

func floorDelay(ms float64, minMs int64) time.Duration {
	v := int64(ms)
	if v < minMs {
		v = minMs
	}
	return time.Duration(v) * time.Millisecond
}
