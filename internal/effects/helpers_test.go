package effects

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// seqRand returns vals in order, then fallback forever.
type seqRand struct {
	vals     []float64
	fallback float64
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return r.fallback
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

func never() *seqRand  { return &seqRand{fallback: 0.999999} }
func always() *seqRand { return &seqRand{fallback: 0} }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(epoch)
}

func testDeps(clock Clock, rng Rand) Deps {
	return Deps{Clock: clock, Lock: &sync.Mutex{}, Rand: rng}
}

// eventually polls cond under lock until it holds. Fired resets run on
// their own goroutine, so state changes land shortly after Advance returns.
func eventually(t *testing.T, lock sync.Locker, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		lock.Lock()
		ok := cond()
		lock.Unlock()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// expectTimers fails unless exactly n callbacks are waiting on clock.
func expectTimers(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, n); err != nil {
		t.Fatalf("pending timers never settled at %d: %v", n, err)
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s=%v want=%v", name, got, want)
	}
}

func near(got, want float64) bool {
	return math.Abs(got-want) <= 1e-9
}
