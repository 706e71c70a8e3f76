package effects

import (
	"testing"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

func TestBigJitterResetsOnWallClock(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(clock, never())
	b := params.Defaults().NewBlock()
	e := NewBigJitter(params.Defaults().BigJitter, &b, deps)

	e.Trigger()
	if b.BigActive != 1 {
		t.Fatalf("BigActive=%f want=1", b.BigActive)
	}

	// floor(0.21658*1000) = 216ms
	clock.Advance(215 * time.Millisecond)
	if b.BigActive != 1 {
		t.Fatalf("reset fired early")
	}
	clock.Advance(time.Millisecond)
	eventually(t, deps.Lock, "jitter reset", func() bool { return b.BigActive == 0 })
}

func TestBigJitterRetriggerRestartsTimer(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(clock, never())
	b := params.Defaults().NewBlock()
	e := NewBigJitter(params.Defaults().BigJitter, &b, deps)

	e.Trigger()
	clock.Advance(150 * time.Millisecond)
	e.Trigger()
	expectTimers(t, clock, 1)

	// past the first trigger's expiry
	clock.Advance(100 * time.Millisecond)
	if !e.Active() {
		t.Fatalf("first timer reset a retriggered jitter")
	}

	clock.Advance(116 * time.Millisecond)
	eventually(t, deps.Lock, "reset 216ms after the second trigger", func() bool { return !e.Active() })
}

func TestBigJitterDurationFloor(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(clock, never())
	cfg := params.Defaults().BigJitter
	cfg.Duration = 0
	b := params.Defaults().NewBlock()
	e := NewBigJitter(cfg, &b, deps)

	e.Trigger()
	clock.Advance(9 * time.Millisecond)
	if !e.Active() {
		t.Fatalf("reset before the 10ms floor")
	}
	clock.Advance(time.Millisecond)
	eventually(t, deps.Lock, "reset at the 10ms floor", func() bool { return !e.Active() })
}

func TestBigJitterUpdateDrawsProbability(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().BigJitter
	b := params.Defaults().NewBlock()

	e := NewBigJitter(cfg, &b, testDeps(clock, &seqRand{fallback: cfg.Probability}))
	e.Update(Tick{})
	if e.Active() {
		t.Fatalf("draw equal to probability must not fire")
	}

	e = NewBigJitter(cfg, &b, testDeps(clock, always()))
	e.Update(Tick{})
	if !e.Active() {
		t.Fatalf("expected fire")
	}
}

func TestBigJitterCloseCancelsReset(t *testing.T) {
	clock := newFakeClock()
	b := params.Defaults().NewBlock()
	e := NewBigJitter(params.Defaults().BigJitter, &b, testDeps(clock, never()))

	e.Trigger()
	e.Close()
	expectTimers(t, clock, 0)
	clock.Advance(time.Second)
	if b.BigActive != 1 {
		t.Fatalf("cancelled timer still mutated the block")
	}
}
