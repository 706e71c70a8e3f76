package effects

import (
	"testing"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

func TestSubtleNoiseEnhanceAndRevert(t *testing.T) {
	clock := newFakeClock()
	b := params.Defaults().NewBlock()
	b.SmallAmplitude = 0.01
	// duration draw 0 -> enhanceMinDuration (200ms)
	deps := testDeps(clock, &seqRand{vals: []float64{0}})
	e := NewSubtleNoise(params.Defaults().SubtleNoise, &b, deps)

	e.Enhance()
	approx(t, "enhanced", b.SmallAmplitude, 0.025)

	clock.Advance(199 * time.Millisecond)
	approx(t, "still enhanced", b.SmallAmplitude, 0.025)
	clock.Advance(time.Millisecond)
	eventually(t, deps.Lock, "revert to 0.01", func() bool {
		return near(b.SmallAmplitude, 0.01) && !e.Enhanced()
	})
}

func TestSubtleNoiseRetriggerCompoundsAndReplaces(t *testing.T) {
	clock := newFakeClock()
	b := params.Defaults().NewBlock()
	b.SmallAmplitude = 0.01
	// first enhance 200ms, second enhance ~600ms
	deps := testDeps(clock, &seqRand{vals: []float64{0, 0.999}})
	e := NewSubtleNoise(params.Defaults().SubtleNoise, &b, deps)

	e.Enhance()
	clock.Advance(100 * time.Millisecond)
	e.Enhance()
	approx(t, "compounded", b.SmallAmplitude, 0.01*2.5*2.5)
	expectTimers(t, clock, 1)

	// past the first enhance's expiry
	clock.Advance(150 * time.Millisecond)
	approx(t, "still enhanced", b.SmallAmplitude, 0.01*2.5*2.5)
	if !e.Enhanced() {
		t.Fatalf("expected the second revert to be pending")
	}

	clock.Advance(500 * time.Millisecond)
	// reverts to the baseline captured by the second enhance
	eventually(t, deps.Lock, "revert to 0.025", func() bool { return near(b.SmallAmplitude, 0.025) })
}

func TestSubtleNoiseUpdateDrawsProbability(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().SubtleNoise
	b := params.Defaults().NewBlock()

	e := NewSubtleNoise(cfg, &b, testDeps(clock, &seqRand{fallback: cfg.EnhanceProbability}))
	e.Update(Tick{})
	if e.Enhanced() {
		t.Fatalf("draw equal to probability must not enhance")
	}

	e = NewSubtleNoise(cfg, &b, testDeps(clock, always()))
	e.Update(Tick{})
	if !e.Enhanced() {
		t.Fatalf("expected enhance")
	}
	e.Close()
	expectTimers(t, clock, 0)
}
