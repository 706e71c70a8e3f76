package effects

import (
	"testing"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

func wildGlitch() params.Glitch {
	cfg := params.Defaults().Glitch
	cfg.GoWildProbability = 1.0
	return cfg
}

func TestGlitchWildModeRestored(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(clock, always())
	b := params.Defaults().NewBlock()
	e := NewGlitch(wildGlitch(), &b, deps)

	e.Update(Tick{Delta: 1.0 / 60})
	if !e.Active() || !b.GlitchWild {
		t.Fatalf("expected active wild burst: active=%v wild=%v", e.Active(), b.GlitchWild)
	}

	clock.Advance(119 * time.Millisecond)
	if !b.GlitchWild {
		t.Fatalf("wild mode ended early")
	}
	clock.Advance(time.Millisecond)
	eventually(t, deps.Lock, "wild mode restore", func() bool { return !b.GlitchWild && !e.Active() })
}

func TestGlitchRestoresPreviousWildValue(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().Glitch
	cfg.GoWildProbability = 0
	b := params.Defaults().NewBlock()
	b.GlitchWild = true
	deps := testDeps(clock, always())
	e := NewGlitch(cfg, &b, deps)

	e.Trigger()
	clock.Advance(time.Second)
	eventually(t, deps.Lock, "burst end", func() bool { return !e.Active() })
	if !b.GlitchWild {
		t.Fatalf("previous wild value was not restored")
	}
}

func TestGlitchMinInterval(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(clock, always())
	b := params.Defaults().NewBlock()
	e := NewGlitch(params.Defaults().Glitch, &b, deps)

	e.Update(Tick{Delta: 1.0 / 60})
	if !e.Active() {
		t.Fatalf("expected first burst")
	}
	clock.Advance(200 * time.Millisecond)
	eventually(t, deps.Lock, "burst end", func() bool { return !e.Active() })

	e.Update(Tick{Delta: 1.0 / 60})
	if e.Active() {
		t.Fatalf("fired again inside the minimum interval")
	}

	clock.Advance(2800 * time.Millisecond)
	e.Update(Tick{Delta: 1.0 / 60})
	if !e.Active() {
		t.Fatalf("expected a burst once the minimum interval elapsed")
	}
}

func TestGlitchDoesNotRetriggerWhileActive(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().Glitch
	cfg.MinInterval = 0
	deps := testDeps(clock, always())
	b := params.Defaults().NewBlock()
	e := NewGlitch(cfg, &b, deps)

	e.Update(Tick{Delta: 1.0 / 60})
	clock.Advance(60 * time.Millisecond)
	e.Update(Tick{Delta: 1.0 / 60})
	expectTimers(t, clock, 1)
	clock.Advance(60 * time.Millisecond)
	eventually(t, deps.Lock, "burst end 120ms after the first trigger", func() bool { return !e.Active() })
}

func TestGlitchResidualDrivesAmplitudes(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().Glitch
	cfg.ResidualSmallAmplitude = 0.5
	cfg.ResidualBigAmplitude = 0.1
	b := params.Defaults().NewBlock()
	e := NewGlitch(cfg, &b, testDeps(clock, always()))

	e.Update(Tick{Delta: 0.1})
	residual := 1.0 - cfg.ResidualDecay*0.1
	approx(t, "residual", e.Residual(), residual)
	approx(t, "small", b.SmallAmplitude, residual*0.5)
	approx(t, "big", b.BigAmplitude, 0.02+residual*0.1)

	for i := 0; i < 10; i++ {
		e.Update(Tick{Delta: 0.1})
	}
	if e.Residual() != 0 {
		t.Fatalf("residual=%f want=0", e.Residual())
	}
	approx(t, "small at rest", b.SmallAmplitude, 0)
	approx(t, "big at rest", b.BigAmplitude, 0.02)
}

func TestGlitchDisabledIsInert(t *testing.T) {
	clock := newFakeClock()
	cfg := params.Defaults().Glitch
	cfg.Enabled = false
	b := params.Defaults().NewBlock()
	b.SmallAmplitude = 0.3
	e := NewGlitch(cfg, &b, testDeps(clock, always()))
	b.SmallAmplitude = 0.4

	e.Update(Tick{Delta: 1.0 / 60})
	if e.Active() || b.SmallAmplitude != 0.4 {
		t.Fatalf("disabled glitch changed state: active=%v small=%f", e.Active(), b.SmallAmplitude)
	}
}

func TestGlitchCloseRestoresWildMode(t *testing.T) {
	clock := newFakeClock()
	b := params.Defaults().NewBlock()
	e := NewGlitch(wildGlitch(), &b, testDeps(clock, always()))

	e.Trigger()
	if !b.GlitchWild {
		t.Fatalf("expected wild mode")
	}
	e.Close()
	if b.GlitchWild || e.Active() {
		t.Fatalf("close did not restore: active=%v wild=%v", e.Active(), b.GlitchWild)
	}
	expectTimers(t, clock, 0)
}
