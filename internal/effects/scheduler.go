package effects

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/guidoenr/glitchbg/internal/params"
)

const firstTickDelta = 1.0 / 60.0

// Sink consumes one block per tick.
type Sink interface {
	Render(b params.Block)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(b params.Block)

func (f SinkFunc) Render(b params.Block) { f(b) }

// Config configures a Scheduler.
type Config struct {
	Params   params.Parameters
	Clock    Clock
	Rand     Rand
	Sink     Sink
	Viewport func() (width, height int)
	Log      *log.Logger
}

// Scheduler advances every effect once per host frame and publishes the block.
type Scheduler struct {
	mu     sync.Mutex
	params params.Parameters
	block  params.Block
	sink   Sink
	view   func() (int, int)
	log    *log.Logger

	jitter  *BigJitter
	noise   *SubtleNoise
	glitch  *Glitch
	rgb     *RGBShift
	stripes *StripePool
	ordered []Effect

	prev    float64
	started bool
	closed  bool
	ticks   uint64
}

// NewScheduler validates the parameters and builds every effect.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	if cfg.Log == nil {
		cfg.Log = log.New(io.Discard, "", 0)
	}

	s := &Scheduler{
		params: cfg.Params,
		block:  cfg.Params.NewBlock(),
		sink:   cfg.Sink,
		view:   cfg.Viewport,
		log:    cfg.Log,
	}

	deps := Deps{
		Clock: cfg.Clock,
		Lock:  &s.mu,
		Rand:  cfg.Rand,
		Log:   cfg.Log,
	}.withDefaults()

	s.jitter = NewBigJitter(cfg.Params.BigJitter, &s.block, deps)
	s.noise = NewSubtleNoise(cfg.Params.SubtleNoise, &s.block, deps)
	s.glitch = NewGlitch(cfg.Params.Glitch, &s.block, deps)
	s.rgb = NewRGBShift(cfg.Params.RGBShift, &s.block, deps)
	s.stripes = NewStripePool(cfg.Params.MaxStripes, cfg.Params.Stripe, deps.Rand)
	// order matters: subtle noise captures its baseline before glitch rewrites the amplitudes
	s.ordered = []Effect{s.jitter, s.noise, s.glitch, s.rgb}

	return s, nil
}

// Tick advances the animation to nowMs, a monotonic host timestamp in milliseconds.
func (s *Scheduler) Tick(nowMs float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	now := nowMs * 0.001
	delta := firstTickDelta
	if s.started {
		delta = now - s.prev
	}
	s.prev = now
	s.started = true
	s.ticks++

	s.block.Time = now
	if s.view != nil {
		w, h := s.view()
		s.block.Resolution = [2]float64{float64(w), float64(h)}
	}

	t := Tick{Time: now, Delta: delta}
	for _, e := range s.ordered {
		e.Update(t)
	}

	s.stripes.Update(delta)
	s.stripes.TrySpawn(delta)
	s.stripes.CopyInto(&s.block)

	out := s.block
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Render(out)
	}
}

// Snapshot returns a copy of the current block.
func (s *Scheduler) Snapshot() params.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block
}

// Parameters returns the static table the scheduler was built with.
func (s *Scheduler) Parameters() params.Parameters {
	return s.params
}

// Ticks returns how many ticks have been processed.
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Close cancels every pending reset. Later ticks are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, e := range s.ordered {
		e.Close()
	}
	s.log.Printf("effects stopped after %d ticks", s.ticks)
}
