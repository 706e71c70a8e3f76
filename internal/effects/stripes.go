package effects

import (
	"math"

	"github.com/guidoenr/glitchbg/internal/params"
)

// Stripe is one slot of the pool.
type Stripe struct {
	Center   float64
	Offset   float64
	Width    float64
	Lifetime float64
}

// Active reports whether the slot holds a live stripe.
func (s Stripe) Active() bool {
	return s.Center > -0.5
}

// StripePool is a fixed-capacity set of horizontal band distortions.
type StripePool struct {
	cfg   params.Stripe
	rng   Rand
	slots []Stripe
}

// NewStripePool creates a pool with capacity inactive slots.
func NewStripePool(capacity int, cfg params.Stripe, rng Rand) *StripePool {
	if capacity < 1 {
		capacity = 1
	}
	if rng == nil {
		rng = newRand()
	}
	p := &StripePool{
		cfg:   cfg,
		rng:   rng,
		slots: make([]Stripe, capacity),
	}
	for i := range p.slots {
		p.deactivate(i)
	}
	return p
}

// Capacity returns the number of slots.
func (p *StripePool) Capacity() int {
	return len(p.slots)
}

// ActiveCount returns the number of live stripes.
func (p *StripePool) ActiveCount() int {
	count := 0
	for _, s := range p.slots {
		if s.Active() {
			count++
		}
	}
	return count
}

// Slots returns a copy of every slot, live or not.
func (p *StripePool) Slots() []Stripe {
	out := make([]Stripe, len(p.slots))
	copy(out, p.slots)
	return out
}

// Spawn activates the first free slot. It returns false when the pool is full.
func (p *StripePool) Spawn() bool {
	for i := range p.slots {
		if p.slots[i].Active() {
			continue
		}
		s := &p.slots[i]
		// keep away from the top and bottom edges
		s.Center = 0.05 + p.rng.Float64()*0.9
		amount := uniform(p.rng, p.cfg.MinOffset, p.cfg.MaxOffset)
		s.Offset = amount * coinSign(p.rng)
		s.Width = p.cfg.Width * (1.0 + p.rng.Float64())
		s.Lifetime = uniform(p.rng, p.cfg.MinLifetime, p.cfg.MaxLifetime)
		return true
	}
	return false
}

// TrySpawn spawns with the configured per-tick probability while below maxCount.
// The probability is applied once per call regardless of dt.
func (p *StripePool) TrySpawn(dt float64) bool {
	if p.ActiveCount() >= p.cfg.MaxCount {
		return false
	}
	if p.rng.Float64() >= p.cfg.SpawnRate {
		return false
	}
	return p.Spawn()
}

// Update ages and decays every live stripe, retiring the expired ones.
func (p *StripePool) Update(dt float64) {
	frames := math.Max(1, dt*60)
	offsetDecay := math.Pow(p.cfg.OffsetDecay, frames)
	widthDecay := math.Pow(p.cfg.WidthDecay, frames)

	for i := range p.slots {
		s := &p.slots[i]
		if !s.Active() {
			continue
		}
		s.Lifetime = math.Max(0, s.Lifetime-dt)
		s.Offset *= offsetDecay
		s.Width *= widthDecay
		if s.Lifetime <= 0 {
			p.deactivate(i)
		}
	}
}

// CopyInto packs the live stripes at the front of the block arrays.
func (p *StripePool) CopyInto(b *params.Block) {
	n := 0
	for _, s := range p.slots {
		if !s.Active() || n >= len(b.StripeCenters) {
			continue
		}
		b.StripeCenters[n] = s.Center
		b.StripeOffsets[n] = s.Offset
		b.StripeWidths[n] = s.Width
		n++
	}
	b.StripeCount = n
	for i := n; i < len(b.StripeCenters); i++ {
		b.StripeCenters[i] = params.InactiveCenter
		b.StripeOffsets[i] = 0
		b.StripeWidths[i] = p.cfg.Width
	}
}

func (p *StripePool) deactivate(i int) {
	p.slots[i] = Stripe{
		Center: params.InactiveCenter,
		Width:  p.cfg.Width,
	}
}
