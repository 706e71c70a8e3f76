package effects

import (
	"math/rand"
	"time"
)

// Rand supplies uniform draws in [0, 1).
type Rand interface {
	Float64() float64
}

func newRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func coinSign(r Rand) float64 {
	if r.Float64() < 0.5 {
		return -1
	}
	return 1
}
