package render

import (
	"math"
	"math/rand"
	"time"

	"github.com/guidoenr/glitchbg/internal/params"
)

const glitchColumn = 0.05

// glitchPass is a CPU rendition of the digital glitch post pass: every
// 120-240 frames, or every frame in wild mode, it displaces bands of the
// frame and splits the channels along a random angle.
type glitchPass struct {
	rng   *rand.Rand
	frame int
	randX int

	amount      float64
	angle       float64
	seed        float64
	seedX       float64
	seedY       float64
	distortionX float64
	distortionY float64
}

func newGlitchPass() *glitchPass {
	g := &glitchPass{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	g.generateTrigger()
	return g
}

func (g *glitchPass) generateTrigger() {
	g.randX = 120 + g.rng.Intn(121)
}

func (g *glitchPass) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// step advances the pass by one frame and reports whether it draws.
func (g *glitchPass) step(b *params.Block) bool {
	if !b.GlitchEnabled {
		return false
	}
	g.seed = g.rng.Float64()
	draw := true

	switch {
	case g.frame%g.randX == 0 || b.GlitchWild:
		g.amount = g.rng.Float64() / 30
		g.angle = g.between(-math.Pi, math.Pi)
		g.seedX = g.between(-1, 1)
		g.seedY = g.between(-1, 1)
		g.distortionX = g.between(0, 1)
		g.distortionY = g.between(0, 1)
		g.frame = 0
		g.generateTrigger()
	case g.frame%g.randX < g.randX/5:
		g.amount = g.rng.Float64() / 90
		g.angle = g.between(-math.Pi, math.Pi)
		g.distortionX = g.between(0, 1)
		g.distortionY = g.between(0, 1)
		g.seedX = g.between(-0.3, 0.3)
		g.seedY = g.between(-0.3, 0.3)
	default:
		draw = false
	}

	g.frame++
	return draw
}

// apply writes the displaced version of src into dst.
func (g *glitchPass) apply(src, dst *pixmap, us, vs []float64) {
	offX := g.amount * math.Cos(g.angle)
	offY := g.amount * math.Sin(g.angle)

	parallelRows(dst.h, func(y int) {
		for x := 0; x < dst.w; x++ {
			px, py := us[x], vs[y]

			if py < g.distortionX+glitchColumn && py > g.distortionX-glitchColumn*g.seed {
				if g.seedX > 0 {
					py = 1 - (py + g.distortionY)
				} else {
					py = g.distortionY
				}
			}
			if px < g.distortionY+glitchColumn && px > g.distortionY-glitchColumn*g.seed {
				if g.seedY > 0 {
					px = g.distortionX
				} else {
					px = 1 - (px + g.distortionX)
				}
			}

			disp := g.seed * g.seed
			px += (hashNoise(px*disp, py*disp) - 0.5) * g.seedX * (g.seed / 5)
			py += (hashNoise(py*disp, px*disp) - 0.5) * g.seedY * (g.seed / 5)

			r, _, _ := src.sample(px+offX, py+offY, false)
			_, gg, _ := src.sample(px, py, false)
			_, _, bl := src.sample(px-offX, py-offY, false)

			snow := 200 * g.amount * hashNoise(float64(x)*g.seed, float64(y)*g.seed*50) * 0.2
			dst.set(x, y, r+snow, gg+snow, bl+snow)
		}
	})
}
