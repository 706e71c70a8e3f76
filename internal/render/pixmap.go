package render

import (
	"image"
	"math"
	"runtime"
	"sync"
)

// pixmap is a linear RGB float buffer. Row 0 is the top of the frame;
// sampling uses texture coordinates with v = 1 at the top.
type pixmap struct {
	w, h int
	pix  []float32
}

func newPixmap(w, h int) *pixmap {
	return &pixmap{w: w, h: h, pix: make([]float32, w*h*3)}
}

func pixmapFromImage(img image.Image) *pixmap {
	bounds := img.Bounds()
	p := newPixmap(bounds.Dx(), bounds.Dy())
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*p.w + x) * 3
			p.pix[i] = float32(r) / 0xffff
			p.pix[i+1] = float32(g) / 0xffff
			p.pix[i+2] = float32(b) / 0xffff
		}
	}
	return p
}

func (p *pixmap) set(x, y int, r, g, b float64) {
	i := (y*p.w + x) * 3
	p.pix[i] = float32(r)
	p.pix[i+1] = float32(g)
	p.pix[i+2] = float32(b)
}

func (p *pixmap) at(x, y int) (float64, float64, float64) {
	x = clampInt(x, 0, p.w-1)
	y = clampInt(y, 0, p.h-1)
	i := (y*p.w + x) * 3
	return float64(p.pix[i]), float64(p.pix[i+1]), float64(p.pix[i+2])
}

// sample reads the buffer at texture coordinates with clamp-to-edge.
func (p *pixmap) sample(u, v float64, bilinear bool) (float64, float64, float64) {
	fx := u*float64(p.w) - 0.5
	fy := (1-v)*float64(p.h) - 0.5
	if !bilinear {
		return p.at(int(math.Round(fx)), int(math.Round(fy)))
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	r00, g00, b00 := p.at(x0, y0)
	r10, g10, b10 := p.at(x0+1, y0)
	r01, g01, b01 := p.at(x0, y0+1)
	r11, g11, b11 := p.at(x0+1, y0+1)

	r := lerp(lerp(r00, r10, tx), lerp(r01, r11, tx), ty)
	g := lerp(lerp(g00, g10, tx), lerp(g01, g11, tx), ty)
	b := lerp(lerp(b00, b10, tx), lerp(b01, b11, tx), ty)
	return r, g, b
}

// parallelRows runs fn for every row on a pool sized to GOMAXPROCS.
func parallelRows(height int, fn func(y int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > height {
		numWorkers = height
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	rowJobs := make(chan int, numWorkers)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowJobs {
				fn(y)
			}
		}()
	}
	for y := 0; y < height; y++ {
		rowJobs <- y
	}
	close(rowJobs)
	wg.Wait()
}
