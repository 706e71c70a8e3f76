package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes a background image (jpeg, png, gif, bmp or webp).
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background %s: %w", path, err)
	}
	return img, nil
}

// coverRect returns the centered region of src that has the aspect ratio
// of a width x height viewport.
func coverRect(src image.Rectangle, width, height int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || width <= 0 || height <= 0 {
		return src
	}
	imageAspect := float64(sw) / float64(sh)
	viewAspect := float64(width) / float64(height)

	if imageAspect > viewAspect {
		cropW := int(float64(sh)*viewAspect + 0.5)
		if cropW < 1 {
			cropW = 1
		}
		x0 := src.Min.X + (sw-cropW)/2
		return image.Rect(x0, src.Min.Y, x0+cropW, src.Max.Y)
	}
	cropH := int(float64(sw)/viewAspect + 0.5)
	if cropH < 1 {
		cropH = 1
	}
	y0 := src.Min.Y + (sh-cropH)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+cropH)
}

// Cover scales src to fill width x height, cropping the overflow evenly.
func Cover(src image.Image, width, height int, quality string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	crop := coverRect(src.Bounds(), width, height)
	scalerFor(parseQualityMode(quality)).Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}

func scalerFor(q qualityMode) xdraw.Scaler {
	switch q {
	case qualityHigh:
		return xdraw.CatmullRom
	case qualityEco:
		return xdraw.NearestNeighbor
	default:
		return xdraw.ApproxBiLinear
	}
}
