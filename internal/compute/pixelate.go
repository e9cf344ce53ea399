package compute

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Resampler scales src into a freshly allocated RGBA image of the given size.
type Resampler interface {
	Resample(src image.Image, width, height int) (*image.RGBA, error)
	Name() string
}

// gridSize returns the pattern dimensions for a source of srcW x srcH pixels:
// the width is the requested cell count and the height follows the aspect ratio.
func gridSize(targetSize, srcW, srcH int) (int, int) {
	w := max(1, targetSize)
	h := int(math.Round(float64(w) * float64(srcH) / float64(srcW)))
	return w, max(1, h)
}

type drawResampler struct {
	scaler draw.Scaler
}

// NewDrawResampler uses the bilinear kernel, which widens its support when
// shrinking and so averages every source pixel that falls into a cell.
func NewDrawResampler() Resampler {
	return drawResampler{scaler: draw.BiLinear}
}

func (r drawResampler) Resample(src image.Image, width, height int) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	r.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	opaque(dst)
	return dst, nil
}

func (drawResampler) Name() string { return "x/image bilinear" }

// opaque forces every alpha byte to 0xff; cells are always solid.
func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

// defaultResampler is swapped for the OpenCV implementation under the opencv build tag.
var defaultResampler = NewDrawResampler
