//go:build opencv

package compute

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

func init() {
	defaultResampler = NewOpenCVResampler
}

type opencvResampler struct{}

// NewOpenCVResampler shrinks with INTER_AREA, OpenCV's pixel-area averaging.
func NewOpenCVResampler() Resampler {
	return opencvResampler{}
}

func (opencvResampler) Resample(src image.Image, width, height int) (*image.RGBA, error) {
	rgba, ok := src.(*image.RGBA)
	if !ok {
		b := src.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}

	mat, err := gocv.ImageToMatRGBA(rgba)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()

	gocv.Resize(mat, &resized, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationArea)

	out, err := resized.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat to image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), out, out.Bounds().Min, draw.Src)
	opaque(dst)
	return dst, nil
}

func (opencvResampler) Name() string { return "opencv area" }
