// Package compute turns raw image bytes into a quantized pattern. The
// pipeline consumes it only through Unit and Worker.
package compute

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
)

// Output is the compute unit's response.
type Output struct {
	Width  int
	Height int
	Pixels []byte
	Colors map[string]int
	PNG    []byte
}

// Pattern converts the output into the published model.
func (o *Output) Pattern() *models.PatternResult {
	return &models.PatternResult{
		Width:   o.Width,
		Height:  o.Height,
		Colors:  o.Colors,
		Pixels:  o.Pixels,
		Encoded: o.PNG,
	}
}

// Unit is the black-box pattern generator.
type Unit interface {
	Generate(ctx context.Context, data []byte, params models.Params) (*Output, error)
}

// UnitFunc adapts a function to Unit.
type UnitFunc func(ctx context.Context, data []byte, params models.Params) (*Output, error)

func (f UnitFunc) Generate(ctx context.Context, data []byte, params models.Params) (*Output, error) {
	return f(ctx, data, params)
}

// Generator pixelates, reduces the palette and encodes the result.
type Generator struct {
	resampler Resampler
	seed      int64
	logger    logger.Logger
}

func NewGenerator(seed int64, log logger.Logger) *Generator {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Generator{
		resampler: defaultResampler(),
		seed:      seed,
		logger:    log,
	}
}

// WithResampler replaces the scaling backend.
func (g *Generator) WithResampler(r Resampler) *Generator {
	g.resampler = r
	return g
}

func (g *Generator) Generate(ctx context.Context, data []byte, params models.Params) (*Output, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	src, format, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w, h := gridSize(params.TargetSize, bounds.Dx(), bounds.Dy())

	grid, err := g.resampler.Resample(src, w, h)
	if err != nil {
		return nil, fmt.Errorf("resample failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	palette, err := buildPalette(ctx, extractColors(grid), params.ColorCount, g.seed)
	if err != nil {
		return nil, err
	}

	colors, err := quantize(ctx, grid, palette)
	if err != nil {
		return nil, err
	}

	encoded, err := encodePNG(grid)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Generator", "pattern generated", map[string]interface{}{
		"format":      format,
		"source_size": fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"grid_size":   fmt.Sprintf("%dx%d", w, h),
		"palette":     len(palette),
		"resampler":   g.resampler.Name(),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &Output{
		Width:  w,
		Height: h,
		Pixels: grid.Pix,
		Colors: colors,
		PNG:    encoded,
	}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
