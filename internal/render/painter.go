// Package render paints a pattern grid onto a gg context.
package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"diamond-pattern/internal/models"

	"github.com/gogpu/gg"
)

const (
	DefaultCellSize  = 8.0
	DefaultGridColor = "#C6B696"
)

// Painter draws the current pattern with one cell per CellSize content
// units, followed by the grid and a border.
type Painter struct {
	mu       sync.RWMutex
	cellSize float64
	grid     gg.RGBA
	showGrid bool

	pattern *models.PatternResult
	buf     *gg.ImageBuf
}

func NewPainter(cellSize float64, gridColor string) *Painter {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	if gridColor == "" {
		gridColor = DefaultGridColor
	}
	return &Painter{
		cellSize: cellSize,
		grid:     gg.Hex(gridColor),
		showGrid: true,
	}
}

// SetPattern replaces the painted pattern. A nil pattern clears it.
func (p *Painter) SetPattern(pr *models.PatternResult) error {
	var buf *gg.ImageBuf
	if pr != nil {
		img, err := Image(pr)
		if err != nil {
			return err
		}
		buf = gg.ImageBufFromImage(img)
	}

	p.mu.Lock()
	p.pattern = pr
	p.buf = buf
	p.mu.Unlock()
	return nil
}

// SetGrid toggles the grid overlay.
func (p *Painter) SetGrid(show bool) {
	p.mu.Lock()
	p.showGrid = show
	p.mu.Unlock()
}

// ContentSize is the painted area in content units.
func (p *Painter) ContentSize() (float64, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pattern == nil {
		return 0, 0
	}
	return float64(p.pattern.Width) * p.cellSize, float64(p.pattern.Height) * p.cellSize
}

// Draw is a viewport draw callback.
func (p *Painter) Draw(dc *gg.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pattern == nil {
		return
	}

	cols, rows := p.pattern.Width, p.pattern.Height
	w, h := float64(cols)*p.cellSize, float64(rows)*p.cellSize

	dc.DrawImageEx(p.buf, gg.DrawImageOptions{
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
	})

	if !p.showGrid {
		return
	}

	dc.SetColor(p.grid.Color())
	dc.SetLineWidth(1)
	for i := 1; i < cols; i++ {
		x := align(float64(i) * p.cellSize)
		dc.DrawLine(x, 0, x, h)
	}
	for i := 1; i < rows; i++ {
		y := align(float64(i) * p.cellSize)
		dc.DrawLine(0, y, w, y)
	}
	dc.DrawRectangle(0.5, 0.5, w, h)
	_ = dc.Stroke()
}

// align centres a 1-unit line on a pixel.
func align(v float64) float64 {
	return math.Floor(v) + 0.5
}

// Image expands the pattern pixel buffer into an RGBA image.
func Image(pr *models.PatternResult) (*image.RGBA, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, pr.Width, pr.Height))
	copy(img.Pix, pr.Pixels)
	return img, nil
}

// Export writes the pattern with its grid as a PNG, cellSize pixels per cell.
func Export(w io.Writer, pr *models.PatternResult, cellSize float64, gridColor string) error {
	p := NewPainter(cellSize, gridColor)
	if err := p.SetPattern(pr); err != nil {
		return fmt.Errorf("failed to prepare pattern: %w", err)
	}

	cw, ch := p.ContentSize()
	dc := gg.NewContext(int(math.Ceil(cw))+1, int(math.Ceil(ch))+1)
	defer dc.Close()

	dc.ClearWithColor(gg.White)
	p.Draw(dc)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode pattern: %w", err)
	}
	return nil
}
