package models

import (
	"fmt"
	"time"
)

// ImageSource is the raw picture a pattern is generated from.
type ImageSource struct {
	Name     string
	Data     []byte
	Size     int
	Width    int
	Height   int
	Format   string
	LoadTime time.Time
}

// NewImageSource wraps raw bytes. Dimensions are filled in once decoded.
func NewImageSource(name string, data []byte) *ImageSource {
	return &ImageSource{
		Name:     name,
		Data:     data,
		Size:     len(data),
		LoadTime: time.Now(),
	}
}

// HasDimensions reports whether the decoded pixel size is known.
func (s *ImageSource) HasDimensions() bool {
	return s != nil && s.Width > 0 && s.Height > 0
}

// PatternResult is the quantized grid produced by the compute unit.
type PatternResult struct {
	Width  int
	Height int
	// Colors maps a canonical #RRGGBB key to the number of cells using it.
	Colors map[string]int
	// Pixels holds Width*Height RGBA cells, row-major.
	Pixels []byte
	// Encoded is the PNG rendition shown through a display handle.
	Encoded     []byte
	ProcessTime time.Duration
}

// CellCount returns Width*Height.
func (p *PatternResult) CellCount() int {
	return p.Width * p.Height
}

// Validate checks the histogram and buffer invariants.
func (p *PatternResult) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid pattern size %dx%d", p.Width, p.Height)
	}

	if len(p.Pixels) != 4*p.CellCount() {
		return fmt.Errorf("pixel buffer holds %d bytes, expected %d", len(p.Pixels), 4*p.CellCount())
	}

	total := 0
	for _, count := range p.Colors {
		total += count
	}
	if total != p.CellCount() {
		return fmt.Errorf("histogram counts %d cells, expected %d", total, p.CellCount())
	}

	return nil
}
