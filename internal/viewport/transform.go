package viewport

import "math"

// Transform maps content coordinates to logical screen coordinates:
// screen = (content + offset) * scale.
type Transform struct {
	Scale   float64
	OffsetX int
	OffsetY int
}

func Identity() Transform {
	return Transform{Scale: 1}
}

// ToContent maps a logical screen point into content space.
func (t Transform) ToContent(x, y float64) (float64, float64) {
	return x/t.Scale - float64(t.OffsetX), y/t.Scale - float64(t.OffsetY)
}

// ToScreen maps a content point into logical screen space.
func (t Transform) ToScreen(x, y float64) (float64, float64) {
	return (x + float64(t.OffsetX)) * t.Scale, (y + float64(t.OffsetY)) * t.Scale
}

// Limits bound the scale and set the zoom increment.
type Limits struct {
	MinScale float64
	MaxScale float64
	ZoomStep float64
}

func DefaultLimits() Limits {
	return Limits{MinScale: 0.1, MaxScale: 10, ZoomStep: 0.1}
}

func (l Limits) clamp(s float64) float64 {
	return math.Min(l.MaxScale, math.Max(l.MinScale, s))
}

// zoomed returns t after one zoom step in direction sign(delta) anchored at
// the screen point (cx, cy).
func (t Transform) zoomed(l Limits, cx, cy, delta float64) Transform {
	dir := 0.0
	switch {
	case delta > 0:
		dir = 1
	case delta < 0:
		dir = -1
	}

	next := normalize(l.clamp(t.Scale + dir*l.ZoomStep))
	if next == t.Scale {
		return t
	}

	return Transform{
		Scale:   next,
		OffsetX: truncate(float64(t.OffsetX) - (cx/t.Scale - cx/next)),
		OffsetY: truncate(float64(t.OffsetY) - (cy/t.Scale - cy/next)),
	}
}

// panned returns t moved by the screen delta (dx, dy).
func (t Transform) panned(dx, dy float64) Transform {
	t.OffsetX = truncate(float64(t.OffsetX) + dx/t.Scale)
	t.OffsetY = truncate(float64(t.OffsetY) + dy/t.Scale)
	return t
}

// normalize drops floating point noise so that stepping in and back out
// lands on the original scale.
func normalize(s float64) float64 {
	return math.Round(s*1e9) / 1e9
}

// truncate rounds toward zero.
func truncate(v float64) int {
	return int(math.Trunc(v))
}

// Fit returns the transform that centres a contentW×contentH area in a
// viewW×viewH view at the largest admissible scale.
func Fit(viewW, viewH, contentW, contentH float64, l Limits) Transform {
	if viewW <= 0 || viewH <= 0 || contentW <= 0 || contentH <= 0 {
		return Identity()
	}
	s := normalize(l.clamp(math.Min(viewW/contentW, viewH/contentH)))
	return Transform{
		Scale:   s,
		OffsetX: truncate((viewW/s - contentW) / 2),
		OffsetY: truncate((viewH/s - contentH) / 2),
	}
}
