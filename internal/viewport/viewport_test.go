package viewport

import (
	"image"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gg"
)

type manualSource struct {
	mu     sync.Mutex
	queued []func()
}

func (m *manualSource) RequestFrame(fn func()) {
	m.mu.Lock()
	m.queued = append(m.queued, fn)
	m.mu.Unlock()
}

func (m *manualSource) Queued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// Tick runs every queued frame and returns how many ran.
func (m *manualSource) Tick() int {
	m.mu.Lock()
	queued := m.queued
	m.queued = nil
	m.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	return len(queued)
}

type fakeSurface struct {
	w, h float32
	dpr  float32
}

func (s fakeSurface) Size() (float32, float32) { return s.w, s.h }
func (s fakeSurface) DeviceScale() float32     { return s.dpr }

func newAttached(t *testing.T) (*Controller, *manualSource) {
	t.Helper()
	src := &manualSource{}
	c := NewController(src, DefaultOptions(), nil)
	c.Initialize(fakeSurface{w: 200, h: 150, dpr: 1})
	if !c.Attached() {
		t.Fatal("controller should be attached")
	}
	return c, src
}

func TestZoomStepAndBack(t *testing.T) {
	c, _ := newAttached(t)

	c.Zoom(100, 100, 120)
	got := c.Transform()
	if got.Scale != 1.1 {
		t.Fatalf("scale after zoom in = %v, want 1.1", got.Scale)
	}
	// 0 - (100/1 - 100/1.1) = -9.09, truncated toward zero.
	if got.OffsetX != -9 || got.OffsetY != -9 {
		t.Errorf("offset after zoom in = (%d, %d), want (-9, -9)", got.OffsetX, got.OffsetY)
	}

	c.Zoom(100, 100, -120)
	got = c.Transform()
	if got.Scale != 1.0 {
		t.Errorf("scale after zoom out = %v, want 1.0", got.Scale)
	}
	if got.OffsetX != 0 || got.OffsetY != 0 {
		t.Errorf("offset after zoom out = (%d, %d), want (0, 0)", got.OffsetX, got.OffsetY)
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	c, _ := newAttached(t)
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		cx := rng.Float64() * 200
		cy := rng.Float64() * 150
		delta := float64(rng.IntN(3)-1) * 120

		before := c.Transform()
		bx, by := before.ToContent(cx, cy)

		c.Zoom(cx, cy, delta)

		after := c.Transform()
		ax, ay := after.ToContent(cx, cy)
		if math.Abs(ax-bx) >= 1 || math.Abs(ay-by) >= 1 {
			t.Fatalf("step %d: anchor moved from (%.3f, %.3f) to (%.3f, %.3f) (%v -> %v)",
				i, bx, by, ax, ay, before, after)
		}

		lim := c.Limits()
		if after.Scale < lim.MinScale || after.Scale > lim.MaxScale {
			t.Fatalf("step %d: scale %v outside [%v, %v]", i, after.Scale, lim.MinScale, lim.MaxScale)
		}
	}
}

func TestZoomClampsScale(t *testing.T) {
	c, _ := newAttached(t)

	for i := 0; i < 200; i++ {
		c.Zoom(10, 10, 1)
	}
	if got := c.Transform().Scale; got != 10 {
		t.Errorf("scale after zooming in = %v, want 10", got)
	}

	// At the bound a further step changes nothing.
	at := c.Transform()
	c.Zoom(50, 50, 1)
	if c.Transform() != at {
		t.Errorf("zoom past max changed transform: %v -> %v", at, c.Transform())
	}

	for i := 0; i < 200; i++ {
		c.Zoom(10, 10, -1)
	}
	if got := c.Transform().Scale; got != 0.1 {
		t.Errorf("scale after zooming out = %v, want 0.1", got)
	}

	c.Zoom(10, 10, 0)
	if got := c.Transform().Scale; got != 0.1 {
		t.Errorf("zero delta changed scale to %v", got)
	}
}

func TestPan(t *testing.T) {
	tests := []struct {
		name   string
		scale  int // zoom-in steps before panning
		dx, dy float64
		wantX  int
		wantY  int
	}{
		{"unit scale", 0, 12, -7, 12, -7},
		{"fractional delta truncates", 0, 2.9, -2.9, 2, -2},
		{"zoomed in", 10, 30, 15, 15, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newAttached(t)
			for i := 0; i < tt.scale; i++ {
				c.Zoom(0, 0, 1)
			}
			c.Pan(tt.dx, tt.dy)
			got := c.Transform()
			if got.OffsetX != tt.wantX || got.OffsetY != tt.wantY {
				t.Errorf("offset = (%d, %d), want (%d, %d)", got.OffsetX, got.OffsetY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDragAtScaleTwo(t *testing.T) {
	c, _ := newAttached(t)
	for i := 0; i < 10; i++ {
		c.Zoom(0, 0, 1)
	}
	if c.Transform().Scale != 2 {
		t.Fatalf("scale = %v, want 2", c.Transform().Scale)
	}

	c.PointerDown(1, 50, 50)
	if c.DragState() != Dragging {
		t.Fatal("pointer down should start a drag")
	}
	c.PointerMove(1, 80, 65)
	c.PointerUp(1)

	got := c.Transform()
	if got.OffsetX != 15 || got.OffsetY != 7 {
		t.Errorf("offset = (%d, %d), want (15, 7)", got.OffsetX, got.OffsetY)
	}
	if c.DragState() != DragIdle {
		t.Error("pointer up should end the drag")
	}

	// Moves after release do nothing.
	c.PointerMove(1, 200, 200)
	if c.Transform() != got {
		t.Error("move while idle changed the transform")
	}
}

func TestSlowDragAccumulates(t *testing.T) {
	c, _ := newAttached(t)
	for i := 0; i < 10; i++ {
		c.Zoom(0, 0, 1)
	}

	c.PointerDown(1, 0, 0)
	for x := 1; x <= 10; x++ {
		c.PointerMove(1, float64(x), 0)
	}
	if got := c.Transform().OffsetX; got != 5 {
		t.Errorf("OffsetX = %d after 10px at scale 2, want 5", got)
	}
}

func TestDragIgnoresOtherPointers(t *testing.T) {
	c, _ := newAttached(t)

	c.PointerDown(1, 0, 0)
	c.PointerDown(2, 5, 5)
	c.PointerMove(2, 100, 100)
	if c.Transform() != Identity() {
		t.Error("move from a non-capturing pointer panned the view")
	}
	c.PointerUp(2)
	if c.DragState() != Dragging {
		t.Error("release of another pointer ended the drag")
	}

	c.CaptureLost()
	if c.DragState() != DragIdle {
		t.Error("capture loss should end the drag")
	}
}

func TestResizeMidDragResets(t *testing.T) {
	c, _ := newAttached(t)

	c.PointerDown(1, 10, 10)
	c.Initialize(fakeSurface{w: 400, h: 300, dpr: 1})
	if c.DragState() != DragIdle {
		t.Fatal("resize should reset the drag")
	}

	c.PointerMove(1, 60, 60)
	if c.Transform() != Identity() {
		t.Error("move after resize should not pan")
	}
}

func TestDetachedIsNoOp(t *testing.T) {
	src := &manualSource{}
	c := NewController(src, DefaultOptions(), nil)

	c.Zoom(10, 10, 1)
	c.Pan(5, 5)
	c.PointerDown(1, 0, 0)
	c.PointerMove(1, 50, 50)
	c.Render(func(dc *gg.Context) {})
	c.RequestRedraw()

	if c.Transform() != Identity() {
		t.Errorf("transform changed without surface: %v", c.Transform())
	}
	if src.Queued() != 0 {
		t.Errorf("%d frames requested without surface", src.Queued())
	}

	c.Initialize(fakeSurface{w: 0, h: 10, dpr: 1})
	if c.Attached() {
		t.Error("zero-size surface should not attach")
	}
	c.Initialize(nil)
	if c.Attached() {
		t.Error("nil surface should not attach")
	}
}

func TestWheel(t *testing.T) {
	c, _ := newAttached(t)

	c.Wheel(0, 0, 4, -6, false)
	if got := c.Transform(); got.OffsetX != 4 || got.OffsetY != -6 || got.Scale != 1 {
		t.Errorf("scroll = %v", got)
	}

	c.Wheel(0, 0, 0, 1, true)
	if got := c.Transform().Scale; got != 1.1 {
		t.Errorf("zoom gesture scale = %v, want 1.1", got)
	}

	c.Reset()
	if c.Transform() != Identity() {
		t.Errorf("Reset left %v", c.Transform())
	}
}

func TestSmallWheelScrollsAccumulate(t *testing.T) {
	c, src := newAttached(t)
	for i := 0; i < 10; i++ {
		c.Zoom(0, 0, 1)
	}
	src.Tick()

	// At scale 2 a 1px scroll is half a content unit.
	c.Wheel(0, 0, 1, -1, false)
	if got := c.Transform(); got.OffsetX != 0 || got.OffsetY != 0 {
		t.Fatalf("offset after one 1px scroll = (%d, %d), want (0, 0)", got.OffsetX, got.OffsetY)
	}
	if src.Queued() != 0 {
		t.Error("scroll that did not move requested a frame")
	}

	for i := 0; i < 9; i++ {
		c.Wheel(0, 0, 1, -1, false)
	}
	if got := c.Transform(); got.OffsetX != 5 || got.OffsetY != -5 {
		t.Errorf("offset after 10px = (%d, %d), want (5, -5)", got.OffsetX, got.OffsetY)
	}

	c.Wheel(0, 0, 1, 0, false)
	c.Reset()
	c.Wheel(0, 0, 1, 0, false)
	if got := c.Transform().OffsetX; got != 0 {
		t.Errorf("Reset kept the scroll remainder, OffsetX = %d", got)
	}
}

func TestRedrawsCoalesce(t *testing.T) {
	c, src := newAttached(t)

	var calls int
	first := func(dc *gg.Context) { t.Error("stale draw callback used") }
	c.Render(first)
	for i := 0; i < 10; i++ {
		c.Pan(2, 1)
	}
	c.Render(func(dc *gg.Context) {
		calls++
		dc.SetRGB(1, 0, 0)
		dc.DrawRectangle(0, 0, 5, 5)
		_ = dc.Fill()
	})

	if got := src.Queued(); got != 1 {
		t.Fatalf("queued frames = %d, want 1", got)
	}
	if got := src.Tick(); got != 1 {
		t.Fatalf("ran %d frames", got)
	}
	if calls != 1 || c.Frames() != 1 {
		t.Fatalf("draw calls = %d, frames = %d", calls, c.Frames())
	}

	// The frame used the final offset (20, 10).
	frame := c.Frame()
	if r, g, b, _ := frame.At(22, 12).RGBA(); r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("pixel (22,12) = %d,%d,%d, want red", r>>8, g>>8, b>>8)
	}
	if r, g, b, _ := frame.At(2, 2).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("pixel (2,2) = %d,%d,%d, want background", r>>8, g>>8, b>>8)
	}

	// A new request after the frame schedules again.
	c.RequestRedraw()
	if src.Queued() != 1 {
		t.Error("request after a frame should schedule a new one")
	}
}

func TestDeviceScaleSizesFrame(t *testing.T) {
	src := &manualSource{}
	c := NewController(src, DefaultOptions(), nil)

	var presented image.Image
	c.SetPresenter(func(frame image.Image) { presented = frame })

	c.Initialize(fakeSurface{w: 50, h: 40, dpr: 2})
	c.Render(nil)
	src.Tick()

	b := c.Frame().Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("frame = %dx%d, want 100x80", b.Dx(), b.Dy())
	}
	if presented == nil {
		t.Error("presenter was not called")
	}
}

func TestSchedulerSingleSlot(t *testing.T) {
	src := &manualSource{}
	var ran int
	s := NewFrameScheduler(src, func() { ran++ })

	if !s.Schedule() {
		t.Fatal("first schedule should succeed")
	}
	if s.Schedule() {
		t.Error("second schedule should be a no-op while pending")
	}
	if !s.isPending() {
		t.Error("frame should be pending")
	}

	src.Tick()
	if ran != 1 || s.isPending() {
		t.Errorf("ran = %d, pending = %v", ran, s.isPending())
	}
	if !s.Schedule() {
		t.Error("schedule after a frame should succeed")
	}
}

func TestTickerSource(t *testing.T) {
	var hops int
	var mu sync.Mutex
	src := NewTickerSource(time.Millisecond, func(fn func()) {
		mu.Lock()
		hops++
		mu.Unlock()
		fn()
	})

	done := make(chan struct{})
	src.RequestFrame(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame never ran")
	}
	mu.Lock()
	if hops != 1 {
		t.Errorf("run hook called %d times", hops)
	}
	mu.Unlock()

	src.Stop()
	src.RequestFrame(func() { t.Error("frame ran after Stop") })
	time.Sleep(10 * time.Millisecond)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name                 string
		viewW, viewH, cw, ch float64
		want                 Transform
	}{
		{"wide content", 200, 150, 100, 50, Transform{Scale: 2, OffsetX: 0, OffsetY: 12}},
		{"tall content", 200, 100, 50, 100, Transform{Scale: 1, OffsetX: 75, OffsetY: 0}},
		{"clamped to max", 200, 200, 1, 1, Transform{Scale: 10, OffsetX: 9, OffsetY: 9}},
		{"empty content", 200, 200, 0, 10, Identity()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.viewW, tt.viewH, tt.cw, tt.ch, DefaultLimits())
			if got != tt.want {
				t.Errorf("Fit = %+v, want %+v", got, tt.want)
			}
		})
	}

	c, src := newAttached(t)
	c.Fit(100, 50)
	if got := c.Transform(); got.Scale != 2 {
		t.Errorf("controller Fit scale = %v, want 2", got.Scale)
	}
	if src.Queued() != 1 {
		t.Error("Fit should request a redraw")
	}
}
