// Package viewport keeps a pan/zoom transform over a drawing surface and
// repaints it through a coalescing frame scheduler.
package viewport

import (
	"image"
	"math"
	"sync"

	"diamond-pattern/internal/logger"

	"github.com/gogpu/gg"
)

// Surface is the element the viewport paints into.
type Surface interface {
	// Size returns the logical size of the element.
	Size() (width, height float32)
	// DeviceScale returns the device pixel ratio.
	DeviceScale() float32
}

// DrawFunc paints content in content coordinates. The context arrives with
// the device scale, zoom and offset already applied.
type DrawFunc func(dc *gg.Context)

// Presenter receives every finished frame.
type Presenter func(frame image.Image)

type Options struct {
	Limits     Limits
	Background gg.RGBA
}

func DefaultOptions() Options {
	return Options{Limits: DefaultLimits(), Background: gg.White}
}

type Controller struct {
	mu        sync.Mutex
	opts      Options
	transform Transform
	drag      drag

	// Wheel movement not yet applied as whole content units, in screen
	// pixels.
	scrollX, scrollY float64

	surface Surface
	dc      *gg.Context
	dpr     float64
	draw    DrawFunc
	present Presenter
	frame   image.Image

	scheduler *FrameScheduler
	logger    logger.Logger
}

func NewController(source FrameSource, opts Options, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NoOp{}
	}
	c := &Controller{
		opts:      opts,
		transform: Identity(),
		logger:    log,
	}
	c.scheduler = NewFrameScheduler(source, c.paint)
	return c
}

// SetPresenter registers the callback receiving finished frames.
func (c *Controller) SetPresenter(p Presenter) {
	c.mu.Lock()
	c.present = p
	c.mu.Unlock()
}

// Initialize sizes the backing context to the device-pixel bounds of
// surface. It must be called again after every resize. A nil or empty
// surface detaches the controller. Any drag in progress is dropped.
func (c *Controller) Initialize(surface Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drag.reset()
	c.resetScroll()

	if surface == nil {
		c.detach()
		return
	}
	w, h := surface.Size()
	dpr := float64(surface.DeviceScale())
	if dpr <= 0 {
		dpr = 1
	}
	pw := int(math.Ceil(float64(w) * dpr))
	ph := int(math.Ceil(float64(h) * dpr))
	if pw <= 0 || ph <= 0 {
		c.detach()
		return
	}

	if c.dc == nil {
		c.dc = gg.NewContext(pw, ph)
	} else if err := c.dc.Resize(pw, ph); err != nil {
		c.logger.Error("Viewport", err, map[string]interface{}{
			"width":  pw,
			"height": ph,
		})
		return
	}
	c.surface = surface
	c.dpr = dpr

	c.logger.Debug("Viewport", "surface initialized", map[string]interface{}{
		"width":        pw,
		"height":       ph,
		"device_scale": dpr,
	})
}

func (c *Controller) detach() {
	if c.dc != nil {
		_ = c.dc.Close()
	}
	c.dc = nil
	c.surface = nil
}

// Attached reports whether a surface is available.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc != nil
}

func (c *Controller) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

func (c *Controller) Limits() Limits {
	return c.opts.Limits
}

// Zoom steps the scale by one increment in the direction of delta, keeping
// the content point under (cx, cy) fixed.
func (c *Controller) Zoom(cx, cy, delta float64) {
	if !c.mutate(func(t Transform) Transform {
		return t.zoomed(c.opts.Limits, cx, cy, delta)
	}) {
		return
	}
	c.RequestRedraw()
}

// Pan moves the view by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	if !c.mutate(func(t Transform) Transform {
		return t.panned(dx, dy)
	}) {
		return
	}
	c.RequestRedraw()
}

// Wheel zooms with dy when zoom is set and scrolls by (dx, dy) otherwise.
// Scroll deltas below one content unit accumulate until they move the view.
func (c *Controller) Wheel(x, y, dx, dy float64, zoom bool) {
	if zoom {
		c.Zoom(x, y, dy)
		return
	}

	c.mu.Lock()
	if c.dc == nil {
		c.mu.Unlock()
		return
	}
	before := c.transform
	c.scrollX += dx
	c.scrollY += dy
	c.transform = before.panned(c.scrollX, c.scrollY)
	c.scrollX -= float64(c.transform.OffsetX-before.OffsetX) * before.Scale
	c.scrollY -= float64(c.transform.OffsetY-before.OffsetY) * before.Scale
	changed := c.transform != before
	c.mu.Unlock()

	if changed {
		c.RequestRedraw()
	}
}

func (c *Controller) resetScroll() {
	c.scrollX, c.scrollY = 0, 0
}

// Reset restores the identity transform.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.transform = Identity()
	c.drag.reset()
	c.resetScroll()
	attached := c.dc != nil
	c.mu.Unlock()

	if attached {
		c.RequestRedraw()
	}
}

// Fit centres a content area of the given size in the surface.
func (c *Controller) Fit(contentW, contentH float64) {
	c.mu.Lock()
	if c.dc == nil {
		c.mu.Unlock()
		return
	}
	w, h := c.surface.Size()
	c.transform = Fit(float64(w), float64(h), contentW, contentH, c.opts.Limits)
	c.resetScroll()
	c.mu.Unlock()

	c.RequestRedraw()
}

// mutate applies fn to the transform when a surface is attached.
func (c *Controller) mutate(fn func(Transform) Transform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil {
		return false
	}
	c.transform = fn(c.transform)
	return true
}

// Render installs draw as the paint callback and schedules a frame.
func (c *Controller) Render(draw DrawFunc) {
	c.mu.Lock()
	c.draw = draw
	c.mu.Unlock()
	c.RequestRedraw()
}

// RequestRedraw schedules a frame unless one is already pending.
func (c *Controller) RequestRedraw() {
	if !c.Attached() {
		return
	}
	c.scheduler.Schedule()
}

// Frame returns the most recently painted frame.
func (c *Controller) Frame() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Frames returns the number of frames painted.
func (c *Controller) Frames() uint64 {
	return c.scheduler.Frames()
}

func (c *Controller) paint() {
	c.mu.Lock()
	if c.dc == nil {
		c.mu.Unlock()
		return
	}

	dc := c.dc
	t := c.transform
	dc.ClearWithColor(c.opts.Background)
	dc.Push()
	dc.Scale(c.dpr*t.Scale, c.dpr*t.Scale)
	dc.Translate(float64(t.OffsetX), float64(t.OffsetY))
	if c.draw != nil {
		c.draw(dc)
	}
	dc.Pop()

	c.frame = dc.Image()
	frame, present := c.frame, c.present
	c.mu.Unlock()

	if present != nil {
		present(frame)
	}
}
