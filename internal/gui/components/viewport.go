package components

import (
	"image"
	"sync"
	"time"

	"diamond-pattern/internal/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	ViewportMinWidth  = 480
	ViewportMinHeight = 360

	// dragPointer identifies drags that arrive without a mouse button,
	// such as touch input.
	dragPointer = 1000
)

// ViewportWidget shows controller frames and feeds pointer, wheel and
// resize input back into the controller.
type ViewportWidget struct {
	widget.BaseWidget

	controller *viewport.Controller
	raster     *canvas.Raster
	debounce   time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	button  desktop.MouseButton
	onFrame func()
}

var (
	_ fyne.Draggable    = (*ViewportWidget)(nil)
	_ fyne.Scrollable   = (*ViewportWidget)(nil)
	_ desktop.Mouseable = (*ViewportWidget)(nil)
)

func NewViewportWidget(c *viewport.Controller, debounce time.Duration) *ViewportWidget {
	w := &ViewportWidget{controller: c, debounce: debounce}

	w.raster = canvas.NewRaster(func(width, height int) image.Image {
		if frame := c.Frame(); frame != nil {
			return frame
		}
		return image.NewRGBA(image.Rect(0, 0, width, height))
	})
	w.raster.ScaleMode = canvas.ImageScalePixels
	w.raster.SetMinSize(fyne.NewSize(ViewportMinWidth, ViewportMinHeight))

	// Frames are painted on the fyne goroutine.
	c.SetPresenter(func(image.Image) {
		w.raster.Refresh()
		w.mu.Lock()
		onFrame := w.onFrame
		w.mu.Unlock()
		if onFrame != nil {
			onFrame()
		}
	})

	w.ExtendBaseWidget(w)
	return w
}

// SetFrameHandler registers a callback run after each presented frame.
func (w *ViewportWidget) SetFrameHandler(h func()) {
	w.mu.Lock()
	w.onFrame = h
	w.mu.Unlock()
}

func (w *ViewportWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

// Resize re-initializes the controller once resizing has settled.
func (w *ViewportWidget) Resize(size fyne.Size) {
	w.BaseWidget.Resize(size)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		fyne.Do(w.Reinitialize)
	})
}

// Reinitialize sizes the controller to the widget and redraws.
func (w *ViewportWidget) Reinitialize() {
	w.controller.Initialize(surface{w})
	w.controller.RequestRedraw()
}

// Stop cancels a pending resize.
func (w *ViewportWidget) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *ViewportWidget) MouseDown(ev *desktop.MouseEvent) {
	w.mu.Lock()
	w.button = ev.Button
	w.mu.Unlock()
}

func (w *ViewportWidget) MouseUp(ev *desktop.MouseEvent) {
	w.controller.PointerUp(pointerID(ev.Button))
}

func (w *ViewportWidget) Dragged(ev *fyne.DragEvent) {
	w.mu.Lock()
	button := w.button
	w.mu.Unlock()
	if button != 0 && button != desktop.MouseButtonPrimary {
		return
	}

	id := pointerID(button)
	x, y := float64(ev.Position.X), float64(ev.Position.Y)
	if w.controller.DragState() != viewport.Dragging {
		w.controller.PointerDown(id, x-float64(ev.Dragged.DX), y-float64(ev.Dragged.DY))
	}
	w.controller.PointerMove(id, x, y)
}

func (w *ViewportWidget) DragEnd() {
	w.mu.Lock()
	w.button = 0
	w.mu.Unlock()
	w.controller.CaptureLost()
}

func (w *ViewportWidget) Scrolled(ev *fyne.ScrollEvent) {
	w.controller.Wheel(
		float64(ev.Position.X), float64(ev.Position.Y),
		float64(ev.Scrolled.DX), float64(ev.Scrolled.DY),
		zoomModifierHeld(),
	)
}

func pointerID(b desktop.MouseButton) int {
	if b == 0 {
		return dragPointer
	}
	return int(b)
}

// zoomModifierHeld reports whether Ctrl or Cmd is down.
func zoomModifierHeld() bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	d, ok := app.Driver().(desktop.Driver)
	if !ok {
		return false
	}
	return d.CurrentKeyModifiers()&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0
}

// surface exposes the widget bounds to the controller.
type surface struct {
	w *ViewportWidget
}

func (s surface) Size() (float32, float32) {
	size := s.w.BaseWidget.Size()
	return size.Width, size.Height
}

func (s surface) DeviceScale() float32 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(s.w); c != nil {
		return c.Scale()
	}
	return 1
}
