package viewport

type DragState int

const (
	DragIdle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

type drag struct {
	state   DragState
	pointer int
	lastX   float64
	lastY   float64
}

func (d *drag) reset() {
	*d = drag{}
}

// DragState returns the drag machine position.
func (c *Controller) DragState() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag.state
}

// PointerDown starts a drag owned by pointer id.
func (c *Controller) PointerDown(id int, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil || c.drag.state == Dragging {
		return
	}
	c.drag = drag{state: Dragging, pointer: id, lastX: x, lastY: y}
}

// PointerMove pans by the distance from the last recorded position. Moves
// from other pointers are ignored. The recorded position advances only by
// the whole content units applied, so slow drags at high zoom still move.
func (c *Controller) PointerMove(id int, x, y float64) {
	c.mu.Lock()
	if c.dc == nil || c.drag.state != Dragging || c.drag.pointer != id {
		c.mu.Unlock()
		return
	}

	before := c.transform
	c.transform = before.panned(x-c.drag.lastX, y-c.drag.lastY)
	c.drag.lastX += float64(c.transform.OffsetX-before.OffsetX) * before.Scale
	c.drag.lastY += float64(c.transform.OffsetY-before.OffsetY) * before.Scale
	changed := c.transform != before
	c.mu.Unlock()

	if changed {
		c.RequestRedraw()
	}
}

// PointerUp ends the drag owned by id.
func (c *Controller) PointerUp(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag.state == Dragging && c.drag.pointer == id {
		c.drag.reset()
	}
}

// CaptureLost ends any drag.
func (c *Controller) CaptureLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag.reset()
}
