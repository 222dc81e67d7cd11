package scene

import (
	"math"
	"sync/atomic"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// Rotation is the drag-accumulated orientation of the solid, two angles in
// degrees. Input handlers write it and the frame builder reads it from
// another goroutine; each angle is read and written whole, but a reader may
// see one angle updated before the other.
type Rotation struct {
	x, y    atomic.Uint64 // math.Float64bits of the angles
	version atomic.Uint64
	scale   float64
}

// NewRotation creates a rotation at rest. scale is the drag sensitivity in
// degrees per pixel.
func NewRotation(scale float64) *Rotation {
	return &Rotation{scale: scale}
}

// Drag adds a pointer movement of (dx, dy) pixels. Horizontal movement
// accumulates into AngleX, vertical into AngleY. Angles are never wrapped.
func (r *Rotation) Drag(dx, dy float64) {
	addFloat(&r.x, dx*r.scale)
	addFloat(&r.y, dy*r.scale)
	r.version.Add(1)
}

// Set replaces both angles.
func (r *Rotation) Set(angleX, angleY float64) {
	r.x.Store(math.Float64bits(angleX))
	r.y.Store(math.Float64bits(angleY))
	r.version.Add(1)
}

// Angles returns the accumulated angles in degrees.
func (r *Rotation) Angles() (angleX, angleY float64) {
	return math.Float64frombits(r.x.Load()), math.Float64frombits(r.y.Load())
}

// Version increases on every change.
func (r *Rotation) Version() uint64 {
	return r.version.Load()
}

// Scale returns the drag sensitivity in degrees per pixel.
func (r *Rotation) Scale() float64 {
	return r.scale
}

func addFloat(bits *atomic.Uint64, delta float64) {
	for {
		old := bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// ModelMatrix builds the solid's orientation from the drag angles. A
// horizontal drag (angleX) spins the solid about the vertical axis and a
// vertical drag (angleY) tips it about the horizontal axis.
func ModelMatrix(angleX, angleY float64) math3d.Mat4 {
	return math3d.RotateX(math3d.Radians(angleY)).Mul(math3d.RotateY(math3d.Radians(angleX)))
}

// DragTracker turns successive pointer positions into drag deltas. Each
// input surface owns its own tracker.
type DragTracker struct {
	prevX, prevY float64
	down         bool
}

// Press starts a drag at (x, y).
func (t *DragTracker) Press(x, y float64) {
	t.prevX, t.prevY = x, y
	t.down = true
}

// Move reports the movement since the last position. ok is false when no
// drag is in progress.
func (t *DragTracker) Move(x, y float64) (dx, dy float64, ok bool) {
	dx, dy = x-t.prevX, y-t.prevY
	t.prevX, t.prevY = x, y
	if !t.down {
		return 0, 0, false
	}
	return dx, dy, true
}

// Release ends the drag.
func (t *DragTracker) Release() {
	t.down = false
}

// Dragging reports whether a drag is in progress.
func (t *DragTracker) Dragging() bool {
	return t.down
}
