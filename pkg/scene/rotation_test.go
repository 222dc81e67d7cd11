package scene

import (
	"math"
	"sync"
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

const epsilon = 1e-9

func TestDragReversible(t *testing.T) {
	r := NewRotation(DefaultTouchScale)
	r.Drag(10, 0)
	if x, _ := r.Angles(); x != 10*DefaultTouchScale {
		t.Errorf("AngleX after drag = %v, want %v", x, 10*DefaultTouchScale)
	}
	r.Drag(-10, 0)
	if x, y := r.Angles(); x != 0 || y != 0 {
		t.Errorf("angles after reverse drag = (%v, %v), want (0, 0)", x, y)
	}
}

func TestDragScale(t *testing.T) {
	tests := []struct {
		name         string
		dx, dy       float64
		wantX, wantY float64
	}{
		{"half turn across", 320, 0, 180, 0},
		{"half turn down", 0, 320, 0, 180},
		{"diagonal", 32, -64, 18, -36},
		{"many turns", 3200, 0, 1800, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRotation(DefaultTouchScale)
			r.Drag(tc.dx, tc.dy)
			x, y := r.Angles()
			if math.Abs(x-tc.wantX) > epsilon || math.Abs(y-tc.wantY) > epsilon {
				t.Errorf("angles = (%v, %v), want (%v, %v)", x, y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestRotationVersion(t *testing.T) {
	r := NewRotation(1)
	v0 := r.Version()
	r.Drag(1, 0)
	r.Set(5, 6)
	if got := r.Version(); got != v0+2 {
		t.Errorf("Version() = %d, want %d", got, v0+2)
	}
	if x, y := r.Angles(); x != 5 || y != 6 {
		t.Errorf("Angles() = (%v, %v), want (5, 6)", x, y)
	}
}

func TestConcurrentDrag(t *testing.T) {
	r := NewRotation(DefaultTouchScale)
	const workers, drags = 8, 1000

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range drags {
				r.Drag(1, 2)
			}
		}()
	}
	wg.Wait()

	x, y := r.Angles()
	if x != workers*drags*DefaultTouchScale || y != 2*workers*drags*DefaultTouchScale {
		t.Errorf("angles = (%v, %v), lost updates", x, y)
	}
	if got := r.Version(); got != workers*drags {
		t.Errorf("Version() = %d, want %d", got, workers*drags)
	}
}

func TestModelMatrixAtRest(t *testing.T) {
	if m := ModelMatrix(0, 0); !m.ApproxEqual(math3d.Identity(), epsilon) {
		t.Errorf("ModelMatrix(0, 0) = %v, want identity", m)
	}
}

func TestModelMatrixIsRotation(t *testing.T) {
	angles := []float64{0, 17, 90, -45, 359.9, 720, -1e4, 123456.7}

	for _, ax := range angles {
		for _, ay := range angles {
			m := ModelMatrix(ax, ay)
			if !m.Mul(m.Transpose()).ApproxEqual(math3d.Identity(), 1e-9) {
				t.Errorf("ModelMatrix(%v, %v) is not orthogonal", ax, ay)
			}
			if det := m.Determinant(); math.Abs(det-1) > 1e-9 {
				t.Errorf("ModelMatrix(%v, %v) determinant = %v, want 1", ax, ay, det)
			}
		}
	}
}

func TestModelMatrixAxes(t *testing.T) {
	tests := []struct {
		name   string
		ax, ay float64
		in     math3d.Vec3
		want   math3d.Vec3
	}{
		// Horizontal drag spins about the vertical axis
		{"spin", 90, 0, math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		// Vertical drag tips about the horizontal axis
		{"tip", 0, 90, math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)},
		// Spin applies first
		{"spin then tip", 90, 90, math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ModelMatrix(tc.ax, tc.ay).MulVec3(tc.in)
			if !got.ApproxEqual(tc.want, epsilon) {
				t.Errorf("ModelMatrix(%v, %v) * %v = %v, want %v", tc.ax, tc.ay, tc.in, got, tc.want)
			}
		})
	}
}

func TestDragTracker(t *testing.T) {
	var a, b DragTracker

	if _, _, ok := a.Move(5, 5); ok {
		t.Error("Move before Press reported a drag")
	}

	a.Press(10, 10)
	b.Press(100, 100)

	dx, dy, ok := a.Move(13, 8)
	if !ok || dx != 3 || dy != -2 {
		t.Errorf("a.Move = (%v, %v, %v), want (3, -2, true)", dx, dy, ok)
	}
	// b is unaffected by a's movement
	dx, dy, ok = b.Move(101, 104)
	if !ok || dx != 1 || dy != 4 {
		t.Errorf("b.Move = (%v, %v, %v), want (1, 4, true)", dx, dy, ok)
	}

	a.Release()
	if a.Dragging() || !b.Dragging() {
		t.Errorf("Dragging() = %v, %v, want false, true", a.Dragging(), b.Dragging())
	}
	if _, _, ok := a.Move(20, 20); ok {
		t.Error("Move after Release reported a drag")
	}
}
