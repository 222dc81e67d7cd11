package scene

import (
	"errors"
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

func newTestBuilder() (*TransformBuilder, *Rotation) {
	cfg := DefaultConfig()
	rot := NewRotation(cfg.TouchScale)
	return NewTransformBuilder(cfg.Camera, rot), rot
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"landscape", 200, 100, false},
		{"portrait", 90, 160, false},
		{"single pixel", 1, 1, false},
		{"zero width", 0, 100, true},
		{"zero height", 100, 0, true},
		{"negative", -4, 3, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestBuilder()
			err := b.Resize(tc.width, tc.height)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidViewport) {
					t.Errorf("Resize = %v, want ErrInvalidViewport", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resize: %v", err)
			}

			r := float64(tc.width) / float64(tc.height)
			want := math3d.Frustum(-r, r, -1, 1, 2, 15)
			if !b.Projection().ApproxEqual(want, epsilon) {
				t.Errorf("Projection() = %v, want %v", b.Projection(), want)
			}
			// Symmetric in x and y
			if p := b.Projection(); p.Get(0, 2) != 0 || p.Get(1, 2) != 0 {
				t.Errorf("projection is off-center: %v", p)
			}
		})
	}
}

func TestResizeRejectsDepthRange(t *testing.T) {
	cam := DefaultConfig().Camera
	cam.Near, cam.Far = 5, 5
	b := NewTransformBuilder(cam, NewRotation(1))
	if err := b.Resize(10, 10); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Resize = %v, want ErrInvalidViewport", err)
	}
	if !b.Projection().ApproxEqual(math3d.Identity(), 0) {
		t.Error("failed Resize replaced the projection")
	}
}

func TestFrame(t *testing.T) {
	b, rot := newTestBuilder()
	if err := b.Resize(160, 90); err != nil {
		t.Fatal(err)
	}
	rot.Set(30, -20)

	f := b.Frame()
	wantView := math3d.LookAt(math3d.V3(0, 1, 4), math3d.V3(0, 0, 0), math3d.V3(0, 1, 0))
	wantModel := ModelMatrix(30, -20)

	if !f.View.ApproxEqual(wantView, epsilon) {
		t.Errorf("View = %v, want %v", f.View, wantView)
	}
	if !f.Model.ApproxEqual(wantModel, epsilon) {
		t.Errorf("Model = %v, want %v", f.Model, wantModel)
	}
	if !f.ModelView.ApproxEqual(wantView.Mul(wantModel), epsilon) {
		t.Error("ModelView != View * Model")
	}
	if !f.MVP.ApproxEqual(f.Projection.Mul(wantView).Mul(wantModel), epsilon) {
		t.Error("MVP != Projection * View * Model")
	}
}

func TestModelFollowsRotation(t *testing.T) {
	b, rot := newTestBuilder()
	if m := b.Model(); !m.ApproxEqual(math3d.Identity(), epsilon) {
		t.Errorf("initial Model() = %v, want identity", m)
	}

	rot.Drag(320, 0)
	want := ModelMatrix(180, 0)
	if m := b.Model(); !m.ApproxEqual(want, epsilon) {
		t.Errorf("Model() after drag = %v, want %v", m, want)
	}

	// Dragging leaves the projection alone
	if err := b.Resize(4, 3); err != nil {
		t.Fatal(err)
	}
	before := b.Projection()
	rot.Drag(-50, 70)
	if b.Projection() != before {
		t.Error("drag changed the projection")
	}
}

func TestEyeProjectsToCenter(t *testing.T) {
	b, _ := newTestBuilder()
	if err := b.Resize(100, 100); err != nil {
		t.Fatal(err)
	}
	f := b.Frame()

	// The look-at target lands in the middle of the screen
	clip := f.Projection.Mul(f.View).MulVec4(math3d.V4(0, 0, 0, 1))
	ndc := clip.PerspectiveDivide()
	if !ndc.ApproxEqual(math3d.V3(0, 0, ndc.Z), epsilon) || ndc.Z <= -1 || ndc.Z >= 1 {
		t.Errorf("target at NDC %v, want screen center inside the depth range", ndc)
	}
}

func BenchmarkFrame(b *testing.B) {
	tb, rot := newTestBuilder()
	_ = tb.Resize(1920, 1080)

	for b.Loop() {
		rot.Drag(1, 1)
		_ = tb.Frame()
	}
}
