package models

import (
	"math"
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

func TestFaceNormal(t *testing.T) {
	tests := []struct {
		name       string
		p0, p1, p2 math3d.Vec3
		want       math3d.Vec3
	}{
		{"ccw in xy", math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)},
		{"cw in xy", math3d.V3(0, 0, 0), math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{"large triangle", math3d.V3(0, 0, 0), math3d.V3(0, 0, 100), math3d.V3(100, 0, 0), math3d.V3(0, 1, 0)},
		{"collinear", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1), math3d.V3(2, 2, 2), math3d.V3(0, 1, 0)},
		{"coincident", math3d.V3(1, 2, 3), math3d.V3(1, 2, 3), math3d.V3(1, 2, 3), math3d.V3(0, 1, 0)},
		{"below epsilon", math3d.V3(0, 0, 0), math3d.V3(1e-3, 0, 0), math3d.V3(0, 0, 1e-3), math3d.V3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FaceNormal(tt.p0, tt.p1, tt.p2)
			if !got.ApproxEqual(tt.want, 1e-12) {
				t.Errorf("FaceNormal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrientedFaceNormal(t *testing.T) {
	// A face at z=1 seen from the origin; both windings must point away (+z).
	a, b, c := math3d.V3(0, 0, 1), math3d.V3(1, 0, 1), math3d.V3(0, 1, 1)
	up := math3d.V3(0, 0, 1)

	if got := OrientedFaceNormal(a, b, c, math3d.Zero3()); !got.ApproxEqual(up, 1e-12) {
		t.Errorf("ccw: got %v, want %v", got, up)
	}
	if got := OrientedFaceNormal(a, c, b, math3d.Zero3()); !got.ApproxEqual(up, 1e-12) {
		t.Errorf("cw: got %v, want %v", got, up)
	}

	// Moving the center past the face flips the result
	if got := OrientedFaceNormal(a, b, c, math3d.V3(0, 0, 5)); !got.ApproxEqual(up.Negate(), 1e-12) {
		t.Errorf("center beyond face: got %v, want %v", got, up.Negate())
	}
}

func TestOrientedFaceNormalIsUnit(t *testing.T) {
	pts := []math3d.Vec3{
		math3d.V3(0.3, -2, 1), math3d.V3(4, 0.5, -1), math3d.V3(-3, 3, 2),
		math3d.V3(7, 7, 0.1), math3d.V3(-0.2, 0.1, 9),
	}
	for i := 0; i+2 < len(pts); i++ {
		n := OrientedFaceNormal(pts[i], pts[i+1], pts[i+2], math3d.Zero3())
		if math.Abs(n.Len()-1) > 1e-12 {
			t.Errorf("triangle %d: |n| = %v, want 1", i, n.Len())
		}
	}
}

func BenchmarkOrientedFaceNormal(b *testing.B) {
	p0, p1, p2 := TetrahedronCorners[0], TetrahedronCorners[1], TetrahedronCorners[2]

	for b.Loop() {
		_ = OrientedFaceNormal(p0, p1, p2, math3d.Zero3())
	}
}
