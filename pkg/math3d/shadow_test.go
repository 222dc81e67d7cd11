package math3d

import (
	"math"
	"testing"
)

var ground = Plane{Normal: V3(0, 1, 0), D: 0.8}

func project(m Mat4, p Vec3) Vec3 {
	return m.MulVec4(V4FromV3(p, 1)).PerspectiveDivide()
}

func TestShadowProjectionLandsOnPlane(t *testing.T) {
	lights := []Vec3{
		V3(0.5, 1, 0.5).Normalize(),
		V3(0, 1, 0),
		V3(-0.3, 0.2, 0.9).Normalize(),
	}
	points := []Vec3{
		V3(0, 0.8165, 0),
		V3(-0.5, -0.4082, 0.7071),
		V3(3, 2, -1),
	}

	for _, l := range lights {
		m := ShadowProjection(l, ground)
		for _, p := range points {
			s := project(m, p)
			if d := ground.DistanceToPoint(s); math.Abs(d) > 1e-9 {
				t.Errorf("light %v point %v: shadow %v is %v off the plane", l, p, s, d)
			}
			// the shadow lies on the ray through p along l
			if c := p.Sub(s).Cross(l); c.Len() > 1e-9 {
				t.Errorf("light %v point %v: shadow %v not along the light", l, p, s)
			}
		}
	}
}

func TestShadowProjectionFixesPlanePoints(t *testing.T) {
	m := ShadowProjection(V3(0.5, 1, 0.5).Normalize(), ground)
	for _, p := range []Vec3{V3(0, -0.8, 0), V3(4, -0.8, -3), V3(-5, -0.8, 5)} {
		if got := project(m, p); !got.ApproxEqual(p, 1e-9) {
			t.Errorf("plane point %v moved to %v", p, got)
		}
	}
}

func TestShadowProjectionLayout(t *testing.T) {
	l := V3(0.5, 1, 0.5).Normalize()
	m := ShadowProjection(l, ground)
	dotNL := l.Y

	if m[15] != dotNL {
		t.Errorf("m[15] = %v, want n.l = %v", m[15], dotNL)
	}
	for _, i := range []int{3, 7, 11} {
		if m[i] != 0 {
			t.Errorf("m[%d] = %v, want 0", i, m[i])
		}
	}
	want := V3(-l.X*0.8, -l.Y*0.8, -l.Z*0.8)
	if got := V3(m[12], m[13], m[14]); !got.ApproxEqual(want, 1e-12) {
		t.Errorf("translation column = %v, want %v", got, want)
	}
}

func TestShadowProjectionParallelLight(t *testing.T) {
	tests := []struct {
		name  string
		light Vec3
	}{
		{"along x", V3(1, 0, 0)},
		{"along z", V3(0, 0, 1)},
		{"nearly parallel", V3(1, 5e-5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShadowProjection(tt.light, ground); got != Identity() {
				t.Errorf("got %v, want identity", got)
			}
		})
	}
}

func TestPlane(t *testing.T) {
	p := NewPlane(V3(0, 2, 0), V3(0, -0.8, 0))
	if !p.Normal.ApproxEqual(Up(), eps) || math.Abs(p.D-0.8) > eps {
		t.Errorf("NewPlane = %+v, want normal (0,1,0) D 0.8", p)
	}
	if d := p.DistanceToPoint(V3(1, 1.2, 1)); math.Abs(d-2) > eps {
		t.Errorf("distance = %v, want 2", d)
	}

	q := Plane{Normal: V3(0, 3, 0), D: 6}
	q.Normalize()
	if !q.Normal.ApproxEqual(Up(), eps) || math.Abs(q.D-2) > eps {
		t.Errorf("Normalize = %+v", q)
	}
}
