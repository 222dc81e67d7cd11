package render

import (
	"math"
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

func TestEdgeFunction(t *testing.T) {
	// Edge from (0,0) to (4,0), y growing downward
	A, B, C := edgeCoeffs(0, 0, 4, 0)

	tests := []struct {
		name   string
		px, py float64
		sign   int
	}{
		{"below", 2, 1, 1},
		{"above", 2, -1, -1},
		{"on edge", 2, 0, 0},
		{"on extension", 10, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := edgeFunc(A, B, C, tc.px, tc.py)
			var got int
			switch {
			case w > 0:
				got = 1
			case w < 0:
				got = -1
			}
			if got != tc.sign {
				t.Errorf("edge(%v, %v) = %v, want sign %d", tc.px, tc.py, w, tc.sign)
			}
		})
	}
}

func TestTopLeftOwnsSharedEdge(t *testing.T) {
	// Every edge direction; the reverse edge must get the opposite answer
	edges := [][4]float64{
		{0, 0, 4, 0},
		{0, 0, 0, 4},
		{0, 0, 4, 4},
		{4, 0, 0, 4},
	}

	for _, e := range edges {
		A, B, _ := edgeCoeffs(e[0], e[1], e[2], e[3])
		rA, rB, _ := edgeCoeffs(e[2], e[3], e[0], e[1])
		if topLeft(A, B) == topLeft(rA, rB) {
			t.Errorf("edge %v and its reverse both report top-left = %v", e, topLeft(A, B))
		}
	}
}

func TestCovered(t *testing.T) {
	tests := []struct {
		name string
		w    float64
		tl   bool
		want bool
	}{
		{"inside", 0.5, false, true},
		{"outside", -0.5, true, false},
		{"on owned edge", 0, true, true},
		{"on foreign edge", 0, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := covered(tc.w, tc.tl); got != tc.want {
				t.Errorf("covered(%v, %v) = %v, want %v", tc.w, tc.tl, got, tc.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	vert := func(x, y, z float64, v float64) clipVertex {
		return clipVertex{pos: math3d.V4(x, y, z, 1), vary: []float64{v}}
	}

	tests := []struct {
		name      string
		tri       [3]clipVertex
		wantVerts int
	}{
		{
			"inside",
			[3]clipVertex{vert(-1, -1, 0, 0), vert(1, -1, 0, 0), vert(0, 1, 0, 0)},
			3,
		},
		{
			"one vertex past near",
			[3]clipVertex{vert(-1, -1, 0, 0), vert(1, -1, 0, 0), vert(0, 1, -3, 1)},
			4,
		},
		{
			"two vertices past near",
			[3]clipVertex{vert(-1, -1, -3, 0), vert(1, -1, -3, 0), vert(0, 1, 0, 1)},
			3,
		},
		{
			"straddles near and far",
			[3]clipVertex{vert(-1, -1, -3, 0), vert(1, -1, 3, 0), vert(0, 1, 0, 1)},
			5,
		},
		{
			"past far",
			[3]clipVertex{vert(-1, -1, 2, 0), vert(1, -1, 2, 0), vert(0, 1, 2, 0)},
			0,
		},
	}

	r := &raster{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			poly := r.clip(tc.tri)
			if len(poly) != tc.wantVerts {
				t.Fatalf("got %d vertices, want %d", len(poly), tc.wantVerts)
			}
			for i, v := range poly {
				if nearDist(v.pos) < -1e-12 || farDist(v.pos) < -1e-12 {
					t.Errorf("vertex %d = %v lies outside the depth range", i, v.pos)
				}
			}
		})
	}
}

func TestClipInterpolatesVaryings(t *testing.T) {
	tri := [3]clipVertex{
		{pos: math3d.V4(-1, -1, 0, 1), vary: []float64{0}},
		{pos: math3d.V4(1, -1, 0, 1), vary: []float64{0}},
		{pos: math3d.V4(0, 1, -3, 1), vary: []float64{3}},
	}
	poly := (&raster{}).clip(tri)

	// The cut happens a third of the way from z=0 to z=-3
	for _, v := range poly {
		if v.pos.Z == -1 && math.Abs(v.vary[0]-1) > 1e-12 {
			t.Errorf("clipped vertex varying = %v, want 1", v.vary[0])
		}
	}
}

func TestBlendFactor(t *testing.T) {
	src := math3d.V4(1, 1, 1, 0.25)
	tests := []struct {
		f    BlendFactor
		want float64
	}{
		{BlendZero, 0},
		{BlendOne, 1},
		{BlendSrcAlpha, 0.25},
		{BlendOneMinusSrcAlpha, 0.75},
	}

	for _, tc := range tests {
		if got := blendFactor(tc.f, src); got != tc.want {
			t.Errorf("blendFactor(%v) = %v, want %v", tc.f, got, tc.want)
		}
	}
}
