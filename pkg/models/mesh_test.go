package models

import (
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(2, 0, 0)},
		{Position: math3d.V3(2, 2, 0)},
		{Position: math3d.V3(0, 2, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}},
	}
	m.CalculateBounds()
	return m
}

func TestMeshBounds(t *testing.T) {
	m := quadMesh()

	if got := m.Center(); !got.ApproxEqual(math3d.V3(1, 1, 0), 1e-12) {
		t.Errorf("Center = %v, want (1,1,0)", got)
	}
	if got := m.Size(); !got.ApproxEqual(math3d.V3(2, 2, 0), 1e-12) {
		t.Errorf("Size = %v, want (2,2,0)", got)
	}
	if m.BoundsMin != math3d.V3(0, 0, 0) || m.BoundsMax != math3d.V3(2, 2, 0) {
		t.Errorf("bounds = %v, %v", m.BoundsMin, m.BoundsMax)
	}
}

func TestMeshCenterAndScale(t *testing.T) {
	m := quadMesh()
	m.CenterAndScale(0.5)

	if c := m.Centroid(); !c.ApproxEqual(math3d.Zero3(), 1e-12) {
		t.Errorf("centroid = %v, want origin", c)
	}
	if got := m.Size(); !got.ApproxEqual(math3d.V3(1, 1, 0), 1e-12) {
		t.Errorf("Size = %v, want (1,1,0)", got)
	}
}

func TestMeshUnweld(t *testing.T) {
	m := quadMesh()
	m.Unweld()

	if m.VertexCount() != 6 {
		t.Fatalf("VertexCount = %d, want 6", m.VertexCount())
	}
	for i, f := range m.Faces {
		want := [3]int{i * 3, i*3 + 1, i*3 + 2}
		if f.V != want {
			t.Errorf("face %d = %v, want %v", i, f.V, want)
		}
	}
	// Shared corner 0 is now two separate vertices at the same spot
	if m.Vertices[0].Position != m.Vertices[3].Position {
		t.Errorf("unwelded corners differ: %v vs %v", m.Vertices[0].Position, m.Vertices[3].Position)
	}
}

func TestMeshWindingNormals(t *testing.T) {
	m := quadMesh()
	m.CalculateWindingNormals()

	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("vertex %d normal = %v, want +z", i, v.Normal)
		}
	}
}
