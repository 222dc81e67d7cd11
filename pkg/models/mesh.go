// Package models provides the meshes shadowlab draws: the textured and the
// vertex-colored tetrahedron, the ground quad, and solids loaded from GLB
// files.
package models

import (
	"github.com/taigrr/shadowlab/pkg/math3d"
)

// Mesh represents a triangle mesh. Faces are wound counter-clockwise when
// seen from outside the solid.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on build)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Color    math3d.Vec4
}

// Face represents a triangle face by its vertex indices.
type Face struct {
	V [3]int // Indices into Mesh.Vertices
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Centroid returns the mean of all vertex positions.
func (m *Mesh) Centroid() math3d.Vec3 {
	if len(m.Vertices) == 0 {
		return math3d.Zero3()
	}
	var sum math3d.Vec3
	for _, v := range m.Vertices {
		sum = sum.Add(v.Position)
	}
	return sum.Scale(1.0 / float64(len(m.Vertices)))
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CenterAndScale moves the vertex centroid to the origin and then scales
// every position by s.
func (m *Mesh) CenterAndScale(s float64) {
	c := m.Centroid()
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Sub(c).Scale(s)
	}
	m.CalculateBounds()
}

// Unweld gives every face its own three vertices so per-face attributes do
// not bleed into neighbours.
func (m *Mesh) Unweld() {
	verts := make([]MeshVertex, 0, len(m.Faces)*3)
	for i := range m.Faces {
		f := &m.Faces[i]
		for k := range 3 {
			verts = append(verts, m.Vertices[f.V[k]])
			f.V[k] = len(verts) - 1
		}
	}
	m.Vertices = verts
}

// CalculateNormals assigns every face's oriented normal to its three vertices.
// Orientation assumes the solid is centered at the origin, so a face normal
// pointing toward the origin is flipped. Vertices shared between faces end up
// with the normal of the last face that uses them; call Unweld first.
func (m *Mesh) CalculateNormals() {
	m.assignFaceNormals(func(p0, p1, p2 math3d.Vec3) math3d.Vec3 {
		return OrientedFaceNormal(p0, p1, p2, math3d.Zero3())
	})
}

// CalculateWindingNormals is like CalculateNormals but trusts the winding
// order instead of orienting against the origin. Use it for solids that
// are not convex.
func (m *Mesh) CalculateWindingNormals() {
	m.assignFaceNormals(FaceNormal)
}

func (m *Mesh) assignFaceNormals(normal func(p0, p1, p2 math3d.Vec3) math3d.Vec3) {
	for i := range m.Faces {
		f := &m.Faces[i]
		n := normal(
			m.Vertices[f.V[0]].Position,
			m.Vertices[f.V[1]].Position,
			m.Vertices[f.V[2]].Position,
		)

		// Flat shading - each face has its own normal
		m.Vertices[f.V[0]].Normal = n
		m.Vertices[f.V[1]].Normal = n
		m.Vertices[f.V[2]].Normal = n
	}
}

// Buffers holds a mesh flattened into vertex attribute arrays, ready to be
// handed to a graphics device.
type Buffers struct {
	Positions []float64 // 3 per vertex
	Normals   []float64 // 3 per vertex
	UVs       []float64 // 2 per vertex
	Colors    []float64 // 4 per vertex
	Indices   []uint32
}

// Buffers flattens the mesh into attribute arrays and a triangle index list.
func (m *Mesh) Buffers() Buffers {
	b := Buffers{
		Positions: make([]float64, 0, len(m.Vertices)*3),
		Normals:   make([]float64, 0, len(m.Vertices)*3),
		UVs:       make([]float64, 0, len(m.Vertices)*2),
		Colors:    make([]float64, 0, len(m.Vertices)*4),
		Indices:   make([]uint32, 0, len(m.Faces)*3),
	}
	for _, v := range m.Vertices {
		b.Positions = append(b.Positions, v.Position.X, v.Position.Y, v.Position.Z)
		b.Normals = append(b.Normals, v.Normal.X, v.Normal.Y, v.Normal.Z)
		b.UVs = append(b.UVs, v.UV.X, v.UV.Y)
		b.Colors = append(b.Colors, v.Color.X, v.Color.Y, v.Color.Z, v.Color.W)
	}
	for _, f := range m.Faces {
		b.Indices = append(b.Indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}
	return b
}
