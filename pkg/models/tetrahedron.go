package models

import "github.com/taigrr/shadowlab/pkg/math3d"

// TetrahedronCorners are the four corners of a regular tetrahedron with unit
// edge length, apex up.
var TetrahedronCorners = [4]math3d.Vec3{
	{X: 0, Y: 0.8165, Z: 0},
	{X: -0.5, Y: -0.4082, Z: 0.7071},
	{X: 0.5, Y: -0.4082, Z: 0.7071},
	{X: 0, Y: -0.4082, Z: -0.7071},
}

// tetrahedronFaces index TetrahedronCorners, counter-clockwise from outside.
var tetrahedronFaces = [4][3]int{
	{0, 1, 2},
	{0, 2, 3},
	{0, 3, 1},
	{1, 3, 2},
}

// Every face maps the full texture as one triangle.
var tetrahedronUVs = [3]math3d.Vec2{
	{X: 0, Y: 0},
	{X: 1, Y: 0},
	{X: 0.5, Y: 1},
}

// NewTetrahedron builds the flat-shaded tetrahedron solid: twelve vertices,
// three per face, centered on their centroid and scaled by s, with outward
// face normals.
func NewTetrahedron(s float64) *Mesh {
	m := NewMesh("tetrahedron")
	for _, face := range tetrahedronFaces {
		base := len(m.Vertices)
		for k, c := range face {
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: TetrahedronCorners[c],
				UV:       tetrahedronUVs[k],
			})
		}
		m.Faces = append(m.Faces, Face{V: [3]int{base, base + 1, base + 2}})
	}

	m.CenterAndScale(s)
	m.CalculateNormals()
	return m
}

// ColoredTetrahedronCorners are the corners of the vertex-colored solid: a
// triangle in the y=0 plane with its apex straight up.
var ColoredTetrahedronCorners = [4]math3d.Vec3{
	{X: 0, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: -1},
	{X: -1, Y: 0, Z: -1},
	{X: 0, Y: 1, Z: 0},
}

// ColoredTetrahedronColors are the corner colors: red, green, blue, yellow.
var ColoredTetrahedronColors = [4]math3d.Vec4{
	{X: 1, Y: 0, Z: 0, W: 1},
	{X: 0, Y: 1, Z: 0, W: 1},
	{X: 0, Y: 0, Z: 1, W: 1},
	{X: 1, Y: 1, Z: 0, W: 1},
}

// Winding is not consistent, so the solid must be drawn without culling.
var coloredTetrahedronFaces = [4][3]int{
	{0, 1, 2},
	{0, 1, 3},
	{1, 2, 3},
	{2, 0, 3},
}

// NewColoredTetrahedron builds the unlit solid: four shared vertices, each
// with its own color, centered on their centroid and scaled by s. Colors
// blend across every face. It has no normals or UVs.
func NewColoredTetrahedron(s float64) *Mesh {
	m := NewMesh("colored tetrahedron")
	for i, c := range ColoredTetrahedronCorners {
		m.Vertices = append(m.Vertices, MeshVertex{
			Position: c,
			Color:    ColoredTetrahedronColors[i],
		})
	}
	for _, f := range coloredTetrahedronFaces {
		m.Faces = append(m.Faces, Face{V: f})
	}

	m.CenterAndScale(s)
	return m
}
