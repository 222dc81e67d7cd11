package models

import (
	"math"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// NewGroundPlane builds a square quad lying in plane, centered on the point of
// the plane closest to the origin and reaching halfExtent along each edge
// direction. The quad faces along the plane normal. For the horizontal plane
// y = h the corners are (-e,h,-e), (-e,h,e), (e,h,e), (e,h,-e).
func NewGroundPlane(plane math3d.Plane, halfExtent float64) *Mesh {
	plane.Normalize()
	n := plane.Normal
	center := n.Scale(-plane.D)

	helper := math3d.V3(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		helper = math3d.V3(0, 0, 1)
	}
	e1 := helper.Sub(n.Scale(n.Dot(helper))).Normalize()
	e2 := e1.Cross(n)

	corner := func(a, b float64) math3d.Vec3 {
		return center.Add(e1.Scale(a * halfExtent)).Add(e2.Scale(b * halfExtent))
	}

	m := NewMesh("ground")
	m.Vertices = []MeshVertex{
		{Position: corner(-1, -1), Normal: n, UV: math3d.V2(0, 0)},
		{Position: corner(-1, 1), Normal: n, UV: math3d.V2(0, 1)},
		{Position: corner(1, 1), Normal: n, UV: math3d.V2(1, 1)},
		{Position: corner(1, -1), Normal: n, UV: math3d.V2(1, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}},
	}
	m.CalculateBounds()
	return m
}
