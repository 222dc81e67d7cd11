package models

import "github.com/taigrr/shadowlab/pkg/math3d"

// DegenerateEpsilon is the cross-product length below which a triangle is
// treated as degenerate.
const DegenerateEpsilon = 1e-5

// FaceNormal returns the unit normal of triangle (p0, p1, p2) following its
// winding: normalize((p1-p0) x (p2-p0)). Degenerate triangles get world up.
func FaceNormal(p0, p1, p2 math3d.Vec3) math3d.Vec3 {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	l := n.Len()
	if l < DegenerateEpsilon {
		return math3d.Up()
	}
	return n.Scale(1.0 / l)
}

// OrientedFaceNormal returns FaceNormal flipped, if needed, so it points away
// from center as seen from the face centroid.
func OrientedFaceNormal(p0, p1, p2, center math3d.Vec3) math3d.Vec3 {
	n := FaceNormal(p0, p1, p2)
	centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3)
	if n.Dot(centroid.Sub(center)) < 0 {
		return n.Negate()
	}
	return n
}
