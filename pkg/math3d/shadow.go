package math3d

import "math"

// ShadowEpsilon is the smallest |n·l| for which ShadowProjection builds a
// projective matrix. Below it the light grazes the plane and no shadow lands.
const ShadowEpsilon = 1e-4

// ShadowProjection returns the matrix that flattens geometry onto plane along
// the directional light l, where l points from the surface toward the light
// and should be normalized. Points already on the plane map to themselves.
//
// The result is projective: transformed points generally have w != 1.
// When the light is parallel to the plane the identity is returned.
func ShadowProjection(l Vec3, plane Plane) Mat4 {
	n := plane.Normal
	d := plane.D
	dotNL := n.Dot(l)
	if math.Abs(dotNL) < ShadowEpsilon {
		return Identity()
	}

	return Mat4{
		dotNL - l.X*n.X, -l.Y * n.X, -l.Z * n.X, 0,
		-l.X * n.Y, dotNL - l.Y*n.Y, -l.Z * n.Y, 0,
		-l.X * n.Z, -l.Y * n.Z, dotNL - l.Z*n.Z, 0,
		-l.X * d, -l.Y * d, -l.Z * d, dotNL,
	}
}
