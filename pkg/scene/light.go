package scene

import "github.com/taigrr/shadowlab/pkg/math3d"

// Light is a directional light.
type Light struct {
	Direction math3d.Vec3 // Toward the light, world space, as configured
	Diffuse   math3d.Vec3
	Ambient   math3d.Vec3
}

// NewLight builds the light described by cfg.
func NewLight(cfg LightConfig) Light {
	return Light{
		Direction: vec3(cfg.Direction),
		Diffuse:   vec3(cfg.Diffuse),
		Ambient:   vec3(cfg.Ambient),
	}
}

// UnitDirection returns the normalized direction, or straight up when the
// direction is zero.
func (l Light) UnitDirection() math3d.Vec3 {
	if l.Direction.Len() == 0 {
		return math3d.Up()
	}
	return l.Direction.Normalize()
}

// ViewDirection rotates the direction into view space. Shaders normalize it.
func (l Light) ViewDirection(view math3d.Mat4) math3d.Vec3 {
	return view.MulVec3Dir(l.Direction)
}

// ShadowMatrix returns the matrix that flattens world geometry onto plane
// along the light.
func (l Light) ShadowMatrix(plane math3d.Plane) math3d.Mat4 {
	return math3d.ShadowProjection(l.UnitDirection(), plane)
}
