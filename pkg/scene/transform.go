package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// ErrInvalidViewport reports a surface size the projection cannot use.
var ErrInvalidViewport = errors.New("invalid viewport")

// Frame holds the matrices of one frame.
type Frame struct {
	Projection math3d.Mat4
	View       math3d.Mat4
	Model      math3d.Mat4
	ModelView  math3d.Mat4 // View * Model
	MVP        math3d.Mat4 // Projection * View * Model
}

// TransformBuilder derives the per-frame matrices from the surface size, the
// camera and the drag rotation.
type TransformBuilder struct {
	eye, target, up math3d.Vec3
	near, far       float64
	rot             *Rotation

	width, height int
	proj          math3d.Mat4

	// Cached model matrix, valid for modelVersion of rot
	model        math3d.Mat4
	modelVersion uint64
	modelValid   bool
}

// NewTransformBuilder creates a builder reading angles from rot. The
// projection is the identity until the first Resize.
func NewTransformBuilder(cam CameraConfig, rot *Rotation) *TransformBuilder {
	return &TransformBuilder{
		eye:    vec3(cam.Eye),
		target: vec3(cam.Target),
		up:     vec3(cam.Up),
		near:   cam.Near,
		far:    cam.Far,
		rot:    rot,
		proj:   math3d.Identity(),
	}
}

// Resize rebuilds the projection for a width x height surface as a frustum
// symmetric in x with half-width width/height and half-height 1 at the near
// plane.
func (b *TransformBuilder) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	if !(b.near > 0 && b.near < b.far) {
		return fmt.Errorf("%w: near %v far %v", ErrInvalidViewport, b.near, b.far)
	}

	b.width, b.height = width, height
	r := float64(width) / float64(height)
	b.proj = math3d.Frustum(-r, r, -1, 1, b.near, b.far)
	return nil
}

// Size returns the surface size of the last successful Resize.
func (b *TransformBuilder) Size() (width, height int) {
	return b.width, b.height
}

// Projection returns the projection matrix.
func (b *TransformBuilder) Projection() math3d.Mat4 {
	return b.proj
}

// View returns the look-at matrix of the camera.
func (b *TransformBuilder) View() math3d.Mat4 {
	return math3d.LookAt(b.eye, b.target, b.up)
}

// Model returns the rotation of the solid, rebuilt only when the rotation
// changed since the last call.
func (b *TransformBuilder) Model() math3d.Mat4 {
	// Read the version before the angles so a concurrent drag is picked up
	// again on the next call.
	v := b.rot.Version()
	if !b.modelValid || v != b.modelVersion {
		b.model = ModelMatrix(b.rot.Angles())
		b.modelVersion = v
		b.modelValid = true
	}
	return b.model
}

// Frame computes every matrix of the current frame.
func (b *TransformBuilder) Frame() Frame {
	f := Frame{
		Projection: b.proj,
		View:       b.View(),
		Model:      b.Model(),
	}
	f.ModelView = f.View.Mul(f.Model)
	f.MVP = f.Projection.Mul(f.ModelView)
	return f
}
