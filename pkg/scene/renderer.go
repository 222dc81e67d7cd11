// Package scene draws a textured, flat-lit solid over a ground plane with a
// projected planar shadow, and rotates it from drag input. A second, basic
// scene draws an unlit solid in its vertex colors. Hosts drive a Renderer
// through the SurfaceRenderer callbacks.
package scene

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/taigrr/shadowlab/pkg/math3d"
	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
)

// ErrNoSurface is returned by surface callbacks made before SurfaceCreated.
var ErrNoSurface = errors.New("surface not created")

// SurfaceRenderer is driven by a host. The host calls SurfaceCreated once,
// SurfaceChanged whenever the surface size changes and DrawFrame whenever a
// frame is needed, always from the same goroutine and never concurrently.
type SurfaceRenderer interface {
	SurfaceCreated(dev *render.Device) error
	SurfaceChanged(width, height int) error
	DrawFrame() error
}

// Renderer draws the configured scene. The shadow scene draws the ground,
// then the shadow, then the lit solid; the basic scene draws one figure.
type Renderer struct {
	cfg    Config
	log    *slog.Logger
	rot    *Rotation
	xf     *TransformBuilder
	light  Light
	plane  math3d.Plane
	shadow math3d.Mat4
	img    image.Image
	mesh   *models.Mesh
	redraw func()

	dev          *render.Device
	ground       *Ground
	solid        *Solid
	figure       *Figure
	solidVisible bool
}

var _ SurfaceRenderer = (*Renderer)(nil)

// Option customises a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTexture sets the solid's texture. The default is a checkerboard. The
// basic scene ignores it.
func WithTexture(img image.Image) Option {
	return func(r *Renderer) {
		r.img = img
	}
}

// WithMesh replaces the tetrahedron with mesh, drawn as given. It needs
// normals and UVs. The basic scene ignores it.
func WithMesh(m *models.Mesh) Option {
	return func(r *Renderer) {
		r.mesh = m
	}
}

// NewRenderer validates cfg and prepares a renderer. Graphics resources are
// created in SurfaceCreated.
func NewRenderer(cfg Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:   cfg,
		log:   slog.Default(),
		rot:   NewRotation(cfg.TouchScale),
		light: NewLight(cfg.Light),
		plane: cfg.GroundPlane(),
		img:   DefaultTexture(),
	}
	r.xf = NewTransformBuilder(cfg.Camera, r.rot)
	r.shadow = r.light.ShadowMatrix(r.plane)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DefaultTexture is the texture used when none is supplied.
func DefaultTexture() image.Image {
	return render.CheckerImage(64, 64, 8, render.RGB(230, 120, 40), render.RGB(250, 230, 180))
}

// SetRedraw installs the host's redraw request. Drag calls it after every
// rotation change.
func (r *Renderer) SetRedraw(fn func()) {
	r.redraw = fn
}

// Rotation returns the drag rotation state.
func (r *Renderer) Rotation() *Rotation {
	return r.rot
}

// Transforms returns the transform builder.
func (r *Renderer) Transforms() *TransformBuilder {
	return r.xf
}

// ShadowMatrix returns the planar shadow projection in use.
func (r *Renderer) ShadowMatrix() math3d.Mat4 {
	return r.shadow
}

// SolidVisible reports whether the last frame drew the solid, or skipped it
// because its bounds were outside the view.
func (r *Renderer) SolidVisible() bool {
	return r.solidVisible
}

// Drag rotates the solid by a pointer movement of (dx, dy) pixels and asks
// the host for a redraw. It may be called from any goroutine.
func (r *Renderer) Drag(dx, dy float64) {
	r.rot.Drag(dx, dy)
	if r.redraw != nil {
		r.redraw()
	}
}

// SurfaceCreated sets up device state and builds the scene's drawables.
func (r *Renderer) SurfaceCreated(dev *render.Device) error {
	c := r.cfg.ClearColor
	dev.ClearColor(c[0], c[1], c[2], 1)
	dev.Enable(render.DepthTest)

	if err := RegisterKernels(dev); err != nil {
		return err
	}
	if r.cfg.Scene == SceneBasic {
		return r.createBasic(dev)
	}
	dev.Enable(render.CullFace)

	ground, err := NewGround(dev, r.plane, r.cfg.Ground.HalfExtent, vec4(r.cfg.Ground.Color))
	if err != nil {
		return err
	}

	mesh := r.mesh
	if mesh == nil {
		mesh = models.NewTetrahedron(r.cfg.Solid.Scale)
	}
	solid, err := NewSolid(dev, mesh, r.img, vec4(r.cfg.Shadow.Color))
	if err != nil {
		return err
	}

	r.dev, r.ground, r.solid = dev, ground, solid
	r.log.Info("Surface created",
		"scene", r.cfg.Scene,
		"solid", mesh.Name,
		"triangles", mesh.TriangleCount(),
		"light", r.light.UnitDirection(),
	)
	return nil
}

// createBasic builds the vertex-colored figure. Its faces are not wound
// consistently, so culling stays off.
func (r *Renderer) createBasic(dev *render.Device) error {
	mesh := models.NewColoredTetrahedron(r.cfg.Solid.Scale)
	figure, err := NewFigure(dev, mesh)
	if err != nil {
		return err
	}
	r.dev, r.figure = dev, figure
	r.log.Info("Surface created",
		"scene", r.cfg.Scene,
		"solid", mesh.Name,
		"triangles", mesh.TriangleCount(),
	)
	return nil
}

// SurfaceChanged sets the viewport and rebuilds the projection.
func (r *Renderer) SurfaceChanged(width, height int) error {
	if r.dev == nil {
		return ErrNoSurface
	}
	if err := r.xf.Resize(width, height); err != nil {
		return err
	}
	r.dev.Viewport(0, 0, width, height)
	r.log.Debug("Surface changed", "width", width, "height", height)
	return nil
}

// DrawFrame draws one frame of the scene.
func (r *Renderer) DrawFrame() error {
	dev := r.dev
	if dev == nil {
		return ErrNoSurface
	}
	dev.ResetStats()
	dev.Clear(render.ColorBufferBit | render.DepthBufferBit)

	f := r.xf.Frame()
	viewProj := f.Projection.Mul(f.View)

	var err error
	if r.figure != nil {
		err = r.drawBasic(dev, f, viewProj)
	} else {
		err = r.drawLit(dev, f, viewProj)
	}
	if err != nil {
		return err
	}

	if err := dev.Error(); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	st := dev.Stats()
	r.log.Debug("Frame drawn",
		"triangles", st.TrianglesRasterized,
		"culled", st.TrianglesCulled,
		"fragments", st.FragmentsWritten,
		"solid_visible", r.solidVisible,
	)
	return nil
}

// drawLit draws the ground, the shadow and the lit solid.
func (r *Renderer) drawLit(dev *render.Device, f Frame, viewProj math3d.Mat4) error {
	if err := r.ground.Draw(dev, viewProj); err != nil {
		return err
	}

	// Lift the shadow off the ground along the plane normal
	lift := math3d.Translate(r.plane.Normal.Scale(r.cfg.Shadow.Offset))
	shadowModel := lift.Mul(r.shadow).Mul(f.Model)
	if err := r.drawShadow(dev, viewProj.Mul(shadowModel)); err != nil {
		return err
	}

	r.solidVisible = render.NewFrustumFromMatrix(viewProj).Visible(r.solid.Bounds(), f.Model)
	if !r.solidVisible {
		return nil
	}
	light := LightParams{
		DirectionView: r.light.ViewDirection(f.View),
		Diffuse:       r.light.Diffuse,
		Ambient:       r.light.Ambient,
	}
	return r.solid.Draw(dev, f.MVP, f.ModelView, light)
}

func (r *Renderer) drawBasic(dev *render.Device, f Frame, viewProj math3d.Mat4) error {
	r.solidVisible = render.NewFrustumFromMatrix(viewProj).Visible(r.figure.Bounds(), f.Model)
	if !r.solidVisible {
		return nil
	}
	return r.figure.Draw(dev, f.MVP)
}

// drawShadow blends the shadow over the ground without writing depth or
// culling, then puts the state back for opaque drawing.
func (r *Renderer) drawShadow(dev *render.Device, mvp math3d.Mat4) error {
	dev.Enable(render.Blend)
	dev.BlendFunc(render.BlendSrcAlpha, render.BlendOneMinusSrcAlpha)
	dev.DepthMask(false)
	dev.Disable(render.CullFace)

	err := r.solid.DrawShadow(dev, mvp)

	dev.Enable(render.CullFace)
	dev.DepthMask(true)
	dev.Disable(render.Blend)
	return err
}
