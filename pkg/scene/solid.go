package scene

import (
	"fmt"
	"image"

	"github.com/taigrr/shadowlab/pkg/math3d"
	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
)

// Solid draws a textured, flat-lit mesh and its planar shadow.
type Solid struct {
	mesh   *models.Mesh
	arrays map[string]vertexArray
	index  []uint32
	bounds render.AABB

	lit     *render.Program
	litLoc  litLocations
	texture *render.Texture

	shadow      *render.Program
	shadowMVP   int
	shadowTint  int
	shadowColor math3d.Vec4
}

type litLocations struct {
	mvp, mv, texture, lightDir, lightColor, ambient int
}

// LightParams are the lighting uniforms of one frame.
type LightParams struct {
	DirectionView math3d.Vec3 // Toward the light, view space
	Diffuse       math3d.Vec3
	Ambient       math3d.Vec3
}

// NewSolid compiles the solid's programs on dev and uploads img as its
// texture. mesh must carry normals and UVs; it is not modified afterwards.
func NewSolid(dev *render.Device, mesh *models.Mesh, img image.Image, shadowColor math3d.Vec4) (*Solid, error) {
	tex, err := render.NewTexture2D(img)
	if err != nil {
		return nil, fmt.Errorf("solid texture: %w", err)
	}

	lit, err := dev.CompileProgram(litVertexShader, litFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("solid program: %w", err)
	}
	shadow, err := dev.CompileProgram(flatVertexShader, flatFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("shadow program: %w", err)
	}

	buf := mesh.Buffers()
	s := &Solid{
		mesh:   mesh,
		arrays: meshArrays(buf),
		index:  buf.Indices,
		bounds: render.NewAABB(mesh.BoundsMin, mesh.BoundsMax),

		lit: lit,
		litLoc: litLocations{
			mvp:        lit.UniformLocation("u_MVPMatrix"),
			mv:         lit.UniformLocation("u_MVMatrix"),
			texture:    lit.UniformLocation("u_Texture"),
			lightDir:   lit.UniformLocation("u_LightDirection_View"),
			lightColor: lit.UniformLocation("u_LightColor"),
			ambient:    lit.UniformLocation("u_AmbientLightColor"),
		},
		texture: tex,

		shadow:      shadow,
		shadowMVP:   shadow.UniformLocation("u_MVPMatrix"),
		shadowTint:  shadow.UniformLocation("u_Color"),
		shadowColor: shadowColor,
	}
	for _, p := range []*render.Program{lit, shadow} {
		if err := checkArrays(p, s.arrays); err != nil {
			return nil, fmt.Errorf("solid: %w", err)
		}
	}
	return s, nil
}

// Bounds returns the solid's bounding box in object space.
func (s *Solid) Bounds() render.AABB {
	return s.bounds
}

// Mesh returns the drawn mesh.
func (s *Solid) Mesh() *models.Mesh {
	return s.mesh
}

// Draw draws the lit solid with texture unit 0.
func (s *Solid) Draw(dev *render.Device, mvp, modelView math3d.Mat4, light LightParams) error {
	dev.UseProgram(s.lit)
	dev.UniformMatrix4(s.litLoc.mvp, mvp)
	dev.UniformMatrix4(s.litLoc.mv, modelView)
	d, c, a := light.DirectionView, light.Diffuse, light.Ambient
	dev.Uniform3f(s.litLoc.lightDir, d.X, d.Y, d.Z)
	dev.Uniform3f(s.litLoc.lightColor, c.X, c.Y, c.Z)
	dev.Uniform3f(s.litLoc.ambient, a.X, a.Y, a.Z)

	dev.ActiveTexture(0)
	dev.BindTexture(s.texture)
	dev.Uniform1i(s.litLoc.texture, 0)

	if err := drawIndexed(dev, s.lit, s.arrays, s.index); err != nil {
		return fmt.Errorf("draw solid: %w", err)
	}
	return nil
}

// DrawShadow draws the solid flattened by mvp in the shadow color. The
// caller sets up blending and depth state.
func (s *Solid) DrawShadow(dev *render.Device, mvp math3d.Mat4) error {
	dev.UseProgram(s.shadow)
	dev.UniformMatrix4(s.shadowMVP, mvp)
	c := s.shadowColor
	dev.Uniform4f(s.shadowTint, c.X, c.Y, c.Z, c.W)

	if err := drawIndexed(dev, s.shadow, s.arrays, s.index); err != nil {
		return fmt.Errorf("draw shadow: %w", err)
	}
	return nil
}
