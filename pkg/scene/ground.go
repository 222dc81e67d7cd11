package scene

import (
	"fmt"

	"github.com/taigrr/shadowlab/pkg/math3d"
	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
)

// Ground draws the ground plane as a flat colored quad.
type Ground struct {
	plane  math3d.Plane
	arrays map[string]vertexArray
	index  []uint32

	prog     *render.Program
	mvpLoc   int
	colorLoc int
	color    math3d.Vec4
}

// NewGround builds a quad of the given half extent lying in plane.
func NewGround(dev *render.Device, plane math3d.Plane, halfExtent float64, color math3d.Vec4) (*Ground, error) {
	prog, err := dev.CompileProgram(flatVertexShader, flatFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("ground program: %w", err)
	}

	buf := models.NewGroundPlane(plane, halfExtent).Buffers()
	g := &Ground{
		plane:    plane,
		arrays:   meshArrays(buf),
		index:    buf.Indices,
		prog:     prog,
		mvpLoc:   prog.UniformLocation("u_MVPMatrix"),
		colorLoc: prog.UniformLocation("u_Color"),
		color:    color,
	}
	if err := checkArrays(prog, g.arrays); err != nil {
		return nil, fmt.Errorf("ground: %w", err)
	}
	return g, nil
}

// Plane returns the plane the quad lies in.
func (g *Ground) Plane() math3d.Plane {
	return g.plane
}

// Draw draws the quad with the given model-view-projection matrix.
func (g *Ground) Draw(dev *render.Device, mvp math3d.Mat4) error {
	dev.UseProgram(g.prog)
	dev.UniformMatrix4(g.mvpLoc, mvp)
	c := g.color
	dev.Uniform4f(g.colorLoc, c.X, c.Y, c.Z, c.W)

	if err := drawIndexed(dev, g.prog, g.arrays, g.index); err != nil {
		return fmt.Errorf("draw ground: %w", err)
	}
	return nil
}
