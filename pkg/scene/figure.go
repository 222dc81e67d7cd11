package scene

import (
	"fmt"

	"github.com/taigrr/shadowlab/pkg/math3d"
	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
)

// Figure draws a mesh unlit, in its vertex colors.
type Figure struct {
	mesh   *models.Mesh
	arrays map[string]vertexArray
	index  []uint32
	bounds render.AABB

	prog   *render.Program
	mvpLoc int
}

// NewFigure compiles the vertex-color program on dev for mesh.
func NewFigure(dev *render.Device, mesh *models.Mesh) (*Figure, error) {
	prog, err := dev.CompileProgram(colorVertexShader, colorFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("figure program: %w", err)
	}

	buf := mesh.Buffers()
	f := &Figure{
		mesh:   mesh,
		arrays: meshArrays(buf),
		index:  buf.Indices,
		bounds: render.NewAABB(mesh.BoundsMin, mesh.BoundsMax),
		prog:   prog,
		mvpLoc: prog.UniformLocation("u_MVPMatrix"),
	}
	if err := checkArrays(prog, f.arrays); err != nil {
		return nil, fmt.Errorf("figure: %w", err)
	}
	return f, nil
}

// Bounds returns the figure's bounding box in object space.
func (f *Figure) Bounds() render.AABB {
	return f.bounds
}

// Mesh returns the drawn mesh.
func (f *Figure) Mesh() *models.Mesh {
	return f.mesh
}

// Draw draws the figure with the given model-view-projection matrix.
func (f *Figure) Draw(dev *render.Device, mvp math3d.Mat4) error {
	dev.UseProgram(f.prog)
	dev.UniformMatrix4(f.mvpLoc, mvp)

	if err := drawIndexed(dev, f.prog, f.arrays, f.index); err != nil {
		return fmt.Errorf("draw figure: %w", err)
	}
	return nil
}
