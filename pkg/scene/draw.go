package scene

import (
	"fmt"

	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
)

// vertexArray is the data feeding one vertex attribute.
type vertexArray struct {
	size int
	data []float64
}

// meshArrays maps the attribute names used by the scene's shaders to the
// buffers of a mesh.
func meshArrays(b models.Buffers) map[string]vertexArray {
	return map[string]vertexArray{
		"a_Position":      {3, b.Positions},
		"a_Normal":        {3, b.Normals},
		"a_TexCoordinate": {2, b.UVs},
		"a_Color":         {4, b.Colors},
	}
}

// checkArrays verifies that every attribute p declares has data.
func checkArrays(p *render.Program, arrays map[string]vertexArray) error {
	for _, a := range p.Attributes() {
		if _, ok := arrays[a.Name]; !ok {
			return fmt.Errorf("no vertex data for attribute %s", a.Name)
		}
	}
	return nil
}

// drawIndexed enables exactly the attributes p declares, draws, and disables
// them again so no attribute state outlives the draw.
func drawIndexed(dev *render.Device, p *render.Program, arrays map[string]vertexArray, indices []uint32) error {
	attrs := p.Attributes()
	for loc, a := range attrs {
		arr := arrays[a.Name]
		dev.VertexAttribPointer(loc, arr.size, arr.data)
		dev.EnableVertexAttribArray(loc)
	}

	err := dev.DrawElements(indices)

	for loc := range attrs {
		dev.DisableVertexAttribArray(loc)
	}
	return err
}
