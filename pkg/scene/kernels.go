package scene

import (
	"fmt"

	"github.com/taigrr/shadowlab/pkg/math3d"
	"github.com/taigrr/shadowlab/pkg/render"
)

// Kernel requirements, in shader syntax.
const (
	litVertexRequires = `uniform mat4 u_MVPMatrix; uniform mat4 u_MVMatrix;
attribute vec4 a_Position; attribute vec3 a_Normal; attribute vec2 a_TexCoordinate;
varying vec3 v_Position_View; varying vec3 v_Normal_View; varying vec2 v_TexCoordinate;`

	litFragmentRequires = `uniform sampler2D u_Texture;
uniform vec3 u_LightDirection_View; uniform vec3 u_LightColor; uniform vec3 u_AmbientLightColor;
varying vec3 v_Normal_View; varying vec2 v_TexCoordinate;`

	transformVertexRequires = `uniform mat4 u_MVPMatrix; attribute vec4 a_Position;`

	flatFragmentRequires = `uniform vec4 u_Color;`

	colorVertexRequires = `uniform mat4 u_MVPMatrix; attribute vec4 a_Position; attribute vec4 a_Color;
varying vec4 v_Color;`

	colorFragmentRequires = `varying vec4 v_Color;`
)

// RegisterKernels installs the shader bodies the scene's programs name.
func RegisterKernels(dev *render.Device) error {
	for _, k := range []struct {
		name, requires string
		bind           render.VertexBinder
	}{
		{"lit", litVertexRequires, litVertex},
		{"transform", transformVertexRequires, transformVertex},
		{"color", colorVertexRequires, colorVertex},
	} {
		if err := dev.RegisterVertexKernel(k.name, k.requires, k.bind); err != nil {
			return fmt.Errorf("register vertex kernel: %w", err)
		}
	}

	for _, k := range []struct {
		name, requires string
		bind           render.FragmentBinder
	}{
		{"lit", litFragmentRequires, litFragment},
		{"flat", flatFragmentRequires, flatFragment},
		{"color", colorFragmentRequires, colorFragment},
	} {
		if err := dev.RegisterFragmentKernel(k.name, k.requires, k.bind); err != nil {
			return fmt.Errorf("register fragment kernel: %w", err)
		}
	}
	return nil
}

// litVertex passes the view-space position and normal to the fragment stage.
func litVertex(p *render.Program) render.VertexFunc {
	mvp := p.UniformLocation("u_MVPMatrix")
	mv := p.UniformLocation("u_MVMatrix")
	pos := p.AttribLocation("a_Position")
	normal := p.AttribLocation("a_Normal")
	uv := p.AttribLocation("a_TexCoordinate")
	vPos := p.VaryingLocation("v_Position_View")
	vNormal := p.VaryingLocation("v_Normal_View")
	vUV := p.VaryingLocation("v_TexCoordinate")

	return func(in render.Attributes, out render.Varyings) math3d.Vec4 {
		modelView := p.UniformMat4(mv)
		position := in.Vec4(pos)

		out.SetVec3(vPos, modelView.MulVec4(position).Vec3())
		out.SetVec3(vNormal, modelView.MulVec3Dir(in.Vec3(normal)).Normalize())
		out.SetVec2(vUV, in.Vec2(uv))
		return p.UniformMat4(mvp).MulVec4(position)
	}
}

// litFragment computes (ambient + max(n·l, 0) * diffuse) * texel, keeping
// the texel's alpha.
func litFragment(p *render.Program) render.FragmentFunc {
	tex := p.UniformLocation("u_Texture")
	lightDir := p.UniformLocation("u_LightDirection_View")
	lightColor := p.UniformLocation("u_LightColor")
	ambient := p.UniformLocation("u_AmbientLightColor")
	vNormal := p.VaryingLocation("v_Normal_View")
	vUV := p.VaryingLocation("v_TexCoordinate")

	return func(f *render.Fragment) math3d.Vec4 {
		n := f.Varyings.Vec3(vNormal).Normalize()
		l := p.UniformVec3(lightDir).Normalize()
		diffuse := p.UniformVec3(lightColor).Scale(max(n.Dot(l), 0))

		texel := f.Texture2D(tex, vUV)
		c := p.UniformVec3(ambient).Add(diffuse).Mul(texel.Vec3())
		return math3d.V4FromV3(c, texel.W)
	}
}

func transformVertex(p *render.Program) render.VertexFunc {
	mvp := p.UniformLocation("u_MVPMatrix")
	pos := p.AttribLocation("a_Position")
	return func(in render.Attributes, _ render.Varyings) math3d.Vec4 {
		return p.UniformMat4(mvp).MulVec4(in.Vec4(pos))
	}
}

func flatFragment(p *render.Program) render.FragmentFunc {
	color := p.UniformLocation("u_Color")
	return func(*render.Fragment) math3d.Vec4 {
		return p.UniformVec4(color)
	}
}

// colorVertex hands the vertex color to the rasterizer for blending.
func colorVertex(p *render.Program) render.VertexFunc {
	mvp := p.UniformLocation("u_MVPMatrix")
	pos := p.AttribLocation("a_Position")
	color := p.AttribLocation("a_Color")
	vColor := p.VaryingLocation("v_Color")
	return func(in render.Attributes, out render.Varyings) math3d.Vec4 {
		out.SetVec4(vColor, in.Vec4(color))
		return p.UniformMat4(mvp).MulVec4(in.Vec4(pos))
	}
}

func colorFragment(p *render.Program) render.FragmentFunc {
	vColor := p.VaryingLocation("v_Color")
	return func(f *render.Fragment) math3d.Vec4 {
		return f.Varyings.Vec4(vColor)
	}
}
