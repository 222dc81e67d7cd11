package render

import (
	"errors"
	"testing"
)

func TestParseShader(t *testing.T) {
	src := `#version 100
// lit vertex shader
precision mediump float;
uniform mat4 u_MVP; uniform highp vec3 u_Light;
attribute vec4 a_Position;   // object space
varying vec2 v_UV;
#pragma optimize(on)
#pragma kernel lit
`
	sh, err := ParseShader(VertexStage, src)
	if err != nil {
		t.Fatalf("ParseShader: %v", err)
	}
	if sh.Kernel != "lit" {
		t.Errorf("Kernel = %q, want lit", sh.Kernel)
	}

	want := []Declaration{
		{Uniform, TypeMat4, "u_MVP", 4},
		{Uniform, TypeVec3, "u_Light", 4},
		{Attribute, TypeVec4, "a_Position", 5},
		{Varying, TypeVec2, "v_UV", 6},
	}
	if len(sh.Decls) != len(want) {
		t.Fatalf("got %d declarations, want %d: %v", len(sh.Decls), len(want), sh.Decls)
	}
	for i, d := range want {
		if sh.Decls[i] != d {
			t.Errorf("decl %d = %+v, want %+v", i, sh.Decls[i], d)
		}
	}
}

func TestParseShaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		stage    ShaderStage
		src      string
		wantLine int
	}{
		{"missing semicolon", VertexStage, "uniform mat4 u_MVP", 1},
		{"unknown type", VertexStage, "uniform mat3 u_Normal;", 1},
		{"unknown qualifier", VertexStage, "in vec4 a_Position;", 1},
		{"bad name", VertexStage, "uniform vec4 4u;", 1},
		{"attribute in fragment", FragmentStage, "\nattribute vec4 a_Position;", 2},
		{"sampler varying", VertexStage, "varying sampler2D v_Tex;", 1},
		{"redeclared", VertexStage, "uniform vec4 u_A;\nvarying vec4 u_A;", 2},
		{"second kernel", VertexStage, "#pragma kernel a\n#pragma kernel b", 2},
		{"unsupported directive", VertexStage, "#define X 1", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseShader(tc.stage, tc.src)
			if !errors.Is(err, ErrShaderCompile) {
				t.Fatalf("ParseShader = %v, want ErrShaderCompile", err)
			}
			var se *ShaderError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not a *ShaderError", err)
			}
			if se.Line != tc.wantLine || se.Stage != tc.stage {
				t.Errorf("error at %s line %d, want %s line %d", se.Stage, se.Line, tc.stage, tc.wantLine)
			}
		})
	}
}

func TestShaderErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ShaderError
		want string
	}{
		{&ShaderError{Stage: FragmentStage, Line: 3, Log: "boom"}, "fragment shader: line 3: boom"},
		{&ShaderError{Stage: VertexStage, Log: "no #pragma kernel"}, "vertex shader: no #pragma kernel"},
		{&ShaderError{Link: true, Log: "varying v_UV is not written"}, "program link: varying v_UV is not written"},
	}

	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestVaryingLayout(t *testing.T) {
	d := newTestDevice(t, 1, 1)
	vs := "attribute vec4 a_Position; attribute vec2 a_TexCoord;\n" +
		"varying vec3 v_Normal; varying vec2 v_TexCoord; varying float v_Fog;\n#pragma kernel textured"
	p, err := d.CompileProgram(vs, textureFS)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}

	tests := []struct {
		name string
		want int
	}{
		{"v_Normal", 0},
		{"v_TexCoord", 3},
		{"v_Fog", 5},
		{"v_Missing", -1},
	}
	for _, tc := range tests {
		if got := p.VaryingLocation(tc.name); got != tc.want {
			t.Errorf("VaryingLocation(%s) = %d, want %d", tc.name, got, tc.want)
		}
	}

	// Fragment uniforms follow the vertex ones
	uniforms := p.Uniforms()
	if len(uniforms) != 1 || uniforms[0].Name != "u_Texture" || uniforms[0].Type != TypeSampler2D {
		t.Errorf("Uniforms() = %v, want [uniform sampler2D u_Texture]", uniforms)
	}
	if got := len(p.Attributes()); got != 2 {
		t.Errorf("len(Attributes()) = %d, want 2", got)
	}
}
