package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

var (
	// ErrShaderCompile is wrapped by every shader compile failure.
	ErrShaderCompile = errors.New("shader compile")
	// ErrProgramLink is wrapped by every program link failure.
	ErrProgramLink = errors.New("program link")
)

// ShaderStage identifies the pipeline stage a shader runs in.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	if s == FragmentStage {
		return "fragment"
	}
	return "vertex"
}

// ShaderError carries the info log of a failed compile or link.
type ShaderError struct {
	Stage ShaderStage // Stage that failed to compile; unset for link errors
	Link  bool
	Line  int // 1-based source line, 0 when not tied to a line
	Log   string
}

func (e *ShaderError) Error() string {
	if e.Link {
		return "program link: " + e.Log
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s shader: line %d: %s", e.Stage, e.Line, e.Log)
	}
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}

func (e *ShaderError) Unwrap() error {
	if e.Link {
		return ErrProgramLink
	}
	return ErrShaderCompile
}

// DataType is the type of a shader declaration.
type DataType int

const (
	TypeFloat DataType = iota + 1
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat4
	TypeSampler2D
)

var typeNames = map[string]DataType{
	"float":     TypeFloat,
	"vec2":      TypeVec2,
	"vec3":      TypeVec3,
	"vec4":      TypeVec4,
	"mat4":      TypeMat4,
	"sampler2D": TypeSampler2D,
}

func (t DataType) String() string {
	for name, dt := range typeNames {
		if dt == t {
			return name
		}
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Components returns the number of floats a value of the type occupies.
func (t DataType) Components() int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat4:
		return 16
	default:
		return 1
	}
}

// Qualifier is the storage qualifier of a declaration.
type Qualifier int

const (
	Uniform Qualifier = iota
	Attribute
	Varying
)

var qualifierNames = map[string]Qualifier{
	"uniform":   Uniform,
	"attribute": Attribute,
	"varying":   Varying,
}

func (q Qualifier) String() string {
	for name, qq := range qualifierNames {
		if qq == q {
			return name
		}
	}
	return fmt.Sprintf("Qualifier(%d)", int(q))
}

// Declaration is one uniform, attribute or varying of a shader.
type Declaration struct {
	Qualifier Qualifier
	Type      DataType
	Name      string
	Line      int
}

func (d Declaration) String() string {
	return fmt.Sprintf("%s %s %s", d.Qualifier, d.Type, d.Name)
}

// Shader is a parsed shader: its declarations plus the name of the kernel
// that implements its body.
type Shader struct {
	Stage  ShaderStage
	Kernel string
	Decls  []Declaration
}

func (s *Shader) lookup(name string) (Declaration, bool) {
	for _, d := range s.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// ParseShader parses shader source. Sources consist of GLSL-style
// declarations ("uniform mat4 u_MVP;"), precision statements, comments and
// a single "#pragma kernel <name>" line naming the body.
func ParseShader(stage ShaderStage, src string) (*Shader, error) {
	sh := &Shader{Stage: stage}
	fail := func(line int, format string, args ...any) error {
		return &ShaderError{Stage: stage, Line: line, Log: fmt.Sprintf(format, args...)}
	}

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			fields := strings.Fields(strings.TrimPrefix(line, "#"))
			switch {
			case len(fields) >= 1 && fields[0] == "version":
			case len(fields) == 3 && fields[0] == "pragma" && fields[1] == "kernel":
				if sh.Kernel != "" {
					return nil, fail(lineNo, "kernel already set to %q", sh.Kernel)
				}
				sh.Kernel = fields[2]
			case len(fields) >= 1 && fields[0] == "pragma":
			default:
				return nil, fail(lineNo, "unsupported directive %q", line)
			}
			continue
		}

		stmts := strings.Split(line, ";")
		if last := strings.TrimSpace(stmts[len(stmts)-1]); last != "" {
			return nil, fail(lineNo, "missing ';' after %q", last)
		}
		for _, stmt := range stmts[:len(stmts)-1] {
			fields := strings.Fields(stmt)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "precision" {
				continue
			}

			q, ok := qualifierNames[fields[0]]
			if !ok {
				return nil, fail(lineNo, "unexpected %q", fields[0])
			}
			fields = fields[1:]
			if len(fields) > 0 && isPrecision(fields[0]) {
				fields = fields[1:]
			}
			if len(fields) != 2 {
				return nil, fail(lineNo, "malformed declaration %q", strings.TrimSpace(stmt))
			}
			t, ok := typeNames[fields[0]]
			if !ok {
				return nil, fail(lineNo, "unknown type %q", fields[0])
			}
			name := fields[1]
			if !isIdent(name) {
				return nil, fail(lineNo, "invalid name %q", name)
			}

			switch {
			case q == Attribute && stage == FragmentStage:
				return nil, fail(lineNo, "attribute %s not allowed in a fragment shader", name)
			case q == Attribute && t == TypeSampler2D, q == Varying && (t == TypeSampler2D || t == TypeMat4):
				return nil, fail(lineNo, "%s cannot have type %s", q, t)
			}
			if prev, dup := sh.lookup(name); dup {
				return nil, fail(lineNo, "%s redeclared (first on line %d)", name, prev.Line)
			}
			sh.Decls = append(sh.Decls, Declaration{Qualifier: q, Type: t, Name: name, Line: lineNo})
		}
	}

	return sh, nil
}

func isPrecision(s string) bool {
	return s == "lowp" || s == "mediump" || s == "highp"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Attributes are the per-vertex inputs of a vertex kernel, indexed by
// attribute location.
type Attributes []math3d.Vec4

func (a Attributes) Vec4(loc int) math3d.Vec4 { return a[loc] }
func (a Attributes) Vec3(loc int) math3d.Vec3 { return a[loc].Vec3() }
func (a Attributes) Vec2(loc int) math3d.Vec2 { return a[loc].Vec2() }

// Varyings hold the interpolated values passed from the vertex to the
// fragment kernel, addressed by Program.VaryingLocation.
type Varyings []float64

func (v Varyings) Float(loc int) float64 { return v[loc] }
func (v Varyings) Vec2(loc int) math3d.Vec2 {
	return math3d.V2(v[loc], v[loc+1])
}
func (v Varyings) Vec3(loc int) math3d.Vec3 {
	return math3d.V3(v[loc], v[loc+1], v[loc+2])
}
func (v Varyings) Vec4(loc int) math3d.Vec4 {
	return math3d.V4(v[loc], v[loc+1], v[loc+2], v[loc+3])
}

func (v Varyings) SetFloat(loc int, f float64) { v[loc] = f }
func (v Varyings) SetVec2(loc int, x math3d.Vec2) {
	v[loc], v[loc+1] = x.X, x.Y
}
func (v Varyings) SetVec3(loc int, x math3d.Vec3) {
	v[loc], v[loc+1], v[loc+2] = x.X, x.Y, x.Z
}
func (v Varyings) SetVec4(loc int, x math3d.Vec4) {
	v[loc], v[loc+1], v[loc+2], v[loc+3] = x.X, x.Y, x.Z, x.W
}

// VertexFunc runs once per vertex. It writes the vertex's varyings into out
// and returns its clip-space position.
type VertexFunc func(in Attributes, out Varyings) math3d.Vec4

// FragmentFunc runs once per covered pixel that passes the depth test and
// returns its RGBA color.
type FragmentFunc func(f *Fragment) math3d.Vec4

// VertexBinder resolves locations in a linked program and returns the
// kernel body. It runs once per link.
type VertexBinder func(p *Program) VertexFunc

// FragmentBinder is the fragment stage counterpart of VertexBinder.
type FragmentBinder func(p *Program) FragmentFunc

type kernel struct {
	requires []Declaration
	vertex   VertexBinder
	fragment FragmentBinder
}

type uniform struct {
	Declaration
	value []float64
}

// Program is a linked vertex/fragment shader pair.
type Program struct {
	uniforms   []uniform
	attributes []Declaration
	varyings   []Declaration
	varyingOff []int
	varyingLen int

	vertex   VertexFunc
	fragment FragmentFunc
}

// link checks the interface between the two stages and lays out uniforms,
// attributes and varyings.
func link(vs, fs *Shader) (*Program, error) {
	fail := func(format string, args ...any) error {
		return &ShaderError{Link: true, Log: fmt.Sprintf(format, args...)}
	}

	p := &Program{}
	for _, d := range vs.Decls {
		switch d.Qualifier {
		case Uniform:
			p.uniforms = append(p.uniforms, uniform{Declaration: d, value: make([]float64, d.Type.Components())})
		case Attribute:
			p.attributes = append(p.attributes, d)
		case Varying:
			p.varyings = append(p.varyings, d)
			p.varyingOff = append(p.varyingOff, p.varyingLen)
			p.varyingLen += d.Type.Components()
		}
	}

	for _, d := range fs.Decls {
		switch d.Qualifier {
		case Varying:
			vd, ok := vs.lookup(d.Name)
			if !ok || vd.Qualifier != Varying {
				return nil, fail("varying %s is not written by the vertex shader", d.Name)
			}
			if vd.Type != d.Type {
				return nil, fail("varying %s is %s in the vertex shader but %s in the fragment shader", d.Name, vd.Type, d.Type)
			}
		case Uniform:
			if loc := p.UniformLocation(d.Name); loc >= 0 {
				if p.uniforms[loc].Type != d.Type {
					return nil, fail("uniform %s declared as both %s and %s", d.Name, p.uniforms[loc].Type, d.Type)
				}
				continue
			}
			if vd, ok := vs.lookup(d.Name); ok {
				return nil, fail("%s is a %s in the vertex shader and a uniform in the fragment shader", d.Name, vd.Qualifier)
			}
			p.uniforms = append(p.uniforms, uniform{Declaration: d, value: make([]float64, d.Type.Components())})
		}
	}

	return p, nil
}

// UniformLocation returns the location of the named uniform, or -1.
func (p *Program) UniformLocation(name string) int {
	for i, u := range p.uniforms {
		if u.Name == name {
			return i
		}
	}
	return -1
}

// AttribLocation returns the location of the named attribute, or -1.
func (p *Program) AttribLocation(name string) int {
	for i, a := range p.attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// VaryingLocation returns the offset of the named varying, or -1.
func (p *Program) VaryingLocation(name string) int {
	for i, v := range p.varyings {
		if v.Name == name {
			return p.varyingOff[i]
		}
	}
	return -1
}

// Attributes returns the declared attributes in location order.
func (p *Program) Attributes() []Declaration {
	return append([]Declaration(nil), p.attributes...)
}

// Uniforms returns the declared uniforms in location order.
func (p *Program) Uniforms() []Declaration {
	out := make([]Declaration, len(p.uniforms))
	for i, u := range p.uniforms {
		out[i] = u.Declaration
	}
	return out
}

// UniformFloat returns the current value of a float uniform.
func (p *Program) UniformFloat(loc int) float64 {
	return p.uniforms[loc].value[0]
}

// UniformInt returns the current value of an integer or sampler uniform.
func (p *Program) UniformInt(loc int) int {
	return int(p.uniforms[loc].value[0])
}

// UniformVec3 returns the current value of a vec3 uniform.
func (p *Program) UniformVec3(loc int) math3d.Vec3 {
	v := p.uniforms[loc].value
	return math3d.V3(v[0], v[1], v[2])
}

// UniformVec4 returns the current value of a vec4 uniform.
func (p *Program) UniformVec4(loc int) math3d.Vec4 {
	v := p.uniforms[loc].value
	return math3d.V4(v[0], v[1], v[2], v[3])
}

// UniformMat4 returns the current value of a mat4 uniform.
func (p *Program) UniformMat4(loc int) math3d.Mat4 {
	var m math3d.Mat4
	copy(m[:], p.uniforms[loc].value)
	return m
}

// setUniform stores values into the uniform at loc. Unknown locations are
// ignored; a type mismatch is reported.
func (p *Program) setUniform(loc int, want DataType, vals ...float64) error {
	if loc == -1 {
		return nil
	}
	if loc < 0 || loc >= len(p.uniforms) {
		return fmt.Errorf("%w: uniform location %d", ErrInvalidOperation, loc)
	}
	u := &p.uniforms[loc]
	if u.Type != want {
		return fmt.Errorf("%w: uniform %s is %s, not %s", ErrInvalidOperation, u.Name, u.Type, want)
	}
	copy(u.value, vals)
	return nil
}
