// Package render is a small software graphics device modeled on GLES2: shader
// programs with Go kernels, vertex attribute arrays, indexed triangle draws,
// depth testing, face culling, blending and mipmapped textures. It draws into
// a Framebuffer that can be saved as PNG or shown in a terminal.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// ErrInvalidOperation reports a call that is not valid in the current state.
var ErrInvalidOperation = errors.New("invalid operation")

// Capability is a device feature toggled with Enable and Disable.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
	Blend
	numCapabilities
)

// BlendFactor scales the source or destination color when blending.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// ClearMask selects the buffers Clear resets.
type ClearMask int

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

const (
	MaxVertexAttribs = 8
	MaxTextureUnits  = 8
)

// Stats counts the work done by draw calls since the last ResetStats.
type Stats struct {
	DrawCalls           int
	TrianglesSubmitted  int
	TrianglesClipped    int // Entirely outside the near/far planes
	TrianglesCulled     int // Back faces dropped by CullFace
	TrianglesRasterized int
	FragmentsWritten    int
}

type attribArray struct {
	enabled bool
	size    int
	data    []float64
}

// Device holds all rendering state. It is not safe for concurrent use;
// surface callbacks drive it from a single goroutine.
type Device struct {
	fb       *Framebuffer
	zbuffer  []float64 // Depth buffer (1D array, row-major), window depth in [0,1]
	viewport image.Rectangle

	clearColor math3d.Vec4
	caps       [numCapabilities]bool
	depthMask  bool
	srcFactor  BlendFactor
	dstFactor  BlendFactor

	program    *Program
	attribs    [MaxVertexAttribs]attribArray
	activeUnit int
	units      [MaxTextureUnits]*Texture

	vertexKernels   map[string]kernel
	fragmentKernels map[string]kernel

	err   error
	stats Stats
}

// NewDevice creates a device drawing into a width x height framebuffer.
// State starts at GL defaults: viewport covers the framebuffer, depth writes
// on, every capability off, blending One/Zero.
func NewDevice(width, height int) *Device {
	d := &Device{
		depthMask:       true,
		srcFactor:       BlendOne,
		dstFactor:       BlendZero,
		clearColor:      math3d.V4(0, 0, 0, 0),
		vertexKernels:   make(map[string]kernel),
		fragmentKernels: make(map[string]kernel),
	}
	d.Resize(width, height)
	d.viewport = image.Rect(0, 0, width, height)
	return d
}

// Resize reallocates the color and depth buffers. The viewport is left alone.
func (d *Device) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	d.fb = NewFramebuffer(width, height)
	d.zbuffer = make([]float64, width*height)
	for i := range d.zbuffer {
		d.zbuffer[i] = 1
	}
}

// Framebuffer returns the color buffer.
func (d *Device) Framebuffer() *Framebuffer {
	return d.fb
}

// Width returns the framebuffer width.
func (d *Device) Width() int {
	return d.fb.Width
}

// Height returns the framebuffer height.
func (d *Device) Height() int {
	return d.fb.Height
}

// Error returns and clears the first error recorded by a state-setting call,
// like glGetError.
func (d *Device) Error() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Device) record(err error) {
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Stats returns the draw statistics.
func (d *Device) Stats() Stats {
	return d.stats
}

// ResetStats zeroes the draw statistics (call once per frame).
func (d *Device) ResetStats() {
	d.stats = Stats{}
}

// Viewport maps normalized device coordinates to the window rectangle with
// lower-left corner (x, y), GL style (y grows upward).
func (d *Device) Viewport(x, y, width, height int) {
	if width < 0 || height < 0 {
		d.record(fmt.Errorf("%w: negative viewport %dx%d", ErrInvalidOperation, width, height))
		return
	}
	d.viewport = image.Rect(x, y, x+width, y+height)
}

// ViewportRect returns the current viewport.
func (d *Device) ViewportRect() image.Rectangle {
	return d.viewport
}

// ClearColor sets the color Clear fills the color buffer with.
func (d *Device) ClearColor(r, g, b, a float64) {
	d.clearColor = math3d.V4(r, g, b, a)
}

// Clear resets the selected buffers. Depth clears to 1 (the far plane).
func (d *Device) Clear(mask ClearMask) {
	if mask&ColorBufferBit != 0 {
		d.fb.Clear(Vec4ToColor(d.clearColor))
	}
	if mask&DepthBufferBit != 0 {
		// Use copy-doubling for faster clearing
		n := len(d.zbuffer)
		if n == 0 {
			return
		}
		d.zbuffer[0] = 1
		for i := 1; i < n; i *= 2 {
			copy(d.zbuffer[i:], d.zbuffer[:i])
		}
	}
}

// Enable turns a capability on.
func (d *Device) Enable(c Capability) {
	if c < 0 || c >= numCapabilities {
		d.record(fmt.Errorf("%w: capability %d", ErrInvalidOperation, c))
		return
	}
	d.caps[c] = true
}

// Disable turns a capability off.
func (d *Device) Disable(c Capability) {
	if c < 0 || c >= numCapabilities {
		d.record(fmt.Errorf("%w: capability %d", ErrInvalidOperation, c))
		return
	}
	d.caps[c] = false
}

// IsEnabled reports whether a capability is on.
func (d *Device) IsEnabled(c Capability) bool {
	return c >= 0 && c < numCapabilities && d.caps[c]
}

// DepthMask enables or disables depth buffer writes.
func (d *Device) DepthMask(write bool) {
	d.depthMask = write
}

// DepthWriteEnabled reports the current depth mask.
func (d *Device) DepthWriteEnabled() bool {
	return d.depthMask
}

// BlendFunc sets the source and destination blend factors.
func (d *Device) BlendFunc(src, dst BlendFactor) {
	d.srcFactor, d.dstFactor = src, dst
}

// RegisterVertexKernel makes a vertex kernel available to shaders that name
// it with "#pragma kernel". requires lists, in shader syntax, the
// declarations the kernel reads; shaders naming the kernel must declare
// each of them with the same qualifier and type.
func (d *Device) RegisterVertexKernel(name, requires string, bind VertexBinder) error {
	sh, err := ParseShader(VertexStage, requires)
	if err != nil {
		return fmt.Errorf("kernel %s: %w", name, err)
	}
	d.vertexKernels[name] = kernel{requires: sh.Decls, vertex: bind}
	return nil
}

// RegisterFragmentKernel is the fragment stage counterpart of
// RegisterVertexKernel.
func (d *Device) RegisterFragmentKernel(name, requires string, bind FragmentBinder) error {
	sh, err := ParseShader(FragmentStage, requires)
	if err != nil {
		return fmt.Errorf("kernel %s: %w", name, err)
	}
	d.fragmentKernels[name] = kernel{requires: sh.Decls, fragment: bind}
	return nil
}

// compile parses a shader and checks it against the kernel it names.
func (d *Device) compile(stage ShaderStage, src string) (*Shader, kernel, error) {
	sh, err := ParseShader(stage, src)
	if err != nil {
		return nil, kernel{}, err
	}
	if sh.Kernel == "" {
		return nil, kernel{}, &ShaderError{Stage: stage, Log: "no #pragma kernel"}
	}

	kernels := d.vertexKernels
	if stage == FragmentStage {
		kernels = d.fragmentKernels
	}
	k, ok := kernels[sh.Kernel]
	if !ok {
		return nil, kernel{}, &ShaderError{Stage: stage, Log: fmt.Sprintf("unknown %s kernel %q", stage, sh.Kernel)}
	}
	for _, req := range k.requires {
		got, ok := sh.lookup(req.Name)
		if !ok || got.Qualifier != req.Qualifier || got.Type != req.Type {
			return nil, kernel{}, &ShaderError{
				Stage: stage,
				Log:   fmt.Sprintf("kernel %s requires %q", sh.Kernel, req.String()),
			}
		}
	}
	return sh, k, nil
}

// CompileProgram compiles a vertex and a fragment shader and links them.
// Failures wrap ErrShaderCompile or ErrProgramLink and carry a *ShaderError.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	vs, vk, err := d.compile(VertexStage, vertexSrc)
	if err != nil {
		return nil, err
	}
	fs, fk, err := d.compile(FragmentStage, fragmentSrc)
	if err != nil {
		return nil, err
	}

	p, err := link(vs, fs)
	if err != nil {
		return nil, err
	}
	if len(p.attributes) > MaxVertexAttribs {
		return nil, &ShaderError{Link: true, Log: fmt.Sprintf("%d attributes exceed the limit of %d", len(p.attributes), MaxVertexAttribs)}
	}
	p.vertex = vk.vertex(p)
	p.fragment = fk.fragment(p)
	return p, nil
}

// UseProgram makes p the current program. nil unbinds.
func (d *Device) UseProgram(p *Program) {
	d.program = p
}

// CurrentProgram returns the program in use.
func (d *Device) CurrentProgram() *Program {
	return d.program
}

func (d *Device) setUniform(loc int, t DataType, vals ...float64) {
	if d.program == nil {
		if loc != -1 {
			d.record(fmt.Errorf("%w: no program in use", ErrInvalidOperation))
		}
		return
	}
	d.record(d.program.setUniform(loc, t, vals...))
}

// Uniform1f uploads a float uniform of the current program.
// Location -1 is silently ignored.
func (d *Device) Uniform1f(loc int, v float64) {
	d.setUniform(loc, TypeFloat, v)
}

// Uniform1i uploads a sampler uniform (a texture unit index).
func (d *Device) Uniform1i(loc, v int) {
	d.setUniform(loc, TypeSampler2D, float64(v))
}

// Uniform3f uploads a vec3 uniform.
func (d *Device) Uniform3f(loc int, x, y, z float64) {
	d.setUniform(loc, TypeVec3, x, y, z)
}

// Uniform4f uploads a vec4 uniform.
func (d *Device) Uniform4f(loc int, x, y, z, w float64) {
	d.setUniform(loc, TypeVec4, x, y, z, w)
}

// UniformMatrix4 uploads a column-major mat4 uniform.
func (d *Device) UniformMatrix4(loc int, m math3d.Mat4) {
	d.setUniform(loc, TypeMat4, m[:]...)
}

// VertexAttribPointer points attribute loc at data, size floats per vertex.
func (d *Device) VertexAttribPointer(loc, size int, data []float64) {
	if loc < 0 || loc >= MaxVertexAttribs || size < 1 || size > 4 {
		d.record(fmt.Errorf("%w: attribute %d size %d", ErrInvalidOperation, loc, size))
		return
	}
	d.attribs[loc].size = size
	d.attribs[loc].data = data
}

// EnableVertexAttribArray makes attribute loc read from its array.
func (d *Device) EnableVertexAttribArray(loc int) {
	if loc < 0 || loc >= MaxVertexAttribs {
		d.record(fmt.Errorf("%w: attribute %d", ErrInvalidOperation, loc))
		return
	}
	d.attribs[loc].enabled = true
}

// DisableVertexAttribArray makes attribute loc read the constant (0,0,0,1).
func (d *Device) DisableVertexAttribArray(loc int) {
	if loc < 0 || loc >= MaxVertexAttribs {
		d.record(fmt.Errorf("%w: attribute %d", ErrInvalidOperation, loc))
		return
	}
	d.attribs[loc].enabled = false
}

// EnabledAttribArrays returns how many attribute arrays are enabled.
func (d *Device) EnabledAttribArrays() int {
	n := 0
	for _, a := range d.attribs {
		if a.enabled {
			n++
		}
	}
	return n
}

// ActiveTexture selects the texture unit BindTexture affects.
func (d *Device) ActiveTexture(unit int) {
	if unit < 0 || unit >= MaxTextureUnits {
		d.record(fmt.Errorf("%w: texture unit %d", ErrInvalidOperation, unit))
		return
	}
	d.activeUnit = unit
}

// BindTexture binds t to the active texture unit. nil unbinds.
func (d *Device) BindTexture(t *Texture) {
	d.units[d.activeUnit] = t
}

// BoundTexture returns the texture bound to unit, or nil.
func (d *Device) BoundTexture(unit int) *Texture {
	if unit < 0 || unit >= MaxTextureUnits {
		return nil
	}
	return d.units[unit]
}

// fetch reads vertex i of attribute array a, filling missing components
// from (0,0,0,1).
func (a *attribArray) fetch(i int) math3d.Vec4 {
	v := [4]float64{0, 0, 0, 1}
	copy(v[:a.size], a.data[i*a.size:i*a.size+a.size])
	return math3d.V4(v[0], v[1], v[2], v[3])
}

// DrawElements draws indexed triangles with the current program. Every
// three indices form one triangle; a trailing partial triangle is ignored.
func (d *Device) DrawElements(indices []uint32) error {
	p := d.program
	if p == nil {
		return fmt.Errorf("%w: no program in use", ErrInvalidOperation)
	}
	d.stats.DrawCalls++

	count := len(indices) / 3 * 3
	if count == 0 || d.viewport.Empty() {
		return nil
	}

	maxIndex := 0
	for _, idx := range indices[:count] {
		maxIndex = max(maxIndex, int(idx))
	}
	for loc := range p.attributes {
		a := &d.attribs[loc]
		if a.enabled && (maxIndex+1)*a.size > len(a.data) {
			return fmt.Errorf("%w: index %d out of range for attribute %s (%d values)",
				ErrInvalidOperation, maxIndex, p.attributes[loc].Name, len(a.data))
		}
	}

	// Run the vertex kernel once per referenced vertex
	n := maxIndex + 1
	clip := make([]math3d.Vec4, n)
	done := make([]bool, n)
	vary := make([]float64, n*p.varyingLen)
	in := make(Attributes, len(p.attributes))

	for _, idx := range indices[:count] {
		i := int(idx)
		if done[i] {
			continue
		}
		for loc := range in {
			if a := &d.attribs[loc]; a.enabled {
				in[loc] = a.fetch(i)
			} else {
				in[loc] = math3d.V4(0, 0, 0, 1)
			}
		}
		out := Varyings(vary[i*p.varyingLen : (i+1)*p.varyingLen])
		clip[i] = p.vertex(in, out)
		done[i] = true
	}

	r := d.newRaster(p)
	for t := 0; t < count; t += 3 {
		var tri [3]clipVertex
		for k := range 3 {
			i := int(indices[t+k])
			tri[k] = clipVertex{pos: clip[i], vary: vary[i*p.varyingLen : (i+1)*p.varyingLen]}
		}
		r.drawTriangle(tri)
	}
	return nil
}

// ReadPixel returns the framebuffer color at (x, y), y growing downward.
func (d *Device) ReadPixel(x, y int) Color {
	return d.fb.GetPixel(x, y)
}

// Depth returns the depth buffer value at (x, y), y growing downward.
func (d *Device) Depth(x, y int) float64 {
	if x < 0 || x >= d.fb.Width || y < 0 || y >= d.fb.Height {
		return math.Inf(1)
	}
	return d.zbuffer[y*d.fb.Width+x]
}
