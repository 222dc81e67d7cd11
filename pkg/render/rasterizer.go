package render

import (
	"math"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// clipVertex is a vertex kernel output: clip-space position plus varyings.
type clipVertex struct {
	pos  math3d.Vec4
	vary []float64
}

// screenVertex holds a vertex transformed to window space.
type screenVertex struct {
	X, Y       float64 // Framebuffer coordinates, y down
	Z          float64 // Window depth in [0,1]
	InvW       float64 // 1/w for perspective-correct interpolation
	NDCX, NDCY float64 // Normalized device coordinates, for facing
	Vary       []float64
}

// Fragment is the input of a fragment kernel. It is only valid for the
// duration of the kernel call.
type Fragment struct {
	X, Y        int     // Framebuffer pixel, y growing downward
	Depth       float64 // Window depth in [0,1]
	FrontFacing bool
	Varyings    Varyings

	d   *Device
	p   *Program
	tri [3]*screenVertex

	gradLoc int
	gradOK  bool
	grad    [4]float64 // du/dx, dv/dx, du/dy, dv/dy
}

// Texture2D samples the texture bound to the unit held by the sampler
// uniform at the vec2 varying uvLoc. The mip level comes from how fast that
// varying changes across the current triangle. With no texture bound it
// returns opaque black.
func (f *Fragment) Texture2D(sampler, uvLoc int) math3d.Vec4 {
	tex := f.d.BoundTexture(f.p.UniformInt(sampler))
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		return math3d.V4(0, 0, 0, 1)
	}
	uv := f.Varyings.Vec2(uvLoc)
	return tex.SampleLOD(uv.X, uv.Y, f.lod(uvLoc, tex))
}

// lod returns log2 of the texel footprint of one pixel.
func (f *Fragment) lod(uvLoc int, tex *Texture) float64 {
	if !f.gradOK || f.gradLoc != uvLoc {
		a, b, c := f.tri[0], f.tri[1], f.tri[2]
		dx1, dy1 := b.X-a.X, b.Y-a.Y
		dx2, dy2 := c.X-a.X, c.Y-a.Y
		area2 := dx1*dy2 - dx2*dy1
		f.grad = [4]float64{}
		if area2 != 0 {
			for k := range 2 {
				d1 := b.Vary[uvLoc+k] - a.Vary[uvLoc+k]
				d2 := c.Vary[uvLoc+k] - a.Vary[uvLoc+k]
				f.grad[k] = (d1*dy2 - d2*dy1) / area2
				f.grad[2+k] = (d2*dx1 - d1*dx2) / area2
			}
		}
		f.gradLoc, f.gradOK = uvLoc, true
	}

	w, h := float64(tex.Width), float64(tex.Height)
	rho := math.Max(
		math.Hypot(f.grad[0]*w, f.grad[1]*h),
		math.Hypot(f.grad[2]*w, f.grad[3]*h),
	)
	if rho <= 0 {
		return 0
	}
	return math.Log2(rho)
}

// raster carries the per-draw state of DrawElements.
type raster struct {
	d       *Device
	p       *Program
	frag    Fragment
	interp  []float64
	screens []screenVertex
}

func (d *Device) newRaster(p *Program) *raster {
	r := &raster{d: d, p: p, interp: make([]float64, p.varyingLen)}
	r.frag = Fragment{d: d, p: p, Varyings: r.interp}
	return r
}

// Clip distances; a vertex is inside where both are >= 0.
func nearDist(v math3d.Vec4) float64 { return v.Z + v.W }
func farDist(v math3d.Vec4) float64  { return v.W - v.Z }

// clip cuts the triangle against the near and far planes in homogeneous
// space (Sutherland-Hodgman) and returns the resulting convex polygon.
func (r *raster) clip(tri [3]clipVertex) []clipVertex {
	inside := true
	for _, v := range tri {
		if nearDist(v.pos) < 0 || farDist(v.pos) < 0 {
			inside = false
			break
		}
	}
	if inside {
		return tri[:]
	}

	poly := tri[:]
	for _, dist := range []func(math3d.Vec4) float64{nearDist, farDist} {
		if len(poly) == 0 {
			break
		}
		out := make([]clipVertex, 0, len(poly)+1)
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			da, db := dist(a.pos), dist(b.pos)
			if da >= 0 {
				out = append(out, a)
			}
			if (da >= 0) != (db >= 0) {
				out = append(out, lerpClip(a, b, da/(da-db)))
			}
		}
		poly = out
	}
	return poly
}

func lerpClip(a, b clipVertex, t float64) clipVertex {
	vary := make([]float64, len(a.vary))
	for i := range vary {
		vary[i] = a.vary[i] + (b.vary[i]-a.vary[i])*t
	}
	return clipVertex{pos: a.pos.Lerp(b.pos, t), vary: vary}
}

// project applies the perspective divide and the viewport transform.
func (r *raster) project(v clipVertex) screenVertex {
	invW := 1.0 / v.pos.W
	ndc := math3d.V3(v.pos.X*invW, v.pos.Y*invW, v.pos.Z*invW)
	vp := r.d.viewport

	winX := float64(vp.Min.X) + (ndc.X+1)*0.5*float64(vp.Dx())
	winY := float64(vp.Min.Y) + (ndc.Y+1)*0.5*float64(vp.Dy())

	return screenVertex{
		X:    winX,
		Y:    float64(r.d.fb.Height) - winY,
		Z:    (ndc.Z + 1) * 0.5,
		InvW: invW,
		NDCX: ndc.X,
		NDCY: ndc.Y,
		Vary: v.vary,
	}
}

// drawTriangle clips, culls and rasterizes one triangle.
func (r *raster) drawTriangle(tri [3]clipVertex) {
	st := &r.d.stats
	st.TrianglesSubmitted++

	poly := r.clip(tri)
	if len(poly) < 3 {
		st.TrianglesClipped++
		return
	}

	r.screens = r.screens[:0]
	for _, v := range poly {
		if v.pos.W <= 0 {
			st.TrianglesClipped++
			return
		}
		r.screens = append(r.screens, r.project(v))
	}

	// Counter-clockwise in NDC is front facing
	var area float64
	for i := range r.screens {
		a, b := &r.screens[i], &r.screens[(i+1)%len(r.screens)]
		area += a.NDCX*b.NDCY - b.NDCX*a.NDCY
	}
	front := area > 0
	if r.d.caps[CullFace] && !front {
		st.TrianglesCulled++
		return
	}
	if area == 0 {
		return
	}

	st.TrianglesRasterized++
	r.frag.FrontFacing = front
	for i := 1; i+1 < len(r.screens); i++ {
		r.fill(&r.screens[0], &r.screens[i], &r.screens[i+1])
	}
}

// edgeCoeffs returns A, B, C for the edge function edge(x,y) = A*x + B*y + C.
// Positive = left of edge, negative = right of edge, zero = on edge.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// topLeft reports whether pixels exactly on the edge belong to it, so
// triangles sharing an edge never both cover a pixel.
func topLeft(A, B float64) bool {
	return A > 0 || (A == 0 && B < 0)
}

func covered(w float64, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

// fill rasterizes one screen-space triangle with incremental edge functions.
func (r *raster) fill(v0, v1, v2 *screenVertex) {
	area2 := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if area2 < 0 {
		v1, v2 = v2, v1
		area2 = -area2
	}
	if area2 == 0 {
		return
	}
	invArea := 1.0 / area2

	d := r.d
	fb := d.fb
	vp := d.viewport

	// Bounding box clamped to the framebuffer and viewport
	minX := max(0, vp.Min.X, int(math.Floor(min(v0.X, v1.X, v2.X))))
	maxX := min(fb.Width-1, vp.Max.X-1, int(math.Ceil(max(v0.X, v1.X, v2.X))))
	minY := max(0, fb.Height-vp.Max.Y, int(math.Floor(min(v0.Y, v1.Y, v2.Y))))
	maxY := min(fb.Height-1, fb.Height-vp.Min.Y-1, int(math.Ceil(max(v0.Y, v1.Y, v2.Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	A1, B1, C1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	A2, B2, C2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)
	tl0, tl1, tl2 := topLeft(A0, B0), topLeft(A1, B1), topLeft(A2, B2)

	f := &r.frag
	f.tri = [3]*screenVertex{v0, v1, v2}
	f.gradOK = false

	depthTest := d.caps[DepthTest]
	depthWrite := depthTest && d.depthMask
	blend := d.caps[Blend]
	nv := len(r.interp)

	// Evaluate edge functions at the center of the top-left pixel
	px := float64(minX) + 0.5
	py := float64(minY) + 0.5

	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	width := fb.Width
	zbuffer := d.zbuffer

	for y := minY; y <= maxY; y++ {
		w0 := w0Row
		w1 := w1Row
		w2 := w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if covered(w0, tl0) && covered(w1, tl1) && covered(w2, tl2) {
				bc0 := w0 * invArea
				bc1 := w1 * invArea
				bc2 := w2 * invArea

				z := bc0*v0.Z + bc1*v1.Z + bc2*v2.Z
				idx := rowOffset + x

				if !depthTest || z < zbuffer[idx] {
					// Perspective-correct interpolation
					pw0 := bc0 * v0.InvW
					pw1 := bc1 * v1.InvW
					pw2 := bc2 * v2.InvW
					inv := 1.0 / (pw0 + pw1 + pw2)
					pw0, pw1, pw2 = pw0*inv, pw1*inv, pw2*inv
					for i := range nv {
						r.interp[i] = pw0*v0.Vary[i] + pw1*v1.Vary[i] + pw2*v2.Vary[i]
					}

					f.X, f.Y, f.Depth = x, y, z
					c := r.p.fragment(f)
					if blend {
						c = d.blend(c, ColorToVec4(fb.Pixels[idx]))
					}
					fb.Pixels[idx] = Vec4ToColor(c)
					if depthWrite {
						zbuffer[idx] = z
					}
					d.stats.FragmentsWritten++
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

func (d *Device) blend(src, dst math3d.Vec4) math3d.Vec4 {
	return src.Scale(blendFactor(d.srcFactor, src)).Add(dst.Scale(blendFactor(d.dstFactor, src)))
}

func blendFactor(f BlendFactor, src math3d.Vec4) float64 {
	switch f {
	case BlendOne:
		return 1
	case BlendSrcAlpha:
		return src.W
	case BlendOneMinusSrcAlpha:
		return 1 - src.W
	default:
		return 0
	}
}
