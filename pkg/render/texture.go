package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// ErrTexture reports a texture that could not be loaded or uploaded.
var ErrTexture = errors.New("texture")

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest   FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                    // Bilinear interpolation (smooth)
	FilterTrilinear                   // Bilinear within and linear between mip levels
)

// Texture holds a 2D image for texture mapping. Texture coordinate v=0 is
// the first image row.
type Texture struct {
	Width     int
	Height    int
	Pixels    []Color    // Row-major pixel data
	WrapU     WrapMode   // Horizontal wrap mode
	WrapV     WrapMode   // Vertical wrap mode
	MinFilter FilterMode // Used when a texel covers less than a pixel
	MagFilter FilterMode // Used when a texel covers more than a pixel

	mips []*Texture // Levels 1..n, halving down to 1x1
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:     width,
		Height:    height,
		Pixels:    make([]Color, width*height),
		WrapU:     WrapRepeat,
		WrapV:     WrapRepeat,
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
	}
}

// NewTexture2D uploads img as a repeat-wrapped, mipmapped texture with
// trilinear minification and bilinear magnification.
func NewTexture2D(img image.Image) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrTexture)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrTexture, b)
	}

	tex := TextureFromImage(img)
	tex.MinFilter = FilterTrilinear
	tex.MagFilter = FilterBilinear
	tex.GenerateMipmaps()
	return tex, nil
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTexture, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrTexture, path, err)
	}
	return img, nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			tex.Pixels[y*tex.Width+x] = rgba.RGBAAt(x, y)
		}
	}
	return tex
}

// CheckerImage creates a procedural checkerboard image.
func CheckerImage(width, height, checkSize int, c1, c2 Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				img.SetRGBA(x, y, c1)
			} else {
				img.SetRGBA(x, y, c2)
			}
		}
	}
	return img
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// GenerateMipmaps builds the box-filtered mip chain from the current pixels.
// Each level halves both dimensions (never below 1) until 1x1.
func (t *Texture) GenerateMipmaps() {
	t.mips = t.mips[:0]
	src := t
	for src.Width > 1 || src.Height > 1 {
		w, h := max(1, src.Width/2), max(1, src.Height/2)
		dst := NewTexture(w, h)
		for y := range h {
			for x := range w {
				x0, y0 := min(2*x, src.Width-1), min(2*y, src.Height-1)
				x1, y1 := min(2*x+1, src.Width-1), min(2*y+1, src.Height-1)
				sum := ColorToVec4(src.GetPixel(x0, y0)).
					Add(ColorToVec4(src.GetPixel(x1, y0))).
					Add(ColorToVec4(src.GetPixel(x0, y1))).
					Add(ColorToVec4(src.GetPixel(x1, y1)))
				dst.Pixels[y*w+x] = Vec4ToColor(sum.Scale(0.25))
			}
		}
		t.mips = append(t.mips, dst)
		src = dst
	}
}

// Levels returns the number of mip levels including the base image.
func (t *Texture) Levels() int {
	return 1 + len(t.mips)
}

// Level returns mip level i, where level 0 is t itself.
func (t *Texture) Level(i int) *Texture {
	if i <= 0 || len(t.mips) == 0 {
		return t
	}
	return t.mips[min(i, len(t.mips))-1]
}

// Sample samples the base level at UV coordinates with the magnification
// filter. The result is RGBA in [0,1].
func (t *Texture) Sample(u, v float64) math3d.Vec4 {
	return t.SampleLOD(u, v, 0)
}

// SampleLOD samples at the given level of detail (log2 of texels per pixel).
// A lod at or below zero magnifies; above zero the minification filter picks
// and blends mip levels.
func (t *Texture) SampleLOD(u, v, lod float64) math3d.Vec4 {
	if t.Width == 0 || t.Height == 0 {
		return math3d.Vec4{}
	}
	if lod <= 0 || math.IsNaN(lod) {
		return t.sample(u, v, t.MagFilter)
	}

	switch t.MinFilter {
	case FilterTrilinear:
		if len(t.mips) == 0 {
			return t.sampleBilinear(u, v)
		}
		lod = math.Min(lod, float64(len(t.mips)))
		base := int(math.Floor(lod))
		frac := lod - float64(base)
		c0 := t.Level(base).sampleBilinear(u, v)
		if frac == 0 {
			return c0
		}
		return c0.Lerp(t.Level(base+1).sampleBilinear(u, v), frac)
	default:
		return t.sample(u, v, t.MinFilter)
	}
}

func (t *Texture) sample(u, v float64, filter FilterMode) math3d.Vec4 {
	if filter == FilterNearest {
		return t.sampleNearest(u, v)
	}
	return t.sampleBilinear(u, v)
}

// wrapCoord applies the wrap mode to a coordinate.
func (t *Texture) wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord = coord - math.Floor(coord) // fmod to [0,1)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

// sampleNearest returns the nearest pixel.
func (t *Texture) sampleNearest(u, v float64) math3d.Vec4 {
	u = t.wrapCoord(u, t.WrapU)
	v = t.wrapCoord(v, t.WrapV)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)

	return ColorToVec4(t.GetPixel(x, y))
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) math3d.Vec4 {
	u = t.wrapCoord(u, t.WrapU)
	v = t.wrapCoord(v, t.WrapV)

	// Convert to pixel coordinates
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1

	// Fractional parts
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	// Wrap coordinates for sampling
	x0 = t.wrapPixelCoord(x0, t.Width, t.WrapU)
	x1 = t.wrapPixelCoord(x1, t.Width, t.WrapU)
	y0 = t.wrapPixelCoord(y0, t.Height, t.WrapV)
	y1 = t.wrapPixelCoord(y1, t.Height, t.WrapV)

	// Sample 4 pixels
	c00 := ColorToVec4(t.GetPixel(x0, y0))
	c10 := ColorToVec4(t.GetPixel(x1, y0))
	c01 := ColorToVec4(t.GetPixel(x0, y1))
	c11 := ColorToVec4(t.GetPixel(x1, y1))

	top := c00.Lerp(c10, tx)
	bot := c01.Lerp(c11, tx)
	return top.Lerp(bot, ty)
}

// wrapPixelCoord wraps a pixel coordinate.
func (t *Texture) wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x = x % size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		if x < 0 {
			x = 0
		} else if x >= size {
			x = size - 1
		}
	}
	return x
}
