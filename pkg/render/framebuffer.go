package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Framebuffer is the color buffer of a Device, stored top row first.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewFramebuffer creates a transparent black width x height framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Bounds returns the framebuffer rectangle.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// Clear sets every pixel to c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if len(fb.Pixels) == 0 {
		return
	}
	// Fill by doubling the initialized prefix
	fb.Pixels[0] = c
	for n := 1; n < len(fb.Pixels); n *= 2 {
		copy(fb.Pixels[n:], fb.Pixels[:n])
	}
}

// SetPixel sets the pixel at (x, y). Points outside are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if image.Pt(x, y).In(fb.Bounds()) {
		fb.Pixels[y*fb.Width+x] = c
	}
}

// GetPixel returns the pixel at (x, y), or transparent black outside.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !image.Pt(x, y).In(fb.Bounds()) {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the framebuffer into an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	for i, c := range fb.Pixels {
		img.Pix[4*i+0] = c.R
		img.Pix[4*i+1] = c.G
		img.Pix[4*i+2] = c.B
		img.Pix[4*i+3] = c.A
	}
	return img
}

// EncodePNG writes the framebuffer as PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, fb.ToImage())
}

// SavePNG writes the framebuffer to a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fb.EncodePNG(f); err != nil {
		return errors.Join(fmt.Errorf("encode %s: %w", path, err), f.Close())
	}
	return f.Close()
}
