package host

import (
	"fmt"
	"image"
	"io"

	"github.com/taigrr/shadowlab/pkg/render"
	"github.com/taigrr/shadowlab/pkg/scene"
)

// Offscreen is a fixed-size surface backed by a software device, for
// rendering frames to images.
type Offscreen struct {
	r   scene.SurfaceRenderer
	dev *render.Device
}

// NewOffscreen creates a width x height surface and runs the create and
// change callbacks of r on it.
func NewOffscreen(r scene.SurfaceRenderer, width, height int) (*Offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", scene.ErrInvalidViewport, width, height)
	}
	dev := render.NewDevice(width, height)
	if err := r.SurfaceCreated(dev); err != nil {
		return nil, err
	}
	if err := r.SurfaceChanged(width, height); err != nil {
		return nil, err
	}
	return &Offscreen{r: r, dev: dev}, nil
}

// Device returns the surface's device.
func (o *Offscreen) Device() *render.Device {
	return o.dev
}

// Draw renders one frame.
func (o *Offscreen) Draw() error {
	return o.r.DrawFrame()
}

// Image returns a copy of the last frame.
func (o *Offscreen) Image() *image.RGBA {
	return o.dev.Framebuffer().ToImage()
}

// WritePNG encodes the last frame as PNG.
func (o *Offscreen) WritePNG(w io.Writer) error {
	return o.dev.Framebuffer().EncodePNG(w)
}

// SavePNG writes the last frame to a PNG file.
func (o *Offscreen) SavePNG(path string) error {
	if err := o.dev.Framebuffer().SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
