package render

import (
	"image/color"
	"math"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// ColorToVec4 converts an 8-bit color to RGBA floats in [0,1].
func ColorToVec4(c Color) math3d.Vec4 {
	return math3d.V4(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// Vec4ToColor clamps RGBA floats to [0,1] and rounds them to 8 bits.
func Vec4ToColor(v math3d.Vec4) Color {
	return Color{R: unorm8(v.X), G: unorm8(v.Y), B: unorm8(v.Z), A: unorm8(v.W)}
}

func unorm8(f float64) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(math.Round(f * 255))
}
