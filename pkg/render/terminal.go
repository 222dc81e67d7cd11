package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the internal framebuffer to terminal cells and draws them on
// the screen.
// The framebuffer height should be 2x the terminal height.
func (r *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < r.Width; col++ {
			x := col - area.Min.X
			topColor := r.GetPixel(x, topY)
			botColor := r.GetPixel(x, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// TerminalScreen is a cell screen that can push its contents to the
// terminal. *uv.Terminal satisfies it.
type TerminalScreen interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents framebuffers on a terminal using half-block
// cells, two pixels per cell stacked vertically.
type TerminalRenderer struct {
	scr    TerminalScreen
	width  int // Columns
	height int // Rows
}

// NewTerminalRenderer creates a renderer for a width x height cell area.
func NewTerminalRenderer(scr TerminalScreen, width, height int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, width: max(width, 0), height: max(height, 0)}
}

// FramebufferSize returns the pixel size that fills the cell area.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render draws fb into the cell area.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.width, t.height))
}

// Flush displays the drawn cells.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}
