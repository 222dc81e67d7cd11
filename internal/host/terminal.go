// Package host drives a scene.SurfaceRenderer on an actual surface: a
// terminal window or an offscreen framebuffer.
package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/shadowlab/pkg/render"
	"github.com/taigrr/shadowlab/pkg/scene"
)

// Mouse tracking escapes: any-event tracking and SGR extended coordinates.
const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h"
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

// Viewer shows a scene in the terminal and rotates it with mouse drags.
// Frames are drawn only when something changed.
type Viewer struct {
	r   *scene.Renderer
	log *slog.Logger
	out io.Writer

	redraw *Signal
	resize chan [2]int
	drag   scene.DragTracker
}

// ViewerOption customises a Viewer.
type ViewerOption func(*Viewer)

// WithViewerLogger sets the logger. The default is slog.Default().
func WithViewerLogger(l *slog.Logger) ViewerOption {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// NewViewer creates a viewer for r. It installs its redraw request on r.
func NewViewer(r *scene.Renderer, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		r:      r,
		log:    slog.Default(),
		out:    os.Stdout,
		redraw: NewSignal(),
		resize: make(chan [2]int, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	r.SetRedraw(v.redraw.Raise)
	return v
}

// Run takes over the terminal until ctx is done or the user quits with Esc
// or ctrl+c.
func (v *Viewer) Run(ctx context.Context) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	fmt.Fprint(v.out, mouseOn)

	defer func() {
		fmt.Fprint(v.out, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			v.log.Warn("Terminal shutdown failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen := render.NewTerminalRenderer(term, cols, rows)
	w, h := screen.FramebufferSize()
	dev := render.NewDevice(max(w, 1), max(h, 1))
	if err := v.r.SurfaceCreated(dev); err != nil {
		return err
	}
	if err := v.surfaceChanged(dev, w, h); err != nil {
		return err
	}

	go v.handleEvents(ctx, cancel, term)

	for {
		select {
		case <-ctx.Done():
			return nil

		case size := <-v.resize:
			term.Erase()
			term.Resize(size[0], size[1])
			screen = render.NewTerminalRenderer(term, size[0], size[1])
			w, h = screen.FramebufferSize()
			if err := v.surfaceChanged(dev, w, h); err != nil {
				v.log.Warn("Ignoring resize", "cols", size[0], "rows", size[1], "error", err)
				continue
			}

		case <-v.redraw.C():
		}

		if err := v.r.DrawFrame(); err != nil {
			return err
		}
		screen.Render(dev.Framebuffer())
		if err := screen.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
}

// surfaceChanged resizes the device to the new pixel size and tells the
// renderer. The resize always ends in a redraw.
func (v *Viewer) surfaceChanged(dev *render.Device, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", scene.ErrInvalidViewport, w, h)
	}
	dev.Resize(w, h)
	if err := v.r.SurfaceChanged(w, h); err != nil {
		return err
	}
	v.redraw.Raise()
	return nil
}

// handleEvents turns terminal input into drags, resizes and quitting. Each
// cell is one pixel wide and two pixels tall.
func (v *Viewer) handleEvents(ctx context.Context, quit context.CancelFunc, term *uv.Terminal) {
	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !v.handleEvent(ev) {
				quit()
				return
			}
		}
	}
}

// handleEvent applies one event and reports whether the viewer keeps running.
func (v *Viewer) handleEvent(ev any) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		// Only the latest size matters
		select {
		case <-v.resize:
		default:
		}
		v.resize <- [2]int{ev.Width, ev.Height}

	case uv.KeyPressEvent:
		if ev.MatchString("escape", "ctrl+c") {
			return false
		}

	case uv.MouseClickEvent:
		v.drag.Press(float64(ev.X), float64(ev.Y)*2)

	case uv.MouseReleaseEvent:
		v.drag.Release()

	case uv.MouseMotionEvent:
		if dx, dy, ok := v.drag.Move(float64(ev.X), float64(ev.Y)*2); ok {
			v.r.Drag(dx, dy)
		}
	}
	return true
}
