package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taigrr/shadowlab/internal/host"
)

func newViewCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the scene in the terminal and turn it with the mouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("view needs a terminal on stdout")
			}
			r, err := g.newRenderer()
			if err != nil {
				return err
			}
			return host.NewViewer(r).Run(cmd.Context())
		},
	}
}

func newRenderCmd(g *globals) *cobra.Command {
	var (
		out           string
		width, height int
		drags         []string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame to a PNG file",
		Long: "Render one frame to a PNG file. Each --drag dx,dy is applied in order " +
			"before drawing, as if the pointer had moved that many pixels.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moves := make([][2]float64, 0, len(drags))
			for _, d := range drags {
				m, err := parseDrag(d)
				if err != nil {
					return err
				}
				moves = append(moves, m)
			}

			r, err := g.newRenderer()
			if err != nil {
				return err
			}
			o, err := host.NewOffscreen(r, width, height)
			if err != nil {
				return err
			}
			for _, m := range moves {
				r.Drag(m[0], m[1])
			}
			if err := o.Draw(); err != nil {
				return err
			}
			if err := o.SavePNG(out); err != nil {
				return err
			}

			ax, ay := r.Rotation().Angles()
			slog.Info("Rendered frame", "path", out, "angle_x", ax, "angle_y", ay)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "shadowlab.png", "output PNG path")
	f.IntVar(&width, "width", 640, "image width in pixels")
	f.IntVar(&height, "height", 480, "image height in pixels")
	f.StringArrayVar(&drags, "drag", nil, "pointer drag dx,dy in pixels (repeatable)")
	return cmd
}

func newDemoCmd(g *globals) *cobra.Command {
	var (
		dir           string
		width, height int
		fps, frames   int
		drag          string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a smooth drag gesture as a numbered PNG sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDrag(drag)
			if err != nil {
				return err
			}
			if frames <= 0 || fps <= 0 {
				return errors.New("frames and fps must be positive")
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			r, err := g.newRenderer()
			if err != nil {
				return err
			}
			o, err := host.NewOffscreen(r, width, height)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if term.IsTerminal(int(os.Stderr.Fd())) {
				bar = progressbar.Default(int64(frames), "rendering")
				defer bar.Close()
			}

			spin := host.NewSpin(fps, d[0], d[1])
			for i := range frames {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				r.Drag(spin.Step())
				if err := o.Draw(); err != nil {
					return err
				}
				path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", i))
				if err := o.SavePNG(path); err != nil {
					return err
				}
				if bar != nil {
					if err := bar.Add(1); err != nil {
						slog.Debug("Progress bar update failed", "error", err)
					}
				}
			}

			slog.Info("Rendered demo", "dir", dir, "frames", frames, "settled", spin.Done())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&dir, "output", "o", "frames", "output directory")
	f.IntVar(&width, "width", 320, "frame width in pixels")
	f.IntVar(&height, "height", 240, "frame height in pixels")
	f.IntVar(&fps, "fps", 30, "frames per second of the gesture")
	f.IntVar(&frames, "frames", 90, "number of frames")
	f.StringVar(&drag, "drag", "320,0", "total drag dx,dy in pixels")
	return cmd
}

func newConfigCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the scene config as YAML",
		Long:  "Print the scene config as YAML: the --scene preset, or the --config file, with --bg applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}

// parseDrag parses "dx,dy". Both must be finite.
func parseDrag(s string) ([2]float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return [2]float64{}, fmt.Errorf("drag %q: want dx,dy", s)
	}
	dx, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("drag %q: %w", s, err)
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("drag %q: %w", s, err)
	}
	if math.IsNaN(dx) || math.IsInf(dx, 0) || math.IsNaN(dy) || math.IsInf(dy, 0) {
		return [2]float64{}, fmt.Errorf("drag %q: not finite", s)
	}
	return [2]float64{dx, dy}, nil
}
