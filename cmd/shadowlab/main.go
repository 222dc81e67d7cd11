// shadowlab - a tetrahedron, its shadow and your mouse.
//
// A textured, flat-lit tetrahedron floats over a ground plane and casts a
// planar shadow onto it. Drag with the mouse to turn it. --scene basic
// swaps in an unlit tetrahedron painted with per-corner colors.
//
// Commands:
//
//	view    - Interactive terminal viewer (Esc or ctrl+c quits)
//	render  - Render one frame to a PNG file
//	demo    - Render a spring-driven drag as a PNG sequence
//	config  - Print the default scene config as YAML
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/taigrr/shadowlab/pkg/models"
	"github.com/taigrr/shadowlab/pkg/render"
	"github.com/taigrr/shadowlab/pkg/scene"
)

// globals holds the flags shared by every command.
type globals struct {
	configPath  string
	sceneName   string
	texturePath string
	modelPath   string
	bg          string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "shadowlab",
		Short: "A textured tetrahedron casting a planar shadow, turned by dragging",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setupLogging()
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "scene config file (YAML)")
	pf.StringVar(&g.sceneName, "scene", "", "scene to draw: shadow or basic (default shadow)")
	pf.StringVar(&g.texturePath, "texture", "", "texture image for the solid (PNG/JPG)")
	pf.StringVar(&g.modelPath, "model", "", "draw this GLB model instead of the tetrahedron")
	pf.StringVar(&g.bg, "bg", "", "background color as #rrggbb, overrides the config")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newViewCmd(g),
		newRenderCmd(g),
		newDemoCmd(g),
		newConfigCmd(g),
	)
	return root
}

// setupLogging installs a text logger on stderr at the requested level.
func (g *globals) setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", g.logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the config file, or the --scene preset without one, and
// applies --bg.
func (g *globals) loadConfig() (scene.Config, error) {
	var (
		cfg scene.Config
		err error
	)
	if g.configPath != "" {
		if cfg, err = scene.LoadConfig(g.configPath); err != nil {
			return scene.Config{}, err
		}
		if g.sceneName != "" && g.sceneName != cfg.Scene {
			return scene.Config{}, fmt.Errorf("--scene %s conflicts with scene %s in %s",
				g.sceneName, cfg.Scene, g.configPath)
		}
	} else if cfg, err = scene.PresetConfig(cmp.Or(g.sceneName, scene.SceneShadow)); err != nil {
		return scene.Config{}, err
	}
	if g.bg != "" {
		c, err := parseBackground(g.bg)
		if err != nil {
			return scene.Config{}, err
		}
		cfg.ClearColor = c
	}
	return cfg, nil
}

// parseBackground parses a hex color into clear color components.
func parseBackground(s string) ([3]float64, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return [3]float64{}, fmt.Errorf("background color: %w", err)
	}
	return [3]float64{c.R, c.G, c.B}, nil
}

// newRenderer builds a renderer from the config and the texture and model
// flags. A GLB model's embedded texture is used unless --texture is given.
func (g *globals) newRenderer() (*scene.Renderer, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Scene == scene.SceneBasic && (g.texturePath != "" || g.modelPath != "") {
		return nil, errors.New("--texture and --model need the shadow scene")
	}

	var opts []scene.Option
	var img image.Image
	if g.texturePath != "" {
		if img, err = render.LoadImage(g.texturePath); err != nil {
			return nil, err
		}
	}

	if g.modelPath != "" {
		loader := &models.GLTFLoader{Scale: cfg.Solid.Scale}
		var (
			mesh     *models.Mesh
			embedded image.Image
		)
		if img != nil {
			// --texture wins, the file's own images are not decoded
			mesh, err = loader.Load(g.modelPath)
		} else {
			mesh, embedded, err = loader.LoadGLBWithTexture(g.modelPath)
			img = embedded
		}
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		opts = append(opts, scene.WithMesh(mesh))
		slog.Info("Loaded model",
			"path", filepath.Base(g.modelPath),
			"vertices", mesh.VertexCount(),
			"triangles", mesh.TriangleCount(),
			"size", mesh.Size(),
			"embedded_texture", embedded != nil,
		)
	}
	if img != nil {
		opts = append(opts, scene.WithTexture(img))
	}

	return scene.NewRenderer(cfg, opts...)
}
