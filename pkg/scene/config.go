package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultTouchScale is the drag rotation in degrees per pixel: a 320 pixel
// drag turns the solid half way round.
const DefaultTouchScale = 180.0 / 320.0

// Scene names accepted in Config.Scene.
const (
	SceneShadow = "shadow" // Lit, textured solid casting a shadow on the ground
	SceneBasic  = "basic"  // Unlit solid in its vertex colors
)

// Config holds every tunable constant of the scene.
type Config struct {
	Scene      string       `yaml:"scene"`
	TouchScale float64      `yaml:"touch_scale"`
	ClearColor [3]float64   `yaml:"clear_color,flow"`
	Camera     CameraConfig `yaml:"camera"`
	Light      LightConfig  `yaml:"light"`
	Ground     GroundConfig `yaml:"ground"`
	Shadow     ShadowConfig `yaml:"shadow"`
	Solid      SolidConfig  `yaml:"solid"`
}

// CameraConfig places the viewer. Near and Far bound the frustum.
type CameraConfig struct {
	Eye    [3]float64 `yaml:"eye,flow"`
	Target [3]float64 `yaml:"target,flow"`
	Up     [3]float64 `yaml:"up,flow"`
	Near   float64    `yaml:"near"`
	Far    float64    `yaml:"far"`
}

// LightConfig describes the directional light. Direction points from the
// surface toward the light.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction,flow"`
	Diffuse   [3]float64 `yaml:"diffuse,flow"`
	Ambient   [3]float64 `yaml:"ambient,flow"`
}

// GroundConfig describes the ground plane. Height is the signed offset of
// the plane from the origin along Normal.
type GroundConfig struct {
	Normal     [3]float64 `yaml:"normal,flow"`
	Height     float64    `yaml:"height"`
	HalfExtent float64    `yaml:"half_extent"`
	Color      [4]float64 `yaml:"color,flow"`
}

// ShadowConfig controls the projected shadow. Offset lifts it off the ground
// to keep it from z-fighting.
type ShadowConfig struct {
	Offset float64    `yaml:"offset"`
	Color  [4]float64 `yaml:"color,flow"`
}

// SolidConfig controls the drawn solid.
type SolidConfig struct {
	Scale float64 `yaml:"scale"`
}

// DefaultConfig returns the stock scene.
func DefaultConfig() Config {
	return Config{
		Scene:      SceneShadow,
		TouchScale: DefaultTouchScale,
		ClearColor: [3]float64{0.1, 0.1, 0.1},
		Camera: CameraConfig{
			Eye:    [3]float64{0, 1, 4},
			Target: [3]float64{0, 0, 0},
			Up:     [3]float64{0, 1, 0},
			Near:   2,
			Far:    15,
		},
		Light: LightConfig{
			Direction: [3]float64{0.5, 1, 0.5},
			Diffuse:   [3]float64{0.8, 0.8, 0.8},
			Ambient:   [3]float64{0.2, 0.2, 0.2},
		},
		Ground: GroundConfig{
			Normal:     [3]float64{0, 1, 0},
			Height:     -0.8,
			HalfExtent: 5,
			Color:      [4]float64{0.4, 0.4, 0.4, 1},
		},
		Shadow: ShadowConfig{
			Offset: 0.005,
			Color:  [4]float64{0, 0, 0, 0.4},
		},
		Solid: SolidConfig{
			Scale: 0.75,
		},
	}
}

// BasicConfig returns the stock vertex-colored scene: a half-size solid on
// black, seen from (0, 0, 4) through a 3..7 frustum. The light, ground and
// shadow settings are unused.
func BasicConfig() Config {
	cfg := DefaultConfig()
	cfg.Scene = SceneBasic
	cfg.ClearColor = [3]float64{0, 0, 0}
	cfg.Camera.Eye = [3]float64{0, 0, 4}
	cfg.Camera.Near, cfg.Camera.Far = 3, 7
	cfg.Solid.Scale = 0.5
	return cfg
}

// PresetConfig returns the stock config of the named scene.
func PresetConfig(scene string) (Config, error) {
	switch scene {
	case SceneShadow:
		return DefaultConfig(), nil
	case SceneBasic:
		return BasicConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: unknown scene %q", ErrInvalidConfig, scene)
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of the preset named by its scene key,
// shadow when absent, and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var head struct {
		Scene string `yaml:"scene"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if head.Scene == "" {
		head.Scene = SceneShadow
	}
	cfg, err := PresetConfig(head.Scene)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteYAML encodes the config as YAML.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Validate reports every problem with the config, each wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Scene != SceneShadow && c.Scene != SceneBasic {
		bad("scene %q must be %s or %s", c.Scene, SceneShadow, SceneBasic)
	}
	if !(c.TouchScale > 0) || math.IsInf(c.TouchScale, 0) {
		bad("touch_scale %v must be positive", c.TouchScale)
	}
	if !inUnitRange(c.ClearColor[:]) {
		bad("clear_color %v outside [0,1]", c.ClearColor)
	}

	cam := c.Camera
	if !(cam.Near > 0 && cam.Near < cam.Far) || math.IsInf(cam.Far, 0) {
		bad("camera near %v and far %v must satisfy 0 < near < far", cam.Near, cam.Far)
	}
	forward := vec3(cam.Target).Sub(vec3(cam.Eye))
	if forward.Len() == 0 {
		bad("camera eye and target coincide at %v", cam.Eye)
	} else if forward.Cross(vec3(cam.Up)).Len() < 1e-9 {
		bad("camera up %v is parallel to the view direction", cam.Up)
	}

	if !inUnitRange(c.Light.Diffuse[:]) || !inUnitRange(c.Light.Ambient[:]) {
		bad("light colors must lie in [0,1]")
	}
	if !vec3(c.Light.Direction).IsFinite() {
		bad("light direction %v is not finite", c.Light.Direction)
	}

	if n := vec3(c.Ground.Normal); n.Len() == 0 || !n.IsFinite() {
		bad("ground normal %v must be a non-zero vector", c.Ground.Normal)
	}
	if !(c.Ground.HalfExtent > 0) {
		bad("ground half_extent %v must be positive", c.Ground.HalfExtent)
	}
	if !inUnitRange(c.Ground.Color[:]) {
		bad("ground color %v outside [0,1]", c.Ground.Color)
	}

	if math.IsNaN(c.Shadow.Offset) || math.IsInf(c.Shadow.Offset, 0) {
		bad("shadow offset %v is not finite", c.Shadow.Offset)
	}
	if !inUnitRange(c.Shadow.Color[:]) {
		bad("shadow color %v outside [0,1]", c.Shadow.Color)
	}

	if !(c.Solid.Scale > 0) || math.IsInf(c.Solid.Scale, 0) {
		bad("solid scale %v must be positive", c.Solid.Scale)
	}

	return errors.Join(errs...)
}

// GroundPlane returns the normalized ground plane equation.
func (c Config) GroundPlane() math3d.Plane {
	n := vec3(c.Ground.Normal).Normalize()
	return math3d.Plane{Normal: n, D: -c.Ground.Height}
}

func inUnitRange(v []float64) bool {
	for _, f := range v {
		if !(f >= 0 && f <= 1) {
			return false
		}
	}
	return true
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func vec4(a [4]float64) math3d.Vec4 {
	return math3d.V4(a[0], a[1], a[2], a[3])
}
