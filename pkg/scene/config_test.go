package scene

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/shadowlab/pkg/math3d"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TouchScale != 180.0/320.0 {
		t.Errorf("TouchScale = %v, want 180/320", cfg.TouchScale)
	}

	plane := cfg.GroundPlane()
	if plane.Normal != math3d.V3(0, 1, 0) || plane.D != 0.8 {
		t.Errorf("GroundPlane() = %+v, want y + 0.8 = 0", plane)
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.Camera.Eye = [3]float64{1.5, 2, 6}
	want.Light.Direction = [3]float64{-0.3, 1, 0.2}
	want.Shadow.Color[3] = 0.55

	var buf bytes.Buffer
	if err := want.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := ParseConfig(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseConfig: %v\n%s", err, buf.String())
	}
	if got != want {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		check func(Config) bool
	}{
		{"empty", "", func(c Config) bool { return c == DefaultConfig() }},
		{"comment only", "# nothing here\n", func(c Config) bool { return c == DefaultConfig() }},
		{
			"near only",
			"camera:\n  near: 1\n",
			func(c Config) bool {
				return c.Camera.Near == 1 && c.Camera.Far == 15 && c.Camera.Eye == [3]float64{0, 1, 4}
			},
		},
		{
			"flow list",
			"light: {direction: [0, 1, 0]}\n",
			func(c Config) bool {
				return c.Light.Direction == [3]float64{0, 1, 0} && c.Light.Diffuse == [3]float64{0.8, 0.8, 0.8}
			},
		},
		{
			"touch scale",
			"touch_scale: 0.25\n",
			func(c Config) bool { return c.TouchScale == 0.25 && c.Solid.Scale == 0.75 },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if !tc.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "bogus: 1\n"},
		{"short list", "clear_color: [0.1, 0.2]\n"},
		{"wrong type", "camera: {near: close}\n"},
		{"near past far", "camera: {near: 20}\n"},
		{"zero near", "camera: {near: 0}\n"},
		{"eye on target", "camera: {eye: [0, 0, 0]}\n"},
		{"up along view", "camera: {eye: [0, 4, 0], up: [0, 1, 0]}\n"},
		{"zero touch scale", "touch_scale: 0\n"},
		{"zero ground normal", "ground: {normal: [0, 0, 0]}\n"},
		{"empty ground", "ground: {half_extent: 0}\n"},
		{"bright shadow", "shadow: {color: [0, 0, 0, 1.5]}\n"},
		{"negative ambient", "light: {ambient: [-0.1, 0, 0]}\n"},
		{"flat solid", "solid: {scale: -1}\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseConfig(%q) = %v, want ErrInvalidConfig", tc.yaml, err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TouchScale = -1
	cfg.Solid.Scale = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("Validate() = %v, want two problems", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("LoadConfig = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "scene.yaml")
		if err := os.WriteFile(path, []byte("ground:\n  height: -1.5\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if got := cfg.GroundPlane().D; got != 1.5 {
			t.Errorf("ground plane D = %v, want 1.5", got)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("camera: [1, 2]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestBasicConfig(t *testing.T) {
	cfg := BasicConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("basic config invalid: %v", err)
	}
	if cfg.Scene != SceneBasic || cfg.ClearColor != [3]float64{} {
		t.Errorf("scene %q clear %v, want basic on black", cfg.Scene, cfg.ClearColor)
	}
	if cfg.Camera.Eye != [3]float64{0, 0, 4} || cfg.Camera.Near != 3 || cfg.Camera.Far != 7 {
		t.Errorf("camera = %+v, want eye (0,0,4) and 3..7", cfg.Camera)
	}
}

func TestParseConfigScene(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func() Config
		wantErr bool
	}{
		{"default", "", DefaultConfig, false},
		{"shadow", "scene: shadow\n", DefaultConfig, false},
		{"basic", "scene: basic\n", BasicConfig, false},
		{
			"basic with overrides",
			"scene: basic\ncamera: {far: 9}\n",
			func() Config {
				c := BasicConfig()
				c.Camera.Far = 9
				return c
			},
			false,
		},
		{"unknown", "scene: teapot\n", nil, true},
		{"not a string", "scene: [1]\n", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tc.yaml))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseConfig(%q) = %v, want ErrInvalidConfig", tc.yaml, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if want := tc.want(); got != want {
				t.Errorf("got %+v\nwant %+v", got, want)
			}
		})
	}

	if _, err := PresetConfig("teapot"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("PresetConfig(teapot) = %v, want ErrInvalidConfig", err)
	}
}
