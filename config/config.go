// Package config holds the demo configuration: window, camera, lighting, environments and per-part material presets.
// Configuration is YAML; Load overlays a file on top of Default, so a file only needs the values it changes.
package config

import (
	"math"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type Camera struct {
	FieldOfView     float64    `yaml:"fov"` // Vertical, in degrees
	Near            float64    `yaml:"near"`
	Far             float64    `yaml:"far"`
	Position        [3]float64 `yaml:"position"`
	Target          [3]float64 `yaml:"target"`
	AutoRotate      bool       `yaml:"autoRotate"`
	AutoRotateSpeed float64    `yaml:"autoRotateSpeed"` // Radians per second
}

// Radians returns the camera's vertical field of view in radians.
func (c Camera) Radians() float64 {
	return c.FieldOfView * math.Pi / 180
}

type Scene struct {
	Background  string  `yaml:"background"` // Hex color
	ToneMapping string  `yaml:"toneMapping"`
	Exposure    float64 `yaml:"exposure"`
	Environment string  `yaml:"environment"` // Name of one of the Environments, or "" for none
}

type Lights struct {
	AmbientColor     string     `yaml:"ambientColor"`
	AmbientIntensity float64    `yaml:"ambientIntensity"`
	DirectColor      string     `yaml:"directColor"`
	DirectIntensity  float64    `yaml:"directIntensity"`
	DirectPosition   [3]float64 `yaml:"directPosition"` // Relative to the camera; the light shines towards the origin
}

type Environment struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type Tweak struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Config is the full demo configuration.
type Config struct {
	Window       Window                    `yaml:"window"`
	Camera       Camera                    `yaml:"camera"`
	Scene        Scene                     `yaml:"scene"`
	Lights       Lights                    `yaml:"lights"`
	Model        string                    `yaml:"model"`       // glTF file to load
	TextureRoot  string                    `yaml:"textureRoot"` // Directory texture paths are relative to
	Environments []Environment             `yaml:"environments"`
	Materials    map[string]MaterialPreset `yaml:"materials"` // Keyed by material name
	Tweak        Tweak                     `yaml:"tweak"`
}

// Load reads a YAML configuration file over the defaults.
func Load(filename string) (*Config, error) {

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %q", filename)
	}

	return cfg, nil

}

// Parse decodes YAML configuration over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decoding YAML")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil

}

// Marshal encodes the configuration as YAML.
func (cfg *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate checks that the configuration describes a usable window, camera and scene.
func (cfg *Config) Validate() error {

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height)
	}

	if cfg.Camera.FieldOfView <= 0 || cfg.Camera.FieldOfView >= 180 {
		return errors.Errorf("camera fov %v must be between 0 and 180 degrees", cfg.Camera.FieldOfView)
	}

	if cfg.Camera.Near <= 0 || cfg.Camera.Near >= cfg.Camera.Far {
		return errors.Errorf("camera clip planes near=%v far=%v must satisfy 0 < near < far", cfg.Camera.Near, cfg.Camera.Far)
	}

	if tm := cfg.Scene.ToneMapping; tm != "" && facegraph.ParseToneMapping(tm).String() != tm {
		return errors.Errorf("unknown tone mapping %q", tm)
	}

	if cfg.Scene.Exposure < 0 {
		return errors.Errorf("exposure %v must not be negative", cfg.Scene.Exposure)
	}

	for _, c := range []string{cfg.Scene.Background, cfg.Lights.AmbientColor, cfg.Lights.DirectColor} {
		if c != "" && !hexColor.MatchString(c) {
			return errors.Errorf("%q is not a hex color", c)
		}
	}

	if env := cfg.Scene.Environment; env != "" {
		if _, ok := cfg.Environment(env); !ok {
			return errors.Errorf("unknown environment %q", env)
		}
	}

	for name, preset := range cfg.Materials {
		if preset.Color != nil && !hexColor.MatchString(*preset.Color) {
			return errors.Errorf("material %q: %q is not a hex color", name, *preset.Color)
		}
		for slot := range preset.Textures {
			if !validSlot(facegraph.TextureSlot(slot)) {
				return errors.Errorf("material %q: unknown texture slot %q", name, slot)
			}
		}
	}

	return nil

}

func validSlot(slot facegraph.TextureSlot) bool {
	for _, s := range facegraph.TextureSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Environment returns the environment with the given name or ID.
func (cfg *Config) Environment(name string) (Environment, bool) {
	for _, env := range cfg.Environments {
		if env.Name == name || (env.ID != "" && env.ID == name) {
			return env, true
		}
	}
	return Environment{}, false
}

// EnvironmentNames returns the names of every configured environment, in order.
func (cfg *Config) EnvironmentNames() []string {
	names := make([]string, len(cfg.Environments))
	for i, env := range cfg.Environments {
		names[i] = env.Name
	}
	return names
}

// MaterialNames returns the names of the configured material presets, sorted.
func (cfg *Config) MaterialNames() []string {
	names := make([]string, 0, len(cfg.Materials))
	for name := range cfg.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TexturePath resolves a texture path from the configuration against TextureRoot.
func (cfg *Config) TexturePath(p string) string {
	if cfg.TextureRoot == "" || path.IsAbs(p) {
		return p
	}
	return path.Join(cfg.TextureRoot, p)
}
