package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openhuman/facegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, facegraph.ACESFilmicToneMapping, facegraph.ParseToneMapping(cfg.Scene.ToneMapping))
	assert.InDelta(t, 1.0471975, cfg.Camera.Radians(), 1e-6)
	assert.Contains(t, cfg.EnvironmentNames(), "Venice Sunset")
}

func TestParseOverlaysDefaults(t *testing.T) {

	cfg, err := Parse([]byte(`
window:
  width: 640
scene:
  exposure: 1.2
  environment: blender-forest
materials:
  face:
    roughness: 0.5
  custom:
    color: "#ff0000"
`))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset values keep their defaults")
	assert.Equal(t, 1.2, cfg.Scene.Exposure)
	assert.Equal(t, "acesfilmic", cfg.Scene.ToneMapping)

	env, ok := cfg.Environment(cfg.Scene.Environment)
	require.True(t, ok)
	assert.Equal(t, "Blender Forest", env.Name)

	require.Contains(t, cfg.Materials, "custom")
	require.Contains(t, cfg.Materials, "teeth", "presets missing from the file are kept")
	require.NotNil(t, cfg.Materials["face"].Roughness)
	assert.Equal(t, 0.5, *cfg.Materials["face"].Roughness)

}

func TestParseRejectsInvalid(t *testing.T) {

	for name, doc := range map[string]string{
		"window":      "window: {width: 0}",
		"fov":         "camera: {fov: 180}",
		"clip planes": "camera: {near: 10, far: 1}",
		"tone":        "scene: {toneMapping: filmic}",
		"color":       "scene: {background: red}",
		"environment": "scene: {environment: moon}",
		"slot":        "materials: {face: {textures: {glowMap: a.png}}}",
		"yaml":        "window: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

}

func TestLoad(t *testing.T) {

	path := filepath.Join(t.TempDir(), "face.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: head.glb\ntweak: {enabled: false}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "head.glb", cfg.Model)
	assert.False(t, cfg.Tweak.Enabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

}

func TestMarshalRoundTripKeepsPresets(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().MaterialNames(), cfg.MaterialNames())
}

func TestPresetApplySharesTextures(t *testing.T) {

	cfg := Default()
	textures := TextureSet{}

	face := facegraph.NewMaterial("face")
	cfg.Materials["face"].Apply(face, textures, cfg.TexturePath)

	assert.Equal(t, 0.0, face.Metalness)
	assert.InDelta(t, 1.45, face.IOR, 1e-9)
	assert.True(t, face.DoubleSided)

	roughness := face.Texture(facegraph.SlotRoughness)
	require.NotNil(t, roughness)
	assert.Same(t, roughness, face.Texture(facegraph.SlotMetalness))
	assert.Same(t, roughness, face.Texture(facegraph.SlotClearcoat))
	assert.Equal(t, "assets/facetoy/roughness/metallicRoughness_1.png", roughness.Path)

	assert.False(t, face.Ready(), "textures start unloaded")
	assert.Len(t, textures.Pending(), 4)

	brows := facegraph.NewMaterial("Brows")
	cfg.Materials["Brows"].Apply(brows, textures, nil)
	assert.True(t, brows.Transparent)
	assert.InDelta(t, 0.721212, brows.Opacity, 1e-9)
	assert.InDelta(t, 0x4c/255.0, brows.Color.R, 1e-6)

}
