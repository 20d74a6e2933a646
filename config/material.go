package config

import (
	"path"

	"github.com/openhuman/facegraph"
)

// MaterialPreset overrides some of a Material's parameters. Unset (nil) fields leave the Material as loaded.
type MaterialPreset struct {
	Color              *string  `yaml:"color,omitempty"`
	Emissive           *string  `yaml:"emissive,omitempty"`
	Opacity            *float64 `yaml:"opacity,omitempty"`
	Roughness          *float64 `yaml:"roughness,omitempty"`
	Metalness          *float64 `yaml:"metalness,omitempty"`
	Clearcoat          *float64 `yaml:"clearcoat,omitempty"`
	ClearcoatRoughness *float64 `yaml:"clearcoatRoughness,omitempty"`
	SpecularIntensity  *float64 `yaml:"specularIntensity,omitempty"`
	IOR                *float64 `yaml:"ior,omitempty"`
	EnvMapIntensity    *float64 `yaml:"envMapIntensity,omitempty"`
	NormalScale        *float64 `yaml:"normalScale,omitempty"`
	DisplacementScale  *float64 `yaml:"displacementScale,omitempty"`
	DisplacementBias   *float64 `yaml:"displacementBias,omitempty"`
	Transparent        *bool    `yaml:"transparent,omitempty"`
	DoubleSided        *bool    `yaml:"doubleSided,omitempty"`

	// Textures maps texture slot names (map, normalMap, roughnessMap...) to image paths.
	Textures map[string]string `yaml:"textures,omitempty"`
}

// TextureSet shares one Texture handle between every slot and material that references the same image path.
type TextureSet map[string]*facegraph.Texture

// Get returns the Texture for the path, creating an unloaded one on first use.
func (set TextureSet) Get(p string) *facegraph.Texture {
	if tex, ok := set[p]; ok {
		return tex
	}
	tex := facegraph.NewTexture(path.Base(p))
	tex.Path = p
	set[p] = tex
	return tex
}

// Pending returns the set's textures that haven't loaded yet.
func (set TextureSet) Pending() []*facegraph.Texture {
	out := []*facegraph.Texture{}
	for _, tex := range set {
		if !tex.Loaded() {
			out = append(out, tex)
		}
	}
	return out
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// Apply writes the preset's values onto the Material. Texture paths are resolved with resolve (which may be nil) and
// fetched from textures, so they're shared with other presets using the same image.
func (preset MaterialPreset) Apply(material *facegraph.Material, textures TextureSet, resolve func(string) string) {

	if preset.Color != nil {
		c := facegraph.NewColorFromHex(*preset.Color)
		material.Color.SetRGBA(c.R, c.G, c.B, material.Color.A)
	}

	if preset.Emissive != nil {
		c := facegraph.NewColorFromHex(*preset.Emissive)
		material.Emissive.SetRGBA(c.R, c.G, c.B, 1)
	}

	setFloat(&material.Opacity, preset.Opacity)
	setFloat(&material.Roughness, preset.Roughness)
	setFloat(&material.Metalness, preset.Metalness)
	setFloat(&material.Clearcoat, preset.Clearcoat)
	setFloat(&material.ClearcoatRoughness, preset.ClearcoatRoughness)
	setFloat(&material.SpecularIntensity, preset.SpecularIntensity)
	setFloat(&material.IOR, preset.IOR)
	setFloat(&material.EnvMapIntensity, preset.EnvMapIntensity)
	setFloat(&material.NormalScale, preset.NormalScale)
	setFloat(&material.DisplacementScale, preset.DisplacementScale)
	setFloat(&material.DisplacementBias, preset.DisplacementBias)

	if preset.Transparent != nil {
		material.Transparent = *preset.Transparent
	}

	if preset.DoubleSided != nil {
		material.DoubleSided = *preset.DoubleSided
	}

	for slot, p := range preset.Textures {
		if resolve != nil {
			p = resolve(p)
		}
		material.SetTexture(facegraph.TextureSlot(slot), textures.Get(p))
	}

}
