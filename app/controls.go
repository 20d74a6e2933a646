package app

import (
	"github.com/openhuman/facegraph"
)

// materialFields are the Material parameters exposed on the panel, with their slider ranges.
var materialFields = []struct {
	name          string
	min, max, inc float64
}{
	{"Opacity", 0, 1, 0.0001},
	{"Roughness", 0, 1, 0.0001},
	{"Metalness", 0, 1, 0.0001},
	{"Clearcoat", 0, 1, 0.0001},
	{"ClearcoatRoughness", 0, 1, 0.0001},
	{"SpecularIntensity", 0, 1, 0.0001},
	{"IOR", 1, 2.333, 0.0001},
	{"EnvMapIntensity", 0, 3, 0.0001},
	{"NormalScale", 0, 2, 0.0001},
	{"DisplacementScale", 0, 0.01, 0.00001},
	{"Transparent", 0, 0, 0},
	{"DoubleSided", 0, 0, 0},
}

// AddMaterialControls adds a panel folder, named after the material, editing its color and parameters.
func (ctx *Context) AddMaterialControls(mat *facegraph.Material) error {

	folder := ctx.Panel.Folder(mat.Name)

	if _, err := folder.AddColor("Color", mat.Color); err != nil {
		return err
	}

	for _, f := range materialFields {
		if _, err := folder.Add(mat, f.name, f.min, f.max, f.inc); err != nil {
			return err
		}
	}

	return nil

}

// AddMorphControls adds a panel folder with a slider for each of the drawable's morph targets.
func (ctx *Context) AddMorphControls(drawable *facegraph.Drawable) error {

	if drawable.Geometry == nil || len(drawable.Geometry.MorphTargets) == 0 {
		return nil
	}

	folder := ctx.Panel.Folder(drawable.Name + " morphs")

	for _, target := range drawable.Geometry.MorphTargets {
		name := target.Name
		_, err := folder.AddNumber(name, 0, 1, 0.01,
			func() float64 { return drawable.MorphInfluence(name) },
			func(v float64) { drawable.SetMorphInfluence(name, v) },
		)
		if err != nil {
			return err
		}
	}

	return nil

}

// AddSceneControls adds the "Scene" folder: exposure, tone mapping, environment, auto-rotate and the lights.
func (ctx *Context) AddSceneControls() error {

	folder := ctx.Panel.Folder("Scene")

	if _, err := folder.Add(ctx.Scene, "Exposure", 0, 4, 0.01); err != nil {
		return err
	}

	toneMappings := []string{}
	for _, tm := range []facegraph.ToneMapping{facegraph.NoToneMapping, facegraph.LinearToneMapping, facegraph.ReinhardToneMapping, facegraph.ACESFilmicToneMapping} {
		toneMappings = append(toneMappings, tm.String())
	}

	_, err := folder.AddSelect("ToneMapping", toneMappings,
		func() string { return ctx.Scene.ToneMapping.String() },
		func(s string) { ctx.Scene.ToneMapping = facegraph.ParseToneMapping(s) },
	)
	if err != nil {
		return err
	}

	if envs := ctx.Config.EnvironmentNames(); len(envs) > 0 {
		_, err := folder.AddSelect("Environment", envs,
			func() string {
				if ctx.environment == "" {
					return envs[0]
				}
				return ctx.environment
			},
			func(s string) { ctx.SetEnvironment(s) },
		)
		if err != nil {
			return err
		}
	}

	if _, err := folder.AddColor("Background", ctx.Scene.Background); err != nil {
		return err
	}

	if _, err := folder.Add(&ctx.Config.Camera, "AutoRotate", 0, 0, 0); err != nil {
		return err
	}

	if _, err := folder.Add(&ctx.Config.Camera, "AutoRotateSpeed", -5, 5, 0.01); err != nil {
		return err
	}

	lights := ctx.Panel.Folder("Lights")

	for _, light := range ctx.Scene.Root().Search().ByType(facegraph.NodeTypeLight).Lights() {
		if _, err := lights.AddNumber(light.Name()+" intensity", 0, 10, 0.01,
			func() float64 { return float64(light.Energy) },
			func(v float64) { light.Energy = float32(v) },
		); err != nil {
			return err
		}
		if _, err := lights.AddColor(light.Name()+" color", light.Color); err != nil {
			return err
		}
	}

	return nil

}
