package config

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }
func b(v bool) *bool       { return &v }

// Default returns the built-in configuration for the face viewer.
func Default() *Config {

	return &Config{

		Window: Window{
			Title:  "facegraph",
			Width:  1280,
			Height: 720,
		},

		Camera: Camera{
			FieldOfView:     60,
			Near:            0.1,
			Far:             10000,
			Position:        [3]float64{0, 0, 3},
			AutoRotateSpeed: 0.5,
		},

		Scene: Scene{
			Background:  "#191919",
			ToneMapping: "acesfilmic",
			Exposure:    0.4,
			Environment: "Venice Sunset",
		},

		Lights: Lights{
			AmbientColor:     "#FFFFFF",
			AmbientIntensity: 0.84,
			DirectColor:      "#FFFFFF",
			DirectIntensity:  2.2,
			DirectPosition:   [3]float64{0.5, 0, 0.866},
		},

		Model:       "assets/model/FullRender.glb",
		TextureRoot: "assets/facetoy",

		Environments: []Environment{
			{ID: "", Name: "None"},
			{ID: "venice-sunset", Name: "Venice Sunset", Path: "assets/venice_sunset_1k.png"},
			{ID: "footprint-court", Name: "HDRI", Path: "assets/HDRI.png"},
			{ID: "blender-forest", Name: "Blender Forest", Path: "assets/forest.png"},
			{ID: "blender-interior", Name: "Blender Interior", Path: "assets/interior.png"},
		},

		Materials: map[string]MaterialPreset{
			"face": {
				Metalness:          f(0),
				NormalScale:        f(0.7),
				Clearcoat:          f(0.04848499968647957),
				ClearcoatRoughness: f(0.12393900007009506),
				SpecularIntensity:  f(1),
				IOR:                f(1.45),
				DoubleSided:        b(true),
				Textures: map[string]string{
					"map":                  "baseColor/baseColor_1.png",
					"normalMap":            "normal/normal_1.png",
					"roughnessMap":         "roughness/metallicRoughness_1.png",
					"metalnessMap":         "roughness/metallicRoughness_1.png",
					"clearcoatMap":         "roughness/metallicRoughness_1.png",
					"specularIntensityMap": "specular/specular_2.png",
				},
			},
			"Brows": {
				Color:       s("#4c4c4c"),
				Opacity:     f(0.721212),
				Transparent: b(true),
				Metalness:   f(0),
				Roughness:   f(1),
				IOR:         f(1.45),
				DoubleSided: b(true),
			},
			"eyewet": {
				Color:       s("#000000"),
				Opacity:     f(0.1),
				Transparent: b(true),
				Roughness:   f(0.2030302882194519),
				Metalness:   f(0),
				IOR:         f(1.45),
				DoubleSided: b(true),
			},
			"lens": {
				Color:             s("#bcbcbc"),
				Opacity:           f(0.3),
				Transparent:       b(true),
				Roughness:         f(0.06363636),
				Metalness:         f(1),
				SpecularIntensity: f(1),
				IOR:               f(1.45),
				DoubleSided:       b(true),
				Textures: map[string]string{
					"normalMap":            "normal/normal_lens.png",
					"specularIntensityMap": "specular/specular_1.png",
				},
			},
			"lashes": {
				Color:       s("#4c4c4c"),
				Opacity:     f(0.721212),
				Transparent: b(true),
				Metalness:   f(1),
				Roughness:   f(1),
				IOR:         f(1.45),
				DoubleSided: b(true),
			},
			"eyeball": {
				Metalness:         f(0),
				Roughness:         f(1),
				IOR:               f(1.45),
				SpecularIntensity: f(1),
				DisplacementScale: f(0.0001),
				DisplacementBias:  f(0.0001),
				DoubleSided:       b(true),
				Textures: map[string]string{
					"map":                  "baseColor/baseColor_eyeball.png",
					"normalMap":            "normal/normal_eyeball.png",
					"roughnessMap":         "roughness/roughness_eyeball.png",
					"metalnessMap":         "roughness/roughness_eyeball.png",
					"specularIntensityMap": "specular/specular_eyeball.png",
					"displacementMap":      "displacement/displacement_eyeball.png",
				},
			},
			"teeth": {
				Color:       s("#ffffff"),
				Metalness:   f(0),
				Roughness:   f(0.3227272927761078),
				IOR:         f(1.45),
				DoubleSided: b(true),
				Textures: map[string]string{
					"map":          "baseColor/baseColor_3.png",
					"roughnessMap": "roughness/roughness_teeth.png",
					"normalMap":    "normal/normal_4.png",
				},
			},
			"tongue": {
				Color:             s("#ffffff"),
				Metalness:         f(0),
				Roughness:         f(0.3),
				SpecularIntensity: f(0.6),
				IOR:               f(1.45),
				DoubleSided:       b(true),
				Textures: map[string]string{
					"map":          "baseColor/baseColor_4.png",
					"roughnessMap": "roughness/roughness_tongue.png",
					"normalMap":    "normal/normal_5.png",
				},
			},
		},

		Tweak: Tweak{
			Enabled: true,
			Address: "127.0.0.1:8090",
		},
	}

}
