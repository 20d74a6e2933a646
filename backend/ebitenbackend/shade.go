package ebitenbackend

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/openhuman/facegraph"
)

// lightVertex returns the light reaching a vertex with the given world normal. With no lights in the scene, surfaces
// are drawn unlit at full brightness; a vertex without a normal receives every light fully.
func lightVertex(normal mgl32.Vec3, lights []facegraph.LightInfo) mgl32.Vec3 {

	if len(lights) == 0 {
		return mgl32.Vec3{1, 1, 1}
	}

	var total mgl32.Vec3

	for _, light := range lights {

		color := mgl32.Vec3(light.Color)

		switch light.Kind {

		case facegraph.LightAmbient:
			total = total.Add(color)

		case facegraph.LightDirectional:

			if normal == (mgl32.Vec3{}) {
				total = total.Add(color)
				continue
			}

			// Direction is the way the light travels, so surfaces facing against it are lit
			diffuse := -normal.Dot(mgl32.Vec3(light.Direction))
			if diffuse > 0 {
				total = total.Add(color.Mul(diffuse))
			}

		}

	}

	return total

}

// toneMap maps a linear, exposed HDR color into [0, 1] and encodes it as sRGB for display.
func toneMap(c mgl32.Vec3, mode facegraph.ToneMapping, exposure float32) mgl32.Vec3 {

	if mode != facegraph.NoToneMapping {
		c = c.Mul(exposure)
	}

	for i, x := range c {
		switch mode {
		case facegraph.ReinhardToneMapping:
			x = x / (1 + x)
		case facegraph.ACESFilmicToneMapping:
			// Narkowicz's fit of the ACES filmic curve
			x = (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
		}
		c[i] = min(max(x, 0), 1)
	}

	display := facegraph.Color{R: c[0], G: c[1], B: c[2], A: 1}
	display.ConvertTosRGB()

	return mgl32.Vec3{display.R, display.G, display.B}

}

// shadeVertex computes a vertex's final color from the material, the lights and the scene's tone mapping.
func shadeVertex(normal mgl32.Vec3, material *facegraph.Material, ub *facegraph.UniformBlock) (r, g, b, a float32) {

	base := mgl32.Vec3{material.Color.R, material.Color.G, material.Color.B}
	light := lightVertex(normal, ub.Lights)

	lit := mgl32.Vec3{base[0] * light[0], base[1] * light[1], base[2] * light[2]}
	lit = lit.Add(mgl32.Vec3{material.Emissive.R, material.Emissive.G, material.Emissive.B})

	out := toneMap(lit, ub.ToneMapping, ub.Exposure)

	alpha := material.Color.A
	if material.Transparent {
		alpha *= float32(material.Opacity)
	}

	return out[0], out[1], out[2], alpha

}
