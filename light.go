package facegraph

import "github.com/go-gl/mathgl/mgl64"

// LightKind distinguishes the kinds of Light.
type LightKind int

const (
	LightAmbient     LightKind = iota // Colors every surface evenly
	LightDirectional                  // Shines down the light Node's -Z axis from infinitely far away
)

// Light is a Node capability that emits light. Lights are collected while drawing and passed to the backend in each
// uniform block; a directional light's direction follows its Node, so a light parented to the camera moves with it.
type Light struct {
	*Node
	Kind  LightKind
	Color *Color // Color is the color of the Light.
	// Energy is the overall energy of the Light. Internally there's no difference between a brighter color and a
	// higher energy, but this is here for convenience / adherance to GLTF / 3D modelers.
	Energy float32
	On     bool // If the light is on and contributing to the scene.
}

// NewAmbientLight returns a new ambient Light.
func NewAmbientLight(name string, r, g, b, energy float32) *Light {
	return newLight(name, NodeTypeAmbientLight, LightAmbient, r, g, b, energy)
}

// NewDirectionalLight returns a new directional Light. It points down its Node's -Z axis; position or rotate its Node to
// aim it.
func NewDirectionalLight(name string, r, g, b, energy float32) *Light {
	return newLight(name, NodeTypeDirectionalLight, LightDirectional, r, g, b, energy)
}

func newLight(name string, nodeType NodeType, kind LightKind, r, g, b, energy float32) *Light {
	light := &Light{
		Node:   newNode(name, nodeType),
		Kind:   kind,
		Color:  NewColor(r, g, b, 1),
		Energy: energy,
		On:     true,
	}
	light.Node.light = light
	return light
}

// Direction returns the world-space direction the light travels in: the Node's -Z axis for directional lights. For
// lights whose Node sits off the origin with no rotation (the common "position.set(x, y, z)" setup), the light
// instead travels from that position towards the origin.
func (light *Light) Direction() mgl64.Vec3 {

	world := light.worldMatrix

	if light.rotation == mgl64.QuatIdent() && light.position.Len() > 0 {
		return world.Col(3).Vec3().Mul(-1).Normalize()
	}

	return world.Mul4x1(mgl64.Vec4{0, 0, -1, 0}).Vec3().Normalize()

}

// LightInfo is a light's contribution as seen by the backend for one frame.
type LightInfo struct {
	Kind      LightKind
	Color     [3]float32 // Color premultiplied by energy
	Direction [3]float32 // World-space travel direction; zero for ambient lights
}

func (light *Light) info() LightInfo {

	li := LightInfo{
		Kind:  light.Kind,
		Color: [3]float32{light.Color.R * light.Energy, light.Color.G * light.Energy, light.Color.B * light.Energy},
	}

	if light.Kind == LightDirectional {
		d := light.Direction()
		li.Direction = [3]float32{float32(d[0]), float32(d[1]), float32(d[2])}
	}

	return li

}
