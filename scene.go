package facegraph

// ToneMapping selects how the backend maps HDR lighting results to displayable values.
type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	ACESFilmicToneMapping
)

// String returns the tone mapping's name.
func (tm ToneMapping) String() string {
	switch tm {
	case LinearToneMapping:
		return "linear"
	case ReinhardToneMapping:
		return "reinhard"
	case ACESFilmicToneMapping:
		return "acesfilmic"
	}
	return "none"
}

// ParseToneMapping returns the ToneMapping with the given name, or NoToneMapping.
func ParseToneMapping(name string) ToneMapping {
	for _, tm := range []ToneMapping{LinearToneMapping, ReinhardToneMapping, ACESFilmicToneMapping} {
		if tm.String() == name {
			return tm
		}
	}
	return NoToneMapping
}

// Scene represents a world of sorts, and so owns a root Node that everything drawn hangs from, the skeletons updated
// each frame, and the lighting environment.
type Scene struct {
	Name string
	root *Node

	// Environment is an opaque reflection / irradiance texture handle; nil means no environment lighting.
	Environment *Texture
	Background  *Color
	ToneMapping ToneMapping
	Exposure    float64

	skeletons []*Skeleton
}

// NewScene returns a new Scene with an empty root Node named "Root".
func NewScene(name string) *Scene {
	scene := &Scene{
		Name:        name,
		root:        NewNode("Root"),
		Background:  NewColor(0, 0, 0, 1),
		ToneMapping: ACESFilmicToneMapping,
		Exposure:    1,
	}
	scene.root.scene = scene
	return scene
}

// Root returns the Scene's root Node.
func (scene *Scene) Root() *Node {
	return scene.root
}

// Add parents the given Nodes to the Scene's root.
func (scene *Scene) Add(nodes ...*Node) {
	scene.root.AddChildren(nodes...)
}

// Get is shorthand for Root().Get(path).
func (scene *Scene) Get(path string) *Node {
	return scene.root.Get(path)
}

// RegisterSkeleton adds a Skeleton to the set whose bone matrices are recomputed each frame. Registering the same
// Skeleton twice has no effect.
func (scene *Scene) RegisterSkeleton(skeleton *Skeleton) {
	for _, s := range scene.skeletons {
		if s == skeleton {
			return
		}
	}
	scene.skeletons = append(scene.skeletons, skeleton)
}

// UnregisterSkeleton removes a Skeleton from the per-frame update set.
func (scene *Scene) UnregisterSkeleton(skeleton *Skeleton) {
	for i, s := range scene.skeletons {
		if s == skeleton {
			scene.skeletons = append(scene.skeletons[:i], scene.skeletons[i+1:]...)
			return
		}
	}
}

// Skeletons returns the registered skeletons.
func (scene *Scene) Skeletons() []*Skeleton {
	return scene.skeletons
}

// Drawables returns every Drawable in the Scene, depth-first, including invisible ones.
func (scene *Scene) Drawables() []*Drawable {
	out := []*Drawable{}
	scene.root.Walk(func(n *Node) bool {
		out = append(out, n.drawables...)
		return true
	})
	return out
}
