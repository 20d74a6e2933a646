package facegraph

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DrawCall is one submission to a Backend: a Geometry, the program to draw it with, and its uniforms.
type DrawCall struct {
	Drawable *Drawable
	Geometry *Geometry
	Program  any
	Uniforms *UniformBlock
}

// Backend is the graphics API the Renderer submits draws to.
type Backend interface {
	Draw(call DrawCall) error
}

// FrameBackend is implemented by backends that need to know where a frame starts and ends, to clear targets or flush
// batches for example.
type FrameBackend interface {
	Backend
	BeginFrame(scene *Scene, camera *Camera) error
	EndFrame() error
}

// DebugInfo contains information regarding the last rendered frame.
type DebugInfo struct {
	FrameTime        time.Duration // Time taken by the last Render call
	TotalDrawables   int           // Drawables found on visible nodes
	DrawnDrawables   int           // Drawables submitted to the backend
	SkippedDrawables int           // Drawables skipped because their geometry, material or textures weren't ready
	SkinnedDrawables int
	Skeletons        int // Skeletons whose bone matrices were recomputed
	Lights           int
	TotalTriangles   int // Triangles submitted to the backend
}

// Renderer turns a Scene and a Camera into an ordered sequence of draw calls. It holds no state between frames other
// than DebugInfo.
type Renderer struct {
	backend   Backend
	DebugInfo DebugInfo
}

// NewRenderer returns a Renderer drawing through the given backend. A nil backend returns ErrBackendInit.
func NewRenderer(backend Backend) (*Renderer, error) {
	if backend == nil {
		return nil, errors.Wrap(ErrBackendInit, "no backend given")
	}
	return &Renderer{backend: backend}, nil
}

// Backend returns the Renderer's backend.
func (renderer *Renderer) Backend() Backend {
	return renderer.backend
}

// Render draws the scene as seen from camera. In order, it:
//
//  1. propagates transforms from the scene root, and from the camera's own root if the camera isn't in the scene,
//  2. recomputes bone matrices for every registered, bound Skeleton,
//  3. walks the graph depth-first, skipping invisible subtrees, collecting lights and Drawables,
//  4. assembles a UniformBlock for each Drawable and submits it to the backend in traversal order.
//
// Drawables whose Material references a Texture that hasn't loaded are skipped for this frame without error. A backend
// error stops the frame and is returned wrapped.
func (renderer *Renderer) Render(scene *Scene, camera *Camera) error {

	if scene == nil || camera == nil {
		return errors.Wrap(ErrInvalidArgument, "render needs a scene and a camera")
	}

	start := time.Now()
	renderer.DebugInfo = DebugInfo{}

	root := scene.root
	cameraRoot := camera.Root()

	root.UpdateWorldMatrix(false)
	if cameraRoot != root {
		cameraRoot.UpdateWorldMatrix(false)
	}

	for _, skeleton := range scene.skeletons {
		if skeleton.Bound() {
			skeleton.ComputeBoneMatrices()
			renderer.DebugInfo.Skeletons++
		}
	}

	frame := &frameUniforms{
		view:  camera.ViewMatrix(),
		scene: scene,
	}
	frame.view32 = ToFloats(frame.view)
	frame.projection = ToFloats(camera.Projection())
	cp := camera.worldMatrix.Col(3)
	frame.cameraPos = mgl32.Vec3{float32(cp[0]), float32(cp[1]), float32(cp[2])}

	drawables := []*Drawable{}

	collect := func(n *Node) bool {
		if !n.visible {
			return false
		}
		if n.light != nil && n.light.On {
			frame.lights = append(frame.lights, n.light.info())
		}
		drawables = append(drawables, n.drawables...)
		return true
	}

	root.Walk(collect)
	if cameraRoot != root {
		cameraRoot.Walk(collect)
	}

	renderer.DebugInfo.Lights = len(frame.lights)
	renderer.DebugInfo.TotalDrawables = len(drawables)

	if fb, ok := renderer.backend.(FrameBackend); ok {
		if err := fb.BeginFrame(scene, camera); err != nil {
			return errors.Wrap(err, "begin frame")
		}
	}

	for _, drawable := range drawables {

		if !drawable.Ready() {
			renderer.DebugInfo.SkippedDrawables++
			continue
		}

		uniforms := assembleUniforms(frame, drawable)

		call := DrawCall{
			Drawable: drawable,
			Geometry: drawable.Geometry,
			Program:  drawable.Program,
			Uniforms: uniforms,
		}

		if err := renderer.backend.Draw(call); err != nil {
			return errors.Wrapf(err, "drawing %q", drawable.Name)
		}

		renderer.DebugInfo.DrawnDrawables++
		renderer.DebugInfo.TotalTriangles += drawable.Geometry.TriangleCount()
		if uniforms.Skinned {
			renderer.DebugInfo.SkinnedDrawables++
		}

	}

	if fb, ok := renderer.backend.(FrameBackend); ok {
		if err := fb.EndFrame(); err != nil {
			return errors.Wrap(err, "end frame")
		}
	}

	renderer.DebugInfo.FrameTime = time.Since(start)

	return nil

}
