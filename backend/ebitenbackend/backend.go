// Package ebitenbackend draws facegraph DrawCalls with Ebitengine. Vertices are transformed, skinned, morphed and lit on
// the CPU, then submitted with Image.DrawTriangles. Triangles within a draw are depth sorted back to front; draws
// themselves land in the order the Renderer submits them.
package ebitenbackend

import (
	"image"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
)

// nearW is the smallest clip-space w a vertex may have before its triangle is treated as crossing the camera plane.
const nearW = 1e-5

const maxBatchVertices = ebiten.MaxIndicesCount

type triangle struct {
	indices [3]int
	depth   float32
}

type cachedTexture struct {
	version uint64
	image   *ebiten.Image
}

// Backend implements facegraph.FrameBackend on top of an *ebiten.Image render target.
type Backend struct {
	target *ebiten.Image

	BackfaceCulling bool          // If back faces of single-sided materials are culled. Defaults to true.
	DepthSort       bool          // If triangles within each draw are sorted back to front. Defaults to true.
	Filter          ebiten.Filter // Texture filter. Defaults to linear.

	// TrianglesDrawn is the number of triangles that survived clipping and culling in the last frame.
	TrianglesDrawn int

	textures      map[uint64]*cachedTexture
	usedThisFrame map[uint64]bool
	whiteImage    *ebiten.Image

	vertices  []vertex
	triangles []triangle
	out       []ebiten.Vertex
	indices   []uint16
}

// New returns a Backend drawing to target. A nil target returns facegraph.ErrBackendInit.
func New(target *ebiten.Image) (*Backend, error) {

	if target == nil {
		return nil, errors.Wrap(facegraph.ErrBackendInit, "ebiten backend needs a render target")
	}

	return &Backend{
		target:          target,
		BackfaceCulling: true,
		DepthSort:       true,
		Filter:          ebiten.FilterLinear,
		textures:        map[uint64]*cachedTexture{},
		usedThisFrame:   map[uint64]bool{},
	}, nil

}

// SetTarget changes the image the Backend draws to, usually the screen passed to ebiten.Game.Draw.
func (b *Backend) SetTarget(target *ebiten.Image) {
	b.target = target
}

// Target returns the image the Backend draws to.
func (b *Backend) Target() *ebiten.Image {
	return b.target
}

// BeginFrame clears the target to the scene's background color, if it has one.
func (b *Backend) BeginFrame(scene *facegraph.Scene, camera *facegraph.Camera) error {

	if b.target == nil {
		return errors.Wrap(facegraph.ErrBackendInit, "no render target")
	}

	b.TrianglesDrawn = 0
	clear(b.usedThisFrame)

	if bg := scene.Background; bg != nil {
		r, g, bl, a := bg.RGBA64()
		b.target.Fill(color.RGBA64{
			R: uint16(r * a * 0xffff),
			G: uint16(g * a * 0xffff),
			B: uint16(bl * a * 0xffff),
			A: uint16(a * 0xffff),
		})
	}

	return nil

}

// EndFrame releases GPU images of textures that weren't drawn with this frame.
func (b *Backend) EndFrame() error {
	for id, cached := range b.textures {
		if !b.usedThisFrame[id] {
			cached.image.Deallocate()
			delete(b.textures, id)
		}
	}
	return nil
}

func (b *Backend) white() *ebiten.Image {
	if b.whiteImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		b.whiteImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return b.whiteImage
}

// image returns the ebiten image for a loaded texture, uploading it again if the texture changed since it was cached.
func (b *Backend) image(texture *facegraph.Texture) *ebiten.Image {

	b.usedThisFrame[texture.ID()] = true

	cached, ok := b.textures[texture.ID()]
	if ok && cached.version == texture.Version() {
		return cached.image
	}

	if ok {
		cached.image.Deallocate()
	}

	cached = &cachedTexture{
		version: texture.Version(),
		image:   ebiten.NewImageFromImage(texture.Image()),
	}
	b.textures[texture.ID()] = cached

	return cached.image

}

// Draw transforms, lights and rasterizes one draw call onto the target.
func (b *Backend) Draw(call facegraph.DrawCall) error {

	if b.target == nil {
		return errors.Wrap(facegraph.ErrBackendInit, "no render target")
	}

	geo := call.Geometry
	ub := call.Uniforms

	if geo == nil || ub == nil || ub.Material == nil {
		return errors.Wrap(facegraph.ErrInvalidArgument, "draw call is missing its geometry, uniforms or material")
	}

	if geo.Attribute(facegraph.AttributePosition) == nil {
		return errors.Wrapf(facegraph.ErrInvalidArgument, "geometry %q has no positions", geo.Name)
	}

	b.vertices = transformVertices(call, b.vertices)

	w, h := b.target.Bounds().Dx(), b.target.Bounds().Dy()

	cull := b.BackfaceCulling && !ub.Material.DoubleSided
	b.triangles = collectTriangles(b.vertices, geo.Indices, float32(w), float32(h), cull, b.triangles)

	if b.DepthSort {
		sort.SliceStable(b.triangles, func(i, j int) bool {
			return b.triangles[i].depth > b.triangles[j].depth
		})
	}

	if ub.Material.Wireframe {
		b.drawWireframe(ub, float32(w), float32(h))
		b.TrianglesDrawn += len(b.triangles)
		return nil
	}

	src := b.white()
	address := ebiten.AddressUnsafe
	srcW, srcH := float32(0), float32(0)
	srcX0, srcY0 := float32(1.5), float32(1.5)

	if tex := ub.Textures[facegraph.SlotMap]; tex.Loaded() {
		src = b.image(tex)
		address = ebiten.AddressRepeat
		srcW, srcH = float32(src.Bounds().Dx()), float32(src.Bounds().Dy())
		srcX0, srcY0 = 0, 0
	}

	options := &ebiten.DrawTrianglesOptions{
		Filter:  b.Filter,
		Address: address,
	}

	b.out = b.out[:0]
	b.indices = b.indices[:0]

	for _, tri := range b.triangles {

		for _, index := range tri.indices {

			v := b.vertices[index]
			sx, sy := toScreen(v, float32(w), float32(h))
			r, g, bl, a := shadeVertex(v.normal, ub.Material, ub)

			b.indices = append(b.indices, uint16(len(b.out)))
			b.out = append(b.out, ebiten.Vertex{
				DstX:   sx,
				DstY:   sy,
				SrcX:   srcX0 + v.u*srcW,
				SrcY:   srcY0 + (1-v.v)*srcH,
				ColorR: r,
				ColorG: g,
				ColorB: bl,
				ColorA: a,
			})

		}

		if len(b.out) >= maxBatchVertices-3 {
			b.target.DrawTriangles(b.out, b.indices, src, options)
			b.out = b.out[:0]
			b.indices = b.indices[:0]
		}

	}

	if len(b.out) > 0 {
		b.target.DrawTriangles(b.out, b.indices, src, options)
	}

	b.TrianglesDrawn += len(b.triangles)

	return nil

}

// drawWireframe strokes the edges of the collected triangles, colored by each triangle's first vertex.
func (b *Backend) drawWireframe(ub *facegraph.UniformBlock, width, height float32) {

	for _, tri := range b.triangles {

		first := b.vertices[tri.indices[0]]
		r, g, bl, a := shadeVertex(first.normal, ub.Material, ub)
		a = clampUnit(a)
		clr := color.RGBA{ // Premultiplied
			R: uint8(clampUnit(r) * a * 255),
			G: uint8(clampUnit(g) * a * 255),
			B: uint8(clampUnit(bl) * a * 255),
			A: uint8(a * 255),
		}

		for i := 0; i < 3; i++ {
			x0, y0 := toScreen(b.vertices[tri.indices[i]], width, height)
			x1, y1 := toScreen(b.vertices[tri.indices[(i+1)%3]], width, height)
			vector.StrokeLine(b.target, x0, y0, x1, y1, 1, clr, true)
		}

	}

}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toScreen(v vertex, width, height float32) (float32, float32) {
	x := v.clip[0] / v.clip[3]
	y := v.clip[1] / v.clip[3]
	return (x*0.5 + 0.5) * width, (0.5 - y*0.5) * height
}

// collectTriangles assembles triangles from processed vertices, dropping those that cross the camera plane, lie wholly
// outside the view volume, or (if cull is set) face away from the camera.
func collectTriangles(vertices []vertex, indices []uint32, width, height float32, cull bool, dst []triangle) []triangle {

	dst = dst[:0]

	count := len(vertices)
	if indices != nil {
		count = len(indices)
	}

	for t := 0; t+2 < count; t += 3 {

		tri := triangle{indices: [3]int{t, t + 1, t + 2}}
		if indices != nil {
			tri.indices = [3]int{int(indices[t]), int(indices[t+1]), int(indices[t+2])}
		}

		v0, v1, v2 := vertices[tri.indices[0]], vertices[tri.indices[1]], vertices[tri.indices[2]]

		if v0.clip[3] < nearW || v1.clip[3] < nearW || v2.clip[3] < nearW {
			continue
		}

		if outside(v0, v1, v2) {
			continue
		}

		if cull {
			x0, y0 := toScreen(v0, width, height)
			x1, y1 := toScreen(v1, width, height)
			x2, y2 := toScreen(v2, width, height)
			// Screen space has Y pointing down, so counter-clockwise front faces wind clockwise here
			if (x1-x0)*(y2-y0)-(y1-y0)*(x2-x0) >= 0 {
				continue
			}
		}

		tri.depth = (v0.clip[2]/v0.clip[3] + v1.clip[2]/v1.clip[3] + v2.clip[2]/v2.clip[3]) / 3
		dst = append(dst, tri)

	}

	return dst

}

// outside returns true if all three vertices lie beyond the same clip plane.
func outside(v0, v1, v2 vertex) bool {
	for axis := 0; axis < 3; axis++ {
		if v0.clip[axis] > v0.clip[3] && v1.clip[axis] > v1.clip[3] && v2.clip[axis] > v2.clip[3] {
			return true
		}
		if v0.clip[axis] < -v0.clip[3] && v1.clip[axis] < -v1.clip[3] && v2.clip[axis] < -v2.clip[3] {
			return true
		}
	}
	return false
}
