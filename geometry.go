package facegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Attribute names a Geometry's vertex buffers are stored under. Loaders must produce these names.
const (
	AttributePosition   = "position"
	AttributeNormal     = "normal"
	AttributeUV         = "uv"
	AttributeSkinIndex  = "skinIndex"
	AttributeSkinWeight = "skinWeight"
)

// Attribute is a flat vertex buffer with ItemSize components per vertex.
type Attribute struct {
	Name     string
	ItemSize int
	Data     []float32
}

// Count returns the number of vertices in the attribute.
func (attr *Attribute) Count() int {
	if attr.ItemSize == 0 {
		return 0
	}
	return len(attr.Data) / attr.ItemSize
}

// Vec3 returns the attribute's value for the given vertex as a 3D vector. Attributes with fewer than three components
// leave the remaining ones zero.
func (attr *Attribute) Vec3(index int) mgl64.Vec3 {
	v := mgl64.Vec3{}
	for i := 0; i < attr.ItemSize && i < 3; i++ {
		v[i] = float64(attr.Data[index*attr.ItemSize+i])
	}
	return v
}

// MorphTarget is a named set of per-vertex position (and optionally normal) offsets blended in by a Drawable's morph
// influences.
type MorphTarget struct {
	Name      string
	Positions []float32 // 3 floats per vertex
	Normals   []float32 // 3 floats per vertex, or nil
}

// Dimensions represents the minimum and maximum corners of a Geometry's bounding box.
type Dimensions [2]mgl64.Vec3

// Center returns the center point inbetween the two corners of the dimension set.
func (dim Dimensions) Center() mgl64.Vec3 {
	return dim[0].Add(dim[1]).Mul(0.5)
}

func (dim Dimensions) Width() float64 {
	return dim[1][0] - dim[0][0]
}

func (dim Dimensions) Height() float64 {
	return dim[1][1] - dim[0][1]
}

func (dim Dimensions) Depth() float64 {
	return dim[1][2] - dim[0][2]
}

// MaxSpan returns the maximum span out of width, height, and depth.
func (dim Dimensions) MaxSpan() float64 {
	return math.Max(math.Max(dim.Width(), dim.Height()), dim.Depth())
}

// Geometry holds the vertex attributes and triangle indices for a renderable shape. A Geometry can be shared between
// Drawables.
type Geometry struct {
	Name         string
	attributes   map[string]*Attribute
	Indices      []uint32 // Triangle list; nil means the vertices are drawn in order, three at a time
	MorphTargets []MorphTarget
	Dimensions   Dimensions
}

// NewGeometry returns an empty Geometry.
func NewGeometry(name string) *Geometry {
	return &Geometry{
		Name:       name,
		attributes: map[string]*Attribute{},
	}
}

// SetAttribute stores a vertex buffer under the given name, replacing any previous one. Setting the position attribute
// recalculates the Geometry's Dimensions.
func (geometry *Geometry) SetAttribute(name string, itemSize int, data []float32) *Attribute {
	attr := &Attribute{Name: name, ItemSize: itemSize, Data: data}
	geometry.attributes[name] = attr
	if name == AttributePosition {
		geometry.UpdateBounds()
	}
	return attr
}

// Attribute returns the named vertex buffer, or nil.
func (geometry *Geometry) Attribute(name string) *Attribute {
	return geometry.attributes[name]
}

// VertexCount returns the number of vertices in the position attribute.
func (geometry *Geometry) VertexCount() int {
	if pos := geometry.attributes[AttributePosition]; pos != nil {
		return pos.Count()
	}
	return 0
}

// TriangleCount returns the number of triangles the Geometry draws.
func (geometry *Geometry) TriangleCount() int {
	if geometry.Indices != nil {
		return len(geometry.Indices) / 3
	}
	return geometry.VertexCount() / 3
}

// Skinned returns true if the Geometry carries skin indices and weights.
func (geometry *Geometry) Skinned() bool {
	return geometry.attributes[AttributeSkinIndex] != nil && geometry.attributes[AttributeSkinWeight] != nil
}

// MorphTargetIndex returns the index of the morph target with the given name, or -1.
func (geometry *Geometry) MorphTargetIndex(name string) int {
	for i, mt := range geometry.MorphTargets {
		if mt.Name == name {
			return i
		}
	}
	return -1
}

// UpdateBounds recalculates the Geometry's Dimensions from its position attribute.
func (geometry *Geometry) UpdateBounds() {

	pos := geometry.attributes[AttributePosition]
	if pos == nil || pos.Count() == 0 {
		geometry.Dimensions = Dimensions{}
		return
	}

	inf := math.Inf(1)
	dim := Dimensions{{inf, inf, inf}, {-inf, -inf, -inf}}

	for i := 0; i < pos.Count(); i++ {
		v := pos.Vec3(i)
		for axis := 0; axis < 3; axis++ {
			dim[0][axis] = math.Min(dim[0][axis], v[axis])
			dim[1][axis] = math.Max(dim[1][axis], v[axis])
		}
	}

	geometry.Dimensions = dim

}

// Validate checks that the Geometry's buffers agree with each other: the position attribute exists with 3 components,
// every other attribute has the same vertex count, indices are in range and form whole triangles, and morph targets
// cover every vertex.
func (geometry *Geometry) Validate() error {

	pos := geometry.attributes[AttributePosition]
	if pos == nil {
		return errors.Errorf("geometry %q has no %s attribute", geometry.Name, AttributePosition)
	}
	if pos.ItemSize != 3 {
		return errors.Errorf("geometry %q: %s item size is %d, not 3", geometry.Name, AttributePosition, pos.ItemSize)
	}

	count := pos.Count()

	for name, attr := range geometry.attributes {
		if attr.ItemSize <= 0 || len(attr.Data)%attr.ItemSize != 0 {
			return errors.Errorf("geometry %q: attribute %s has %d floats, not a multiple of %d", geometry.Name, name, len(attr.Data), attr.ItemSize)
		}
		if attr.Count() != count {
			return errors.Errorf("geometry %q: attribute %s has %d vertices, position has %d", geometry.Name, name, attr.Count(), count)
		}
	}

	if geometry.Indices != nil {
		if len(geometry.Indices)%3 != 0 {
			return errors.Errorf("geometry %q: %d indices don't form whole triangles", geometry.Name, len(geometry.Indices))
		}
		for _, idx := range geometry.Indices {
			if int(idx) >= count {
				return errors.Errorf("geometry %q: index %d out of range for %d vertices", geometry.Name, idx, count)
			}
		}
	} else if count%3 != 0 {
		return errors.Errorf("geometry %q: %d unindexed vertices don't form whole triangles", geometry.Name, count)
	}

	for _, mt := range geometry.MorphTargets {
		if len(mt.Positions) != count*3 {
			return errors.Errorf("geometry %q: morph target %q has %d position floats, want %d", geometry.Name, mt.Name, len(mt.Positions), count*3)
		}
		if mt.Normals != nil && len(mt.Normals) != count*3 {
			return errors.Errorf("geometry %q: morph target %q has %d normal floats, want %d", geometry.Name, mt.Name, len(mt.Normals), count*3)
		}
	}

	return nil

}
