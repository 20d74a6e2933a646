package facegraph

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Drawable pairs a Geometry with a shared Material and takes its world transform from the Node it's attached to. A
// Drawable bound to a Skeleton is skinned; one whose Geometry has morph targets blends them by MorphInfluences.
type Drawable struct {
	Name     string
	Geometry *Geometry
	Material *Material
	// Program is an opaque handle to the backend program that draws this Drawable. The core passes it through
	// untouched; nil selects the backend's default.
	Program any

	// MorphInfluences holds one weight per Geometry morph target.
	MorphInfluences []float64

	node *Node

	skeleton          *Skeleton
	bindMatrix        mgl64.Mat4
	bindMatrixInverse mgl64.Mat4
}

// NewDrawable returns a Drawable that isn't attached to any Node yet.
func NewDrawable(name string, geometry *Geometry, material *Material) *Drawable {

	drawable := &Drawable{
		Name:              name,
		Geometry:          geometry,
		Material:          material,
		bindMatrix:        mgl64.Ident4(),
		bindMatrixInverse: mgl64.Ident4(),
	}

	if geometry != nil && len(geometry.MorphTargets) > 0 {
		drawable.MorphInfluences = make([]float64, len(geometry.MorphTargets))
	}

	return drawable

}

// NewMesh returns a Drawable attached to a new mesh Node of the same name.
func NewMesh(name string, geometry *Geometry, material *Material) *Drawable {
	drawable := NewDrawable(name, geometry, material)
	newNode(name, NodeTypeMesh).AddDrawable(drawable)
	return drawable
}

// Node returns the Node the Drawable is attached to, or nil.
func (drawable *Drawable) Node() *Node {
	return drawable.node
}

// BindSkeleton skins the Drawable with the given bound Skeleton, capturing the owning Node's current world matrix as the
// bind matrix. The Node must be attached and propagated. The Skeleton still needs registering with the Scene to be
// updated each frame.
func (drawable *Drawable) BindSkeleton(skeleton *Skeleton) error {
	if drawable.node == nil {
		return errors.Wrapf(ErrInvalidState, "drawable %q has no node to take a bind matrix from", drawable.Name)
	}
	return drawable.BindSkeletonWithMatrix(skeleton, drawable.node.worldMatrix)
}

// BindSkeletonWithMatrix skins the Drawable with the given Skeleton using an explicit bind matrix: the transform
// from the Geometry's space to the space the skeleton was bound in.
func (drawable *Drawable) BindSkeletonWithMatrix(skeleton *Skeleton, bindMatrix mgl64.Mat4) error {

	if skeleton == nil || !skeleton.Bound() {
		return errors.Wrapf(ErrInvalidState, "drawable %q: skeleton is nil or unbound", drawable.Name)
	}

	if !IsInvertible(bindMatrix) {
		return errors.Wrapf(ErrInvalidState, "drawable %q: bind matrix is not invertible", drawable.Name)
	}

	drawable.skeleton = skeleton
	drawable.bindMatrix = bindMatrix
	drawable.bindMatrixInverse = bindMatrix.Inv()
	return nil

}

// Skeleton returns the Skeleton skinning the Drawable, or nil.
func (drawable *Drawable) Skeleton() *Skeleton {
	return drawable.skeleton
}

// BindMatrix returns the bind matrix captured by BindSkeleton.
func (drawable *Drawable) BindMatrix() mgl64.Mat4 {
	return drawable.bindMatrix
}

// SetMorphInfluence sets the weight of the named morph target. It returns false if the Geometry has no such target.
func (drawable *Drawable) SetMorphInfluence(name string, weight float64) bool {
	if drawable.Geometry == nil {
		return false
	}
	index := drawable.Geometry.MorphTargetIndex(name)
	if index < 0 {
		return false
	}
	for len(drawable.MorphInfluences) <= index {
		drawable.MorphInfluences = append(drawable.MorphInfluences, 0)
	}
	drawable.MorphInfluences[index] = weight
	return true
}

// MorphInfluence returns the weight of the named morph target, or 0.
func (drawable *Drawable) MorphInfluence(name string) float64 {
	if drawable.Geometry == nil {
		return 0
	}
	index := drawable.Geometry.MorphTargetIndex(name)
	if index < 0 || index >= len(drawable.MorphInfluences) {
		return 0
	}
	return drawable.MorphInfluences[index]
}

// Ready returns true if the Drawable has everything it needs to be drawn this frame.
func (drawable *Drawable) Ready() bool {
	return drawable.Geometry != nil && drawable.Material != nil && drawable.Material.Ready()
}
