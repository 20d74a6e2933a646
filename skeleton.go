package facegraph

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Skeleton groups an ordered list of bones with the inverse of each bone's world matrix at bind time. Bones stay
// ordinary members of the scene graph; the Skeleton only references them.
//
// After ComputeBoneMatrices, BoneMatrices()[i] == bones[i].WorldMatrix() × bindInverse[i]: the transform taking a
// vertex from its bind-pose position to its current world-space position under bone i alone.
type Skeleton struct {
	Name string

	bones        []*Node
	bindInverses []mgl64.Mat4
	boneMatrices []mgl64.Mat4
	bound        bool
}

// NewSkeleton returns an unbound Skeleton.
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{Name: name}
}

// Bind captures the bind pose: each bone's inverse world matrix is stored, and the bone order is fixed from then on.
// The bones' world matrices must be current, so run a propagation pass first.
//
// Bind fails with ErrInvalidArgument if no bones (or a nil bone) are given, and with ErrInvalidState if the Skeleton
// is already bound or any bone's world matrix can't be inverted. Nothing is committed on failure.
func (skeleton *Skeleton) Bind(bones ...*Node) error {

	if err := skeleton.checkBind(bones); err != nil {
		return err
	}

	inverses := make([]mgl64.Mat4, len(bones))

	for i, bone := range bones {
		world := bone.worldMatrix
		assert(!bone.dirty, "bone "+bone.name+" bound before propagation")
		if !IsInvertible(world) {
			return errors.Wrapf(ErrInvalidState, "skeleton %q: world matrix of bone %d (%s) is not invertible", skeleton.Name, i, bone.name)
		}
		inverses[i] = world.Inv()
	}

	skeleton.commit(bones, inverses)
	return nil

}

// BindWithInverses binds the Skeleton using bind inverses supplied by the caller, as stored in a glTF skin, instead of
// capturing them from the bones' current world matrices.
func (skeleton *Skeleton) BindWithInverses(bones []*Node, inverses []mgl64.Mat4) error {

	if err := skeleton.checkBind(bones); err != nil {
		return err
	}

	if len(inverses) != len(bones) {
		return errors.Wrapf(ErrInvalidArgument, "skeleton %q: %d bones but %d inverse bind matrices", skeleton.Name, len(bones), len(inverses))
	}

	for i, inv := range inverses {
		if !IsInvertible(inv) {
			return errors.Wrapf(ErrInvalidState, "skeleton %q: inverse bind matrix %d is degenerate", skeleton.Name, i)
		}
	}

	skeleton.commit(bones, append([]mgl64.Mat4(nil), inverses...))
	return nil

}

func (skeleton *Skeleton) checkBind(bones []*Node) error {

	if skeleton.bound {
		return errors.Wrapf(ErrInvalidState, "skeleton %q is already bound", skeleton.Name)
	}

	if len(bones) == 0 {
		return errors.Wrapf(ErrInvalidArgument, "skeleton %q: no bones to bind", skeleton.Name)
	}

	for i, bone := range bones {
		if bone == nil {
			return errors.Wrapf(ErrInvalidArgument, "skeleton %q: bone %d is nil", skeleton.Name, i)
		}
	}

	return nil

}

func (skeleton *Skeleton) commit(bones []*Node, inverses []mgl64.Mat4) {

	skeleton.bones = append([]*Node(nil), bones...)
	skeleton.bindInverses = inverses
	skeleton.boneMatrices = make([]mgl64.Mat4, len(bones))
	for i := range skeleton.boneMatrices {
		skeleton.boneMatrices[i] = mgl64.Ident4()
	}
	skeleton.bound = true

}

// Bound returns true once Bind or BindWithInverses has succeeded.
func (skeleton *Skeleton) Bound() bool {
	return skeleton.bound
}

// Bones returns the Skeleton's bones in bind order.
func (skeleton *Skeleton) Bones() []*Node {
	return skeleton.bones
}

// Bone returns the first bone with the given name, or nil.
func (skeleton *Skeleton) Bone(name string) *Node {
	for _, b := range skeleton.bones {
		if b.name == name {
			return b
		}
	}
	return nil
}

// BindInverses returns the inverse bind matrices captured at bind time.
func (skeleton *Skeleton) BindInverses() []mgl64.Mat4 {
	return skeleton.bindInverses
}

// ComputeBoneMatrices multiplies each bone's current world matrix by its bind inverse. Call it once per frame, after
// the propagation pass and before drawing; calling it earlier produces bone matrices one frame behind.
//
// The Skeleton must be bound. Debug builds panic otherwise; release builds leave the matrices untouched.
func (skeleton *Skeleton) ComputeBoneMatrices() {

	assert(skeleton.bound, "ComputeBoneMatrices called on unbound skeleton "+skeleton.Name)

	if !skeleton.bound {
		return
	}

	for i, bone := range skeleton.bones {
		skeleton.boneMatrices[i] = bone.worldMatrix.Mul4(skeleton.bindInverses[i])
	}

}

// BoneMatrices returns the bone matrices from the last ComputeBoneMatrices call.
func (skeleton *Skeleton) BoneMatrices() []mgl64.Mat4 {
	return skeleton.boneMatrices
}

// BoneMatrixFloats appends the bone matrices as column-major float32s to dst and returns it. This is the layout of a
// bone texture or uniform array: 16 floats per bone, in bone order.
func (skeleton *Skeleton) BoneMatrixFloats(dst []float32) []float32 {
	for _, m := range skeleton.boneMatrices {
		f := ToFloats(m)
		dst = append(dst, f[:]...)
	}
	return dst
}
