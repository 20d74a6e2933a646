package facegraph

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// newTwoBoneRig returns a root with a two-bone chain: bone0 at (0, 0, 0) and bone1 one unit above it.
func newTwoBoneRig() (root, bone0, bone1 *Node) {

	root = NewNode("root")
	bone0 = NewBone("bone0")
	bone1 = NewBone("bone1")

	root.AddChildren(bone0)
	bone0.AddChildren(bone1)
	bone1.SetLocalPosition(mgl64.Vec3{0, 1, 0})

	root.UpdateWorldMatrix(false)

	return root, bone0, bone1

}

func TestSkeletonBindRoundTrip(t *testing.T) {

	root := NewNode("root")
	root.SetLocalTransform(mgl64.Vec3{3, -1, 2}, NewQuaternionAxisAngle(mgl64.Vec3{1, 1, 0}, 0.7), mgl64.Vec3{1, 2, 0.5})

	bones := []*Node{NewBone("a"), NewBone("b"), NewBone("c")}
	root.AddChildren(bones[0])
	bones[0].AddChildren(bones[1])
	bones[1].AddChildren(bones[2])

	for i, b := range bones {
		b.SetLocalTransform(mgl64.Vec3{0, float64(i) + 0.5, 0.2}, NewQuaternionAxisAngle(mgl64.Vec3{0, 0, 1}, 0.3*float64(i)), mgl64.Vec3{1, 1.5, 1})
	}

	root.UpdateWorldMatrix(false)

	skeleton := NewSkeleton("rig")
	if err := skeleton.Bind(bones...); err != nil {
		t.Fatal(err)
	}

	skeleton.ComputeBoneMatrices()

	for i, m := range skeleton.BoneMatrices() {
		if !IsIdentity(m) {
			t.Fatal("bone", i, "matrix at rest pose is not identity:\n", MatrixString(m))
		}
	}

}

func TestSkeletonTwoBoneSkinning(t *testing.T) {

	root, bone0, bone1 := newTwoBoneRig()

	skeleton := NewSkeleton("rig")
	if err := skeleton.Bind(bone0, bone1); err != nil {
		t.Fatal(err)
	}

	delta := NewQuaternionAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	bone1.SetLocalRotation(delta)

	root.UpdateWorldMatrix(false)
	skeleton.ComputeBoneMatrices()

	matrices := skeleton.BoneMatrices()

	if !IsIdentity(matrices[0]) {
		t.Fatal("unmoved bone should keep an identity bone matrix")
	}

	// Rotating about the joint: translate to it, rotate, translate back.
	expected := mgl64.Translate3D(0, 1, 0).Mul4(delta.Mat4()).Mul4(mgl64.Translate3D(0, -1, 0))
	if !MatrixEquals(matrices[1], expected) {
		t.Fatal("bone1 matrix mismatch:\n", MatrixString(matrices[1]), "\nexpected\n", MatrixString(expected))
	}

	// A vertex one unit to the right of the joint swings up above it.
	vertex := mgl64.Vec3{1, 1, 0}

	full := SkinVertex(vertex, []int{0, 1}, []float64{0, 1}, matrices)
	if !full.ApproxEqualThreshold(mgl64.Vec3{0, 2, 0}, matrixEpsilon) {
		t.Fatal("fully weighted vertex skinned to", full)
	}

	half := SkinVertex(vertex, []int{0, 1}, []float64{0.5, 0.5}, matrices)
	if !half.ApproxEqualThreshold(mgl64.Vec3{0.5, 1.5, 0}, matrixEpsilon) {
		t.Fatal("half weighted vertex skinned to", half)
	}

}

func TestSkeletonBindErrors(t *testing.T) {

	_, bone0, bone1 := newTwoBoneRig()

	if err := NewSkeleton("empty").Bind(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("binding no bones should be ErrInvalidArgument, got", err)
	}

	if err := NewSkeleton("nil").Bind(bone0, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("binding a nil bone should be ErrInvalidArgument, got", err)
	}

	skeleton := NewSkeleton("twice")
	if err := skeleton.Bind(bone0, bone1); err != nil {
		t.Fatal(err)
	}
	if err := skeleton.Bind(bone0); !errors.Is(err, ErrInvalidState) {
		t.Fatal("rebinding should be ErrInvalidState, got", err)
	}
	if len(skeleton.Bones()) != 2 {
		t.Fatal("a failed rebind changed the bone list")
	}

	tiny := NewBone("tiny")
	tiny.SetLocalScale(mgl64.Vec3{1e-5, 1e-5, 1e-5})
	tiny.UpdateWorldMatrix(false)

	degenerate := NewSkeleton("degenerate")
	if err := degenerate.Bind(bone0, tiny); !errors.Is(err, ErrInvalidState) {
		t.Fatal("binding a non-invertible bone should be ErrInvalidState, got", err)
	}
	if degenerate.Bound() || len(degenerate.BindInverses()) != 0 {
		t.Fatal("a failed bind committed state")
	}

}

func TestComputeBoneMatricesUnboundIsSafe(t *testing.T) {

	if Debug {
		t.Skip("unbound skeletons panic in debug builds")
	}

	skeleton := NewSkeleton("unbound")
	skeleton.ComputeBoneMatrices()

	if len(skeleton.BoneMatrices()) != 0 {
		t.Fatal("unbound skeleton should not produce bone matrices")
	}

}

func TestBoneMatricesBeforePropagationAreOneFrameStale(t *testing.T) {

	root, bone0, bone1 := newTwoBoneRig()

	skeleton := NewSkeleton("rig")
	skeleton.Bind(bone0, bone1)

	bone1.SetLocalRotation(NewQuaternionAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2))

	// Wrong order: skinning before propagation sees the previous pose.
	skeleton.ComputeBoneMatrices()
	if !IsIdentity(skeleton.BoneMatrices()[1]) {
		t.Fatal("expected the stale rest pose before propagation")
	}

	root.UpdateWorldMatrix(false)
	skeleton.ComputeBoneMatrices()
	if IsIdentity(skeleton.BoneMatrices()[1]) {
		t.Fatal("expected the new pose after propagation")
	}

}

func TestSkeletonDeterministic(t *testing.T) {

	root, bone0, bone1 := newTwoBoneRig()
	skeleton := NewSkeleton("rig")
	skeleton.Bind(bone0, bone1)

	bone0.SetLocalRotation(NewQuaternionAxisAngle(mgl64.Vec3{1, 0.2, 0}, 0.77))
	root.UpdateWorldMatrix(false)

	skeleton.ComputeBoneMatrices()
	first := skeleton.BoneMatrixFloats(nil)
	skeleton.ComputeBoneMatrices()
	second := skeleton.BoneMatrixFloats(nil)

	if len(first) != 32 {
		t.Fatal("expected 16 floats per bone, got", len(first))
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatal("bone matrices are not reproducible at float", i)
		}
	}

}

func TestBindWithInverses(t *testing.T) {

	_, bone0, bone1 := newTwoBoneRig()

	skeleton := NewSkeleton("gltf")
	if err := skeleton.BindWithInverses([]*Node{bone0, bone1}, []mgl64.Mat4{mgl64.Ident4()}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("mismatched inverse count should be ErrInvalidArgument, got", err)
	}

	if err := skeleton.BindWithInverses([]*Node{bone0, bone1}, []mgl64.Mat4{mgl64.Ident4(), mgl64.Translate3D(0, -1, 0)}); err != nil {
		t.Fatal(err)
	}

	skeleton.ComputeBoneMatrices()
	for i, m := range skeleton.BoneMatrices() {
		if !IsIdentity(m) {
			t.Fatal("bone", i, "should be identity with matching inverse bind matrices")
		}
	}

}

func TestTwoBoneWeights(t *testing.T) {

	indices, weights := TwoBoneWeights(2.5, 1, 5)
	if indices != [2]int{2, 3} || math.Abs(weights[0]-0.5) > 1e-12 || math.Abs(weights[1]-0.5) > 1e-12 {
		t.Fatal("unexpected weights mid-segment:", indices, weights)
	}

	indices, weights = TwoBoneWeights(5, 1, 5)
	if indices != [2]int{5, 5} || weights != [2]float64{1, 0} {
		t.Fatal("top of the column should be fully weighted to the last bone:", indices, weights)
	}

	geometry := NewCylinderGeometry(1, 1, 4, 6, 4, true)
	AssignTwoBoneSkin(geometry, 2, 1, 4)

	if !geometry.Skinned() {
		t.Fatal("cylinder should be skinned")
	}

	if err := geometry.Validate(); err != nil {
		t.Fatal(err)
	}

	w := geometry.Attribute(AttributeSkinWeight)
	for i := 0; i < w.Count(); i++ {
		sum := w.Data[i*4] + w.Data[i*4+1] + w.Data[i*4+2] + w.Data[i*4+3]
		if math.Abs(float64(sum)-1) > 1e-5 {
			t.Fatal("vertex", i, "weights sum to", sum)
		}
	}

}
