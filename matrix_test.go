package facegraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func BenchmarkComposeTRS(b *testing.B) {

	b.ReportAllocs()

	pos := mgl64.Vec3{1, 4, -12}
	rot := NewQuaternionAxisAngle(mgl64.Vec3{0, 1, 0.2}, 0.24)
	scale := mgl64.Vec3{1, 2, 3}

	for i := 0; i < b.N; i++ {
		ComposeTRS(pos, rot, scale)
	}

}

func TestComposeTRSMatchesProduct(t *testing.T) {

	pos := mgl64.Vec3{-10, 0.1, 3232.1976}
	rot := NewQuaternionAxisAngle(mgl64.Vec3{1, 0, 0.1}, 0.334)
	scale := mgl64.Vec3{10, 1, 0.5}

	expected := mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(rot.Mat4()).Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))

	if got := ComposeTRS(pos, rot, scale); !MatrixEquals(got, expected) {
		t.Fatal("ComposeTRS differs from T*R*S:\n", MatrixString(got), "\n", MatrixString(expected))
	}

}

func TestMatrixInversion(t *testing.T) {

	matrices := []mgl64.Mat4{
		mgl64.HomogRotate3D(0.1, mgl64.Vec3{0, 1, 0}),
		mgl64.Translate3D(-10, 0.1, 3232.1976),
		mgl64.Scale3D(10, 0.1, -0.45),
		ComposeTRS(mgl64.Vec3{-1, -1, -1}, NewQuaternionAxisAngle(mgl64.Vec3{1, 0, 0.1}, 0.334), mgl64.Vec3{10, 1, 0.2}),
	}

	for i, mat := range matrices {
		if !IsInvertible(mat) {
			t.Fatal("matrix #", i, "reported as not invertible")
		}
		if !IsIdentity(mat.Mul4(mat.Inv())) {
			t.Fatal("failed on matrix #", i, ": matrix * matrix.Inv() is not identity")
		}
	}

	if IsInvertible(mgl64.Scale3D(1, 0, 1)) {
		t.Fatal("zero-scale matrix reported as invertible")
	}

}

func TestDecompose(t *testing.T) {

	pos := mgl64.Vec3{3, -2, 7}
	rot := NewQuaternionAxisAngle(mgl64.Vec3{0.3, 1, -0.5}, 1.2)
	scale := mgl64.Vec3{2, 0.5, 4}

	p, r, s := Decompose(ComposeTRS(pos, rot, scale))

	if !p.ApproxEqualThreshold(pos, matrixEpsilon) || !s.ApproxEqualThreshold(scale, matrixEpsilon) {
		t.Fatal("decomposed position / scale mismatch:", p, s)
	}

	// q and -q are the same rotation.
	if math.Abs(math.Abs(r.Dot(rot))-1) > matrixEpsilon {
		t.Fatal("decomposed rotation mismatch:", r, rot)
	}

}

func TestNormalMatrixNonUniformScale(t *testing.T) {

	model := ComposeTRS(mgl64.Vec3{}, NewQuaternionAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/4), mgl64.Vec3{4, 1, 1})

	// A surface along (1, 1, 0) before scaling has normal (1, -1, 0).
	tangent := mgl64.Vec3{1, 1, 0}
	normal := mgl64.Vec3{1, -1, 0}

	worldTangent := model.Mat3().Mul3x1(tangent)
	worldNormal := NormalMatrix(model).Mul3x1(normal)

	if d := worldTangent.Dot(worldNormal); math.Abs(d) > 1e-9 {
		t.Fatal("transformed normal is not perpendicular to the transformed surface; dot =", d)
	}

	naive := model.Mat3().Mul3x1(normal)
	if math.Abs(worldTangent.Dot(naive)) < 1e-6 {
		t.Fatal("expected the naive transform to break perpendicularity under non-uniform scale")
	}

}

func TestLookAtRotation(t *testing.T) {

	q := NewLookAtRotation(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{0, 1, 0})

	forward := q.Rotate(mgl64.Vec3{0, 0, -1})
	if !forward.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, matrixEpsilon) {
		t.Fatal("look-at rotation should point -Z at +X, got", forward)
	}

}

func TestSlerpShortestArc(t *testing.T) {

	a := mgl64.QuatIdent()
	b := NewQuaternionAxisAngle(mgl64.Vec3{0, 1, 0}, math.Pi/2)

	half := Slerp(a, b.Scale(-1), 0.5)
	expected := NewQuaternionAxisAngle(mgl64.Vec3{0, 1, 0}, math.Pi/4)

	if math.Abs(math.Abs(half.Dot(expected))-1) > matrixEpsilon {
		t.Fatal("slerp took the long way around:", half)
	}

}

func TestColorHex(t *testing.T) {

	c := NewColorFromHex("#ff8000")
	if c.R != 1 || c.B != 0 || math.Abs(float64(c.G)-128.0/255) > 1e-6 {
		t.Fatal("unexpected color", c)
	}

	if c.Hex() != "#ff8000" {
		t.Fatal("hex round trip failed:", c.Hex())
	}

}
