package facegraph

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Matrices in facegraph are mgl64.Mat4 values: column-major, transforming column vectors, so a composed
// transform reads right-to-left (world = parent × local, local = T × R × S).

// matrixEpsilon is the tolerance used when comparing matrices for equality.
const matrixEpsilon = 0.0001

// minDeterminant is the smallest absolute determinant a matrix may have and still be treated as invertible.
const minDeterminant = 1e-12

// ComposeTRS returns the matrix translate × rotate × scale for the given components.
func ComposeTRS(position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {

	// Written out rather than multiplied: the rotation's basis columns are scaled in place and the
	// translation becomes the fourth column.
	r := rotation.Mat4()

	return mgl64.Mat4{
		r[0] * scale[0], r[1] * scale[0], r[2] * scale[0], 0,
		r[4] * scale[1], r[5] * scale[1], r[6] * scale[1], 0,
		r[8] * scale[2], r[9] * scale[2], r[10] * scale[2], 0,
		position[0], position[1], position[2], 1,
	}

}

// Decompose splits an affine matrix into its position, rotation and scale. Shear is discarded, and a
// negative determinant is folded into the X scale.
func Decompose(matrix mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {

	position := matrix.Col(3).Vec3()

	scale := mgl64.Vec3{
		matrix.Col(0).Vec3().Len(),
		matrix.Col(1).Vec3().Len(),
		matrix.Col(2).Vec3().Len(),
	}

	if matrix.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	rotation := mgl64.Ident3()
	for i := 0; i < 3; i++ {
		if scale[i] != 0 {
			col := matrix.Col(i).Vec3().Mul(1 / scale[i])
			rotation.SetCol(i, col)
		}
	}

	return position, mgl64.Mat4ToQuat(rotation.Mat4()).Normalize(), scale

}

// MatrixEquals returns true if every element of the two matrices lies within a small epsilon of its counterpart.
func MatrixEquals(a, b mgl64.Mat4) bool {
	return a.ApproxEqualThreshold(b, matrixEpsilon)
}

// IsIdentity returns true if the matrix is, within epsilon, an identity matrix.
func IsIdentity(matrix mgl64.Mat4) bool {
	return MatrixEquals(matrix, mgl64.Ident4())
}

// IsInvertible returns true if the matrix's determinant is far enough from zero for Inv to be meaningful.
func IsInvertible(matrix mgl64.Mat4) bool {
	det := matrix.Det()
	return !math.IsNaN(det) && !math.IsInf(det, 0) && math.Abs(det) >= minDeterminant
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of the given matrix, used to transform normals
// correctly under non-uniform scale. A degenerate input yields the plain upper 3x3.
func NormalMatrix(matrix mgl64.Mat4) mgl64.Mat3 {
	m := matrix.Mat3()
	if math.Abs(m.Det()) < minDeterminant {
		return m
	}
	return m.Inv().Transpose()
}

// NewLookAtRotation returns a rotation that points an object's -Z axis from "from" towards "to", keeping up as
// close to the provided up vector as possible.
func NewLookAtRotation(from, to, up mgl64.Vec3) mgl64.Quat {

	forward := to.Sub(from)
	if forward.Len() == 0 {
		return mgl64.QuatIdent()
	}
	forward = forward.Normalize()

	right := forward.Cross(up)
	if right.Len() < 1e-9 {
		// Looking straight along up; any perpendicular will do.
		right = forward.Cross(mgl64.Vec3{0, 0, 1})
		if right.Len() < 1e-9 {
			right = forward.Cross(mgl64.Vec3{1, 0, 0})
		}
	}
	right = right.Normalize()
	newUp := right.Cross(forward)

	basis := mgl64.Mat3FromCols(right, newUp, forward.Mul(-1))
	return mgl64.Mat4ToQuat(basis.Mat4()).Normalize()

}

// ToFloats packs a matrix into column-major float32s, the layout a uniform upload expects.
func ToFloats(matrix mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range matrix {
		out[i] = float32(matrix[i])
	}
	return out
}

// ToFloats3 packs a 3x3 matrix into column-major float32s.
func ToFloats3(matrix mgl64.Mat3) mgl32.Mat3 {
	var out mgl32.Mat3
	for i := range matrix {
		out[i] = float32(matrix[i])
	}
	return out
}

// MatrixString returns a readable, row-by-row representation of the matrix.
func MatrixString(matrix mgl64.Mat4) string {
	s := "{"
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			s += strconv.FormatFloat(matrix.At(row, col), 'f', -1, 64)
			if col < 3 {
				s += ", "
			}
		}
		if row < 3 {
			s += "\n"
		}
	}
	s += "}"
	return s
}

// ToRadians converts degrees to radians.
func ToRadians(degrees float64) float64 {
	return math.Pi * degrees / 180
}

// ToDegrees converts radians to degrees for human readability.
func ToDegrees(radians float64) float64 {
	return radians / math.Pi * 180
}

func clamp[V float64 | float32 | int](value, min, max V) V {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
