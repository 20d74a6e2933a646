package facegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NewQuaternion returns a quaternion from x, y, z, w components, the order glTF and most tools store them in.
func NewQuaternion(x, y, z, w float64) mgl64.Quat {
	return mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
}

// NewQuaternionAxisAngle returns a unit quaternion rotating angle radians about the given axis.
func NewQuaternionAxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	if axis.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// Slerp spherically interpolates between two rotations along the shortest arc.
func Slerp(from, to mgl64.Quat, percent float64) mgl64.Quat {

	if percent <= 0 {
		return from
	} else if percent >= 1 {
		return to
	}

	dot := from.Dot(to)

	if dot < 0 {
		to = to.Scale(-1)
		dot = -dot
	}

	// Nearly parallel; a normalized lerp avoids dividing by a vanishing sine.
	if dot > 0.9995 {
		return mgl64.QuatNlerp(from, to, percent)
	}

	halfTheta := math.Acos(dot)
	sinHalfTheta := math.Sin(halfTheta)

	ratioA := math.Sin((1-percent)*halfTheta) / sinHalfTheta
	ratioB := math.Sin(percent*halfTheta) / sinHalfTheta

	return from.Scale(ratioA).Add(to.Scale(ratioB)).Normalize()

}

func validQuaternion(q mgl64.Quat) bool {
	if !isFinite(q.W, q.V[0], q.V[1], q.V[2]) {
		return false
	}
	return q.Len() > 1e-9
}
