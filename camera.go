package facegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Default perspective parameters for a new Camera.
const (
	DefaultFieldOfView = 45 * math.Pi / 180
	DefaultNear        = 0.1
	DefaultFar         = 1000
)

// Camera is a Node capability producing view and projection matrices. The view matrix is the inverse of the
// Camera Node's world matrix; the projection is an OpenGL-style perspective (NDC z in [-1, 1]) rebuilt lazily whenever
// one of its parameters changes.
type Camera struct {
	*Node

	fieldOfView float64 // Vertical, in radians
	aspect      float64
	near        float64
	far         float64

	updateProjectionMatrix bool
	cachedProjection       mgl64.Mat4
}

// NewCamera returns a Camera on a new Node with a 45° vertical field of view, square aspect, and 0.1 / 1000 clip planes.
func NewCamera(name string) *Camera {

	camera := &Camera{
		Node:                   newNode(name, NodeTypeCamera),
		fieldOfView:            DefaultFieldOfView,
		aspect:                 1,
		near:                   DefaultNear,
		far:                    DefaultFar,
		updateProjectionMatrix: true,
	}

	camera.Node.camera = camera

	return camera

}

// SetPerspective sets all four projection parameters. fov is the vertical field of view in radians and must lie in
// (0, π); aspect must be positive; near and far must satisfy 0 < near < far. Invalid input returns an error wrapping
// ErrInvalidArgument and changes nothing.
func (camera *Camera) SetPerspective(fov, aspect, near, far float64) error {

	if err := validatePerspective(fov, aspect, near, far); err != nil {
		return err
	}

	camera.fieldOfView = fov
	camera.aspect = aspect
	camera.near = near
	camera.far = far
	camera.updateProjectionMatrix = true
	return nil

}

// SetAspect sets the aspect ratio (width / height), typically after the caller notices a window resize. The projection
// is rebuilt on the next Projection call.
func (camera *Camera) SetAspect(aspect float64) error {
	if camera.aspect == aspect {
		return nil
	}
	return camera.SetPerspective(camera.fieldOfView, aspect, camera.near, camera.far)
}

// SetFieldOfView sets the vertical field of view in radians.
func (camera *Camera) SetFieldOfView(fov float64) error {
	if camera.fieldOfView == fov {
		return nil
	}
	return camera.SetPerspective(fov, camera.aspect, camera.near, camera.far)
}

// SetClipPlanes sets the near and far clip planes.
func (camera *Camera) SetClipPlanes(near, far float64) error {
	return camera.SetPerspective(camera.fieldOfView, camera.aspect, near, far)
}

// FieldOfView returns the vertical field of view in radians.
func (camera *Camera) FieldOfView() float64 {
	return camera.fieldOfView
}

// Aspect returns the aspect ratio.
func (camera *Camera) Aspect() float64 {
	return camera.aspect
}

// Near returns the near plane of a camera.
func (camera *Camera) Near() float64 {
	return camera.near
}

// Far returns the far plane of a camera.
func (camera *Camera) Far() float64 {
	return camera.far
}

// Projection returns the Camera's projection matrix, rebuilding it if a parameter changed since the last call.
func (camera *Camera) Projection() mgl64.Mat4 {

	if !camera.updateProjectionMatrix {
		return camera.cachedProjection
	}

	camera.updateProjectionMatrix = false
	camera.cachedProjection = mgl64.Perspective(camera.fieldOfView, camera.aspect, camera.near, camera.far)

	return camera.cachedProjection

}

// ViewMatrix returns the inverse of the Camera Node's world matrix. The caller must have run a propagation pass since
// the Camera (or any of its ancestors) last moved; a stale view matrix is not detected in release builds.
func (camera *Camera) ViewMatrix() mgl64.Mat4 {
	return camera.WorldMatrix().Inv()
}

// WorldToClip transforms a world-space point into homogeneous clip space.
func (camera *Camera) WorldToClip(point mgl64.Vec3) mgl64.Vec4 {
	return camera.Projection().Mul4(camera.ViewMatrix()).Mul4x1(point.Vec4(1))
}

// WorldToNDC transforms a world-space point into normalized device coordinates, after the perspective divide.
func (camera *Camera) WorldToNDC(point mgl64.Vec3) mgl64.Vec3 {
	clip := camera.WorldToClip(point)
	if clip[3] == 0 {
		return clip.Vec3()
	}
	return clip.Vec3().Mul(1 / clip[3])
}

func validatePerspective(fov, aspect, near, far float64) error {

	if !isFinite(fov, aspect, near, far) {
		return errors.Wrap(ErrInvalidArgument, "perspective parameters must be finite")
	}

	if fov <= 0 || fov >= math.Pi {
		return errors.Wrapf(ErrInvalidArgument, "field of view %v outside (0, π)", fov)
	}

	if aspect <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "aspect ratio %v must be positive", aspect)
	}

	if near <= 0 || near >= far {
		return errors.Wrapf(ErrInvalidArgument, "clip planes near=%v far=%v must satisfy 0 < near < far", near, far)
	}

	return nil

}
