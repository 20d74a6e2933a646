package facegraph

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCameraProjectionNearFar(t *testing.T) {

	camera := NewCamera("camera")
	if err := camera.SetPerspective(ToRadians(90), 1, 0.1, 1000); err != nil {
		t.Fatal(err)
	}
	camera.UpdateWorldMatrix(false)

	near := camera.WorldToNDC(mgl64.Vec3{0, 0, -0.1})
	far := camera.WorldToNDC(mgl64.Vec3{0, 0, -1000})

	if math.Abs(near[2]+1) > 1e-6 {
		t.Fatal("point on the near plane should map to NDC z = -1, got", near[2])
	}

	if math.Abs(far[2]-1) > 1e-6 {
		t.Fatal("point on the far plane should map to NDC z = 1, got", far[2])
	}

	// With a 90° field of view the frustum edge at depth d is at ±d.
	edge := camera.WorldToNDC(mgl64.Vec3{5, -5, -5})
	if math.Abs(edge[0]-1) > 1e-6 || math.Abs(edge[1]+1) > 1e-6 {
		t.Fatal("frustum edge should map to the NDC boundary, got", edge)
	}

}

func TestCameraSetPerspectiveValidation(t *testing.T) {

	camera := NewCamera("camera")

	bad := [][4]float64{
		{0, 1, 0.1, 10},
		{math.Pi, 1, 0.1, 10},
		{1, 0, 0.1, 10},
		{1, 1, 0, 10},
		{1, 1, 10, 10},
		{1, 1, 10, 1},
		{1, 1, -1, 10},
		{math.NaN(), 1, 0.1, 10},
	}

	before := camera.Projection()

	for _, p := range bad {
		if err := camera.SetPerspective(p[0], p[1], p[2], p[3]); !errors.Is(err, ErrInvalidArgument) {
			t.Fatal("expected ErrInvalidArgument for", p, "got", err)
		}
	}

	if camera.FieldOfView() != DefaultFieldOfView || camera.Aspect() != 1 || camera.Near() != DefaultNear || camera.Far() != DefaultFar {
		t.Fatal("rejected parameters were partially committed")
	}

	if camera.Projection() != before {
		t.Fatal("projection changed after rejected parameters")
	}

}

func TestCameraLazyProjection(t *testing.T) {

	camera := NewCamera("camera")
	square := camera.Projection()

	if err := camera.SetAspect(2); err != nil {
		t.Fatal(err)
	}

	wide := camera.Projection()
	if wide == square {
		t.Fatal("projection should be rebuilt after an aspect change")
	}

	if math.Abs(wide[0]*2-square[0]) > 1e-12 {
		t.Fatal("doubling the aspect should halve the x scale")
	}

	if camera.SetAspect(-1) == nil {
		t.Fatal("negative aspect should be rejected")
	}

}

func TestCameraViewMatrix(t *testing.T) {

	rig := NewNode("rig")
	camera := NewCamera("camera")
	rig.AddChildren(camera.Node)

	rig.SetLocalPosition(mgl64.Vec3{0, 1, 0})
	camera.SetLocalPosition(mgl64.Vec3{0, 0, 5})
	rig.UpdateWorldMatrix(false)

	if !IsIdentity(camera.ViewMatrix().Mul4(camera.WorldMatrix())) {
		t.Fatal("view matrix should be the inverse of the camera's world matrix")
	}

	// The point the camera sits in front of is straight ahead of it, five units down -Z.
	view := camera.ViewMatrix().Mul4x1(mgl64.Vec4{0, 1, 0, 1})
	if !view.Vec3().ApproxEqualThreshold(mgl64.Vec3{0, 0, -5}, matrixEpsilon) {
		t.Fatal("unexpected view-space position", view)
	}

	if camera.Type() != NodeTypeCamera || camera.Node.Camera() != camera {
		t.Fatal("camera node should carry its camera capability")
	}

}
