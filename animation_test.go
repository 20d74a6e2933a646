package facegraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func newBlinkAnimation() *Animation {

	anim := NewAnimation("blink")

	lid := anim.AddChannel("Lid")
	pos := lid.AddTrack(TrackTypePosition)
	pos.AddKeyframe(1, mgl64.Vec3{0, -1, 0})
	pos.AddKeyframe(0, mgl64.Vec3{0, 0, 0})

	rot := lid.AddTrack(TrackTypeRotation)
	rot.AddKeyframe(0, mgl64.QuatIdent())
	rot.AddKeyframe(1, NewQuaternionAxisAngle(mgl64.Vec3{1, 0, 0}, math.Pi/2))

	face := anim.AddChannel("Face")
	face.AddTrack(TrackTypeMorph).AddKeyframe(0, []float64{0, 1})
	face.AddTrack(TrackTypeMorph).AddKeyframe(1, []float64{1, 0})

	anim.UpdateLength()
	return anim

}

func TestAnimationTrackInterpolation(t *testing.T) {

	anim := newBlinkAnimation()

	if anim.Length != 1 {
		t.Fatal("expected length 1, got", anim.Length)
	}

	pos := anim.Channels["Lid"].Tracks[TrackTypePosition]
	if pos.Keyframes[0].Time != 0 {
		t.Fatal("keyframes should be kept sorted by time")
	}

	v, ok := pos.ValueAsVector(0.25)
	if !ok || !v.ApproxEqualThreshold(mgl64.Vec3{0, -0.25, 0}, 1e-9) {
		t.Fatal("unexpected interpolated position", v)
	}

	q, _ := anim.Channels["Lid"].Tracks[TrackTypeRotation].ValueAsQuaternion(0.5)
	expected := NewQuaternionAxisAngle(mgl64.Vec3{1, 0, 0}, math.Pi/4)
	if math.Abs(math.Abs(q.Dot(expected))-1) > 1e-9 {
		t.Fatal("unexpected interpolated rotation", q)
	}

	if v, _ := pos.ValueAsVector(5); v != (mgl64.Vec3{0, -1, 0}) {
		t.Fatal("times past the end should clamp to the last keyframe")
	}

}

func TestAnimationPlayer(t *testing.T) {

	root := NewNode("Head")
	lid := NewNode("Lid")
	root.AddChildren(lid)

	geometry := NewPlaneGeometry(1, 1)
	geometry.MorphTargets = []MorphTarget{
		{Name: "blinkLeft", Positions: make([]float32, 12)},
		{Name: "blinkRight", Positions: make([]float32, 12)},
	}
	face := NewMesh("Face", geometry, NewMaterial("skin"))
	root.AddChildren(face.Node())

	finished := 0

	player := NewAnimationPlayer(root)
	player.OnFinish = func() { finished++ }
	player.Play(newBlinkAnimation())

	player.Update(0.5)
	if player.Playhead != 0.5 {
		t.Fatal("playhead should advance by dt")
	}

	player.Update(0.5)
	if lid.LocalPosition() != (mgl64.Vec3{0, -0.5, 0}) {
		t.Fatal("unexpected lid position", lid.LocalPosition())
	}

	if math.Abs(face.MorphInfluence("blinkLeft")-0.5) > 1e-9 || math.Abs(face.MorphInfluence("blinkRight")-0.5) > 1e-9 {
		t.Fatal("morph track should drive the face's influences", face.MorphInfluences)
	}

	player.Update(0.5)
	if player.Playing || finished != 1 {
		t.Fatal("FinishModeStop should stop and call OnFinish once")
	}

	player.FinishMode = FinishModeLoop
	player.Playing = true
	player.Playhead = 0.9
	player.Update(0.2)
	if math.Abs(player.Playhead-0.1) > 1e-9 {
		t.Fatal("looping should wrap the playhead, got", player.Playhead)
	}

	player.FinishMode = FinishModePingPong
	player.Playhead = 0.9
	player.Update(0.2)
	if player.Playhead != 1 || player.PlaySpeed != -1 {
		t.Fatal("ping-pong should reverse at the end")
	}

}

func TestTween(t *testing.T) {

	value := 0.0
	tween := NewTween(&value, 0, 10, 2, ease.Linear)

	tween.Update(1)
	if math.Abs(value-5) > 1e-5 {
		t.Fatal("expected halfway value, got", value)
	}

	if !tween.Update(1.5) || value != 10 {
		t.Fatal("tween should finish at its end value, got", value)
	}

	tween.Reset()
	if value != 0 || tween.Finished() {
		t.Fatal("reset should rewind the tween")
	}

	tween.FinishMode = FinishModePingPong
	tween.Update(2)
	tween.Update(0.5)
	if math.Abs(value-7.5) > 1e-5 {
		t.Fatal("ping-pong tween should head back, got", value)
	}

}
