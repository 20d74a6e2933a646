package ebitenbackend

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/openhuman/facegraph"
)

func triangleCall(positions []float32) facegraph.DrawCall {

	geo := facegraph.NewGeometry("tri")
	geo.SetAttribute(facegraph.AttributePosition, 3, positions)
	geo.SetAttribute(facegraph.AttributeNormal, 3, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1})

	return facegraph.DrawCall{
		Geometry: geo,
		Uniforms: &facegraph.UniformBlock{
			Model:             mgl32.Ident4(),
			View:              mgl32.Ident4(),
			Projection:        mgl32.Ident4(),
			ModelView:         mgl32.Ident4(),
			Normal:            mgl32.Ident3(),
			BindMatrix:        mgl32.Ident4(),
			BindMatrixInverse: mgl32.Ident4(),
			Material:          facegraph.NewMaterial("mat"),
		},
	}

}

func TestMorphTargetsBlend(t *testing.T) {

	call := triangleCall([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	call.Geometry.MorphTargets = []facegraph.MorphTarget{
		{Name: "raise", Positions: []float32{0, 1, 0, 0, 1, 0, 0, 1, 0}},
	}
	call.Uniforms.MorphInfluences = []float32{0.5}

	verts := transformVertices(call, nil)

	if len(verts) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(verts))
	}

	if !verts[0].clip.ApproxEqual(mgl32.Vec4{0, 0.5, 0, 1}) {
		t.Fatalf("morph not applied: %v", verts[0].clip)
	}

	if !verts[2].clip.ApproxEqual(mgl32.Vec4{0, 1.5, 0, 1}) {
		t.Fatalf("morph not applied: %v", verts[2].clip)
	}

}

func TestSkinningBlendsBones(t *testing.T) {

	call := triangleCall([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	call.Geometry.SetAttribute(facegraph.AttributeSkinIndex, 4, []float32{
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 0,
	})
	call.Geometry.SetAttribute(facegraph.AttributeSkinWeight, 4, []float32{
		0.5, 0.5, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
	})

	ub := call.Uniforms
	ub.Skinned = true
	ub.BoneCount = 2
	identity := mgl32.Ident4()
	moved := mgl32.Translate3D(2, 0, 0)
	ub.BoneMatrices = append(append([]float32{}, identity[:]...), moved[:]...)

	verts := transformVertices(call, nil)

	if !verts[0].clip.ApproxEqual(mgl32.Vec4{1, 0, 0, 1}) {
		t.Fatalf("half-weighted vertex should move halfway: %v", verts[0].clip)
	}

	if !verts[1].clip.ApproxEqual(mgl32.Vec4{3, 0, 0, 1}) {
		t.Fatalf("fully-weighted vertex should follow bone 1: %v", verts[1].clip)
	}

	if !verts[2].clip.ApproxEqual(mgl32.Vec4{0, 1, 0, 1}) {
		t.Fatalf("vertex on the identity bone should stay put: %v", verts[2].clip)
	}

	// Translation doesn't affect normals
	if !verts[1].normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("normal changed under translation: %v", verts[1].normal)
	}

}

func TestCollectTrianglesCulling(t *testing.T) {

	ccw := triangleCall([]float32{-0.5, -0.5, 0, 0.5, -0.5, 0, 0, 0.5, 0})
	cw := triangleCall([]float32{-0.5, -0.5, 0, 0, 0.5, 0, 0.5, -0.5, 0})

	verts := transformVertices(ccw, nil)
	if tris := collectTriangles(verts, nil, 100, 100, true, nil); len(tris) != 1 {
		t.Fatalf("front-facing triangle was culled")
	}

	verts = transformVertices(cw, nil)
	if tris := collectTriangles(verts, nil, 100, 100, true, nil); len(tris) != 0 {
		t.Fatalf("back-facing triangle wasn't culled")
	}
	if tris := collectTriangles(verts, nil, 100, 100, false, nil); len(tris) != 1 {
		t.Fatalf("back-facing triangle culled with culling off")
	}

}

func TestCollectTrianglesClipping(t *testing.T) {

	behind := []vertex{
		{clip: mgl32.Vec4{0, 0, 0, -1}},
		{clip: mgl32.Vec4{1, 0, 0, 1}},
		{clip: mgl32.Vec4{0, 1, 0, 1}},
	}

	if tris := collectTriangles(behind, nil, 100, 100, false, nil); len(tris) != 0 {
		t.Fatalf("triangle crossing the camera plane was kept")
	}

	offscreen := []vertex{
		{clip: mgl32.Vec4{2, 0, 0, 1}},
		{clip: mgl32.Vec4{3, 0, 0, 1}},
		{clip: mgl32.Vec4{2, 1, 0, 1}},
	}

	if tris := collectTriangles(offscreen, nil, 100, 100, false, nil); len(tris) != 0 {
		t.Fatalf("triangle right of the view volume was kept")
	}

	indexed := []vertex{
		{clip: mgl32.Vec4{0, 0, 0.5, 1}},
		{clip: mgl32.Vec4{0.5, 0, 0.5, 1}},
		{clip: mgl32.Vec4{0, 0.5, 0.5, 1}},
	}

	tris := collectTriangles(indexed, []uint32{2, 1, 0}, 100, 100, false, nil)
	if len(tris) != 1 || tris[0].indices != [3]int{2, 1, 0} {
		t.Fatalf("indexed triangle not assembled: %v", tris)
	}

	if tris[0].depth != 0.5 {
		t.Fatalf("expected depth 0.5, got %v", tris[0].depth)
	}

}

func TestLightVertex(t *testing.T) {

	if got := lightVertex(mgl32.Vec3{0, 0, 1}, nil); got != (mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("unlit scene should be full bright, got %v", got)
	}

	lights := []facegraph.LightInfo{
		{Kind: facegraph.LightAmbient, Color: [3]float32{0.25, 0.25, 0.25}},
		{Kind: facegraph.LightDirectional, Color: [3]float32{0.5, 0.5, 0.5}, Direction: [3]float32{0, 0, -1}},
	}

	if got := lightVertex(mgl32.Vec3{0, 0, 1}, lights); !got.ApproxEqual(mgl32.Vec3{0.75, 0.75, 0.75}) {
		t.Fatalf("surface facing the light: %v", got)
	}

	if got := lightVertex(mgl32.Vec3{0, 0, -1}, lights); !got.ApproxEqual(mgl32.Vec3{0.25, 0.25, 0.25}) {
		t.Fatalf("surface facing away should only get ambient: %v", got)
	}

}

func TestToneMap(t *testing.T) {

	if got := toneMap(mgl32.Vec3{1, 0, 4}, facegraph.NoToneMapping, 1); !got.ApproxEqual(mgl32.Vec3{1, 0, 1}) {
		t.Fatalf("no tone mapping should clamp: %v", got)
	}

	aces := toneMap(mgl32.Vec3{100, 100, 100}, facegraph.ACESFilmicToneMapping, 1)
	if aces[0] > 1 || aces[0] < 0.99 {
		t.Fatalf("ACES should saturate towards 1: %v", aces)
	}

	dark := toneMap(mgl32.Vec3{1, 1, 1}, facegraph.LinearToneMapping, 0)
	if dark != (mgl32.Vec3{}) {
		t.Fatalf("zero exposure should be black: %v", dark)
	}

}
