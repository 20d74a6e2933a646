package facegraph

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// UniformBlock is the set of per-draw parameters handed to the backend with one DrawCall. Matrices are float32 and
// column-major, ready for upload.
type UniformBlock struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	ModelView  mgl32.Mat4
	// Normal is the inverse-transpose of the model-view matrix's upper 3x3, so normals stay perpendicular to surfaces
	// under non-uniform scale.
	Normal         mgl32.Mat3
	CameraPosition mgl32.Vec3

	Skinned           bool
	BindMatrix        mgl32.Mat4
	BindMatrixInverse mgl32.Mat4
	BoneMatrices      []float32 // 16 floats per bone
	BoneCount         int

	MorphInfluences []float32

	Material *Material
	Textures map[TextureSlot]*Texture

	Environment *Texture
	ToneMapping ToneMapping
	Exposure    float32
	Lights      []LightInfo
}

// BoneMatrix returns bone i's matrix from the packed BoneMatrices.
func (ub *UniformBlock) BoneMatrix(i int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], ub.BoneMatrices[i*16:i*16+16])
	return m
}

// frameUniforms holds the parts of a UniformBlock shared by every draw in a frame.
type frameUniforms struct {
	view       mgl64.Mat4
	view32     mgl32.Mat4
	projection mgl32.Mat4
	cameraPos  mgl32.Vec3
	scene      *Scene
	lights     []LightInfo
}

func assembleUniforms(frame *frameUniforms, drawable *Drawable) *UniformBlock {

	model := drawable.node.worldMatrix
	modelView := frame.view.Mul4(model)

	ub := &UniformBlock{
		Model:          ToFloats(model),
		View:           frame.view32,
		Projection:     frame.projection,
		ModelView:      ToFloats(modelView),
		Normal:         ToFloats3(NormalMatrix(modelView)),
		CameraPosition: frame.cameraPos,
		Material:       drawable.Material,
		Textures:       drawable.Material.Textures(),
		Lights:         frame.lights,
	}

	if frame.scene != nil {
		ub.Environment = frame.scene.Environment
		ub.ToneMapping = frame.scene.ToneMapping
		ub.Exposure = float32(frame.scene.Exposure)
	}

	if skeleton := drawable.skeleton; skeleton != nil && skeleton.Bound() {
		ub.Skinned = true
		ub.BindMatrix = ToFloats(drawable.bindMatrix)
		// Bone matrices are world space, and the backend applies Model after skinning, so the inverse follows the
		// node's current world matrix. Moving an ancestor of a skinned mesh then doesn't transform it twice.
		bindInverse := drawable.bindMatrixInverse
		if IsInvertible(model) {
			bindInverse = model.Inv()
		}
		ub.BindMatrixInverse = ToFloats(bindInverse)
		ub.BoneMatrices = skeleton.BoneMatrixFloats(make([]float32, 0, len(skeleton.bones)*16))
		ub.BoneCount = len(skeleton.bones)
	}

	if len(drawable.MorphInfluences) > 0 {
		ub.MorphInfluences = make([]float32, len(drawable.MorphInfluences))
		for i, w := range drawable.MorphInfluences {
			ub.MorphInfluences[i] = float32(w)
		}
	}

	return ub

}
