package ebitenbackend

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/openhuman/facegraph"
)

// vertex is the output of the vertex stage for one Geometry vertex.
type vertex struct {
	clip   mgl32.Vec4
	normal mgl32.Vec3 // World space and normalized; zero if the Geometry has no normals
	u, v   float32
}

func vec3At(data []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{data[i*3], data[i*3+1], data[i*3+2]}
}

// transformVertices runs the vertex stage for a draw call on the CPU. Per vertex, morph targets are blended in first,
// then the vertex is skinned as
//
//	bindMatrixInverse × Σ(weight × bone × bindMatrix × position) / Σ(weight)
//
// and finally projected with projection × modelView. Normals follow the same morph and skinning path and are then
// taken to world space with the model's normal matrix for lighting.
func transformVertices(call facegraph.DrawCall, dst []vertex) []vertex {

	geo := call.Geometry
	ub := call.Uniforms

	dst = dst[:0]

	pos := geo.Attribute(facegraph.AttributePosition)
	if pos == nil {
		return dst
	}

	normals := geo.Attribute(facegraph.AttributeNormal)
	uvs := geo.Attribute(facegraph.AttributeUV)

	mvp := ub.Projection.Mul4(ub.ModelView)
	normalMatrix := ub.Model.Mat3().Inv().Transpose()
	if normalMatrix == (mgl32.Mat3{}) {
		normalMatrix = ub.Model.Mat3()
	}

	var bones []mgl32.Mat4
	var skinIndex, skinWeight *facegraph.Attribute

	if ub.Skinned {
		skinIndex = geo.Attribute(facegraph.AttributeSkinIndex)
		skinWeight = geo.Attribute(facegraph.AttributeSkinWeight)
		bones = make([]mgl32.Mat4, ub.BoneCount)
		for i := range bones {
			bones[i] = ub.BoneMatrix(i)
		}
	}

	skinned := skinIndex != nil && skinWeight != nil && len(bones) > 0

	count := pos.Count()

	for i := 0; i < count; i++ {

		p := vec3At(pos.Data, i)

		var n mgl32.Vec3
		if normals != nil {
			n = vec3At(normals.Data, i)
		}

		for t, w := range ub.MorphInfluences {
			if w == 0 || t >= len(geo.MorphTargets) {
				continue
			}
			target := geo.MorphTargets[t]
			p = p.Add(vec3At(target.Positions, i).Mul(w))
			if normals != nil && target.Normals != nil {
				n = n.Add(vec3At(target.Normals, i).Mul(w))
			}
		}

		if skinned {
			p, n = skin(p, n, i, skinIndex, skinWeight, bones, ub.BindMatrix, ub.BindMatrixInverse)
		}

		out := vertex{clip: mvp.Mul4x1(p.Vec4(1))}

		if normals != nil {
			n = normalMatrix.Mul3x1(n)
			if l := n.Len(); l > 0 {
				out.normal = n.Mul(1 / l)
			}
		}

		if uvs != nil && uvs.ItemSize >= 2 {
			out.u = uvs.Data[i*uvs.ItemSize]
			out.v = uvs.Data[i*uvs.ItemSize+1]
		}

		dst = append(dst, out)

	}

	return dst

}

func skin(p, n mgl32.Vec3, i int, skinIndex, skinWeight *facegraph.Attribute, bones []mgl32.Mat4, bind, bindInverse mgl32.Mat4) (mgl32.Vec3, mgl32.Vec3) {

	bp := bind.Mul4x1(p.Vec4(1))
	bn := bind.Mul4x1(n.Vec4(0))

	var sumP, sumN mgl32.Vec4
	var total float32

	influences := min(skinIndex.ItemSize, skinWeight.ItemSize)

	for k := 0; k < influences; k++ {

		w := skinWeight.Data[i*skinWeight.ItemSize+k]
		if w == 0 {
			continue
		}

		b := int(skinIndex.Data[i*skinIndex.ItemSize+k])
		if b < 0 || b >= len(bones) {
			continue
		}

		sumP = sumP.Add(bones[b].Mul4x1(bp).Mul(w))
		sumN = sumN.Add(bones[b].Mul4x1(bn).Mul(w))
		total += w

	}

	if total == 0 {
		return p, n
	}

	return bindInverse.Mul4x1(sumP.Mul(1 / total)).Vec3(), bindInverse.Mul4x1(sumN).Vec3()

}
