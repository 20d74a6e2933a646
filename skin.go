package facegraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxSkinInfluences is how many bones a vertex can be weighted to in a Geometry's skinIndex / skinWeight attributes.
const MaxSkinInfluences = 4

// SkinVertex applies linear blend skinning to a single point: the result is Σ weights[i] × boneMatrices[indices[i]] × p.
// Any number of influences is supported; out-of-range indices and zero weights are skipped. If the weights don't sum to
// a positive value the point is returned unchanged.
func SkinVertex(position mgl64.Vec3, indices []int, weights []float64, boneMatrices []mgl64.Mat4) mgl64.Vec3 {

	p := position.Vec4(1)
	out := mgl64.Vec4{}
	total := 0.0

	for i, boneIndex := range indices {

		if i >= len(weights) {
			break
		}

		w := weights[i]
		if w == 0 || boneIndex < 0 || boneIndex >= len(boneMatrices) {
			continue
		}

		out = out.Add(boneMatrices[boneIndex].Mul4x1(p).Mul(w))
		total += w

	}

	if total <= 0 {
		return position
	}

	// Weights that don't sum to one are renormalized so the result stays affine.
	return out.Vec3().Mul(1 / total)

}

// SkinNormal blends a normal by the same weights as SkinVertex, using each bone matrix's upper 3x3, and renormalizes it.
func SkinNormal(normal mgl64.Vec3, indices []int, weights []float64, boneMatrices []mgl64.Mat4) mgl64.Vec3 {

	out := mgl64.Vec3{}

	for i, boneIndex := range indices {
		if i >= len(weights) || boneIndex < 0 || boneIndex >= len(boneMatrices) || weights[i] == 0 {
			continue
		}
		out = out.Add(boneMatrices[boneIndex].Mat3().Mul3x1(normal).Mul(weights[i]))
	}

	if out.Len() == 0 {
		return normal
	}

	return out.Normalize()

}

// TwoBoneWeights returns the pair of adjacent bones and their weights for a point at height y on a segmented column of
// bones spaced segmentHeight apart, starting at y = 0. The point is weighted between the bone at or below it and the
// next one up, linearly by its position within the segment. Points at or beyond the last bone are fully weighted to it.
func TwoBoneWeights(y, segmentHeight float64, segments int) (indices [2]int, weights [2]float64) {

	if segmentHeight <= 0 || segments <= 0 {
		return [2]int{0, 0}, [2]float64{1, 0}
	}

	y = math.Max(y, 0)

	index := int(math.Floor(y / segmentHeight))
	if index >= segments {
		return [2]int{segments, segments}, [2]float64{1, 0}
	}

	w := math.Mod(y, segmentHeight) / segmentHeight

	return [2]int{index, index + 1}, [2]float64{1 - w, w}

}

// AssignTwoBoneSkin writes skinIndex and skinWeight attributes to the geometry using TwoBoneWeights on each vertex's
// Y position, offset by halfHeight so that a column centered on the origin starts at zero.
func AssignTwoBoneSkin(geometry *Geometry, halfHeight, segmentHeight float64, segments int) {

	positions := geometry.Attribute(AttributePosition)
	if positions == nil {
		return
	}

	count := positions.Count()
	indices := make([]float32, 0, count*MaxSkinInfluences)
	weights := make([]float32, 0, count*MaxSkinInfluences)

	for i := 0; i < count; i++ {
		y := float64(positions.Data[i*positions.ItemSize+1]) + halfHeight
		idx, w := TwoBoneWeights(y, segmentHeight, segments)
		indices = append(indices, float32(idx[0]), float32(idx[1]), 0, 0)
		weights = append(weights, float32(w[0]), float32(w[1]), 0, 0)
	}

	geometry.SetAttribute(AttributeSkinIndex, MaxSkinInfluences, indices)
	geometry.SetAttribute(AttributeSkinWeight, MaxSkinInfluences, weights)

}
