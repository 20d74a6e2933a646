package facegraph

import "math"

// NewBoxGeometry returns an indexed box of the given size centered on the origin, with per-face normals and UVs.
func NewBoxGeometry(width, height, depth float64) *Geometry {

	hw, hh, hd := float32(width/2), float32(height/2), float32(depth/2)

	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}

	faces := []face{
		{[3]float32{0, 1, 0}, [4][3]float32{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},     // Top
		{[3]float32{0, -1, 0}, [4][3]float32{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}}, // Bottom
		{[3]float32{0, 0, 1}, [4][3]float32{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},     // Front
		{[3]float32{0, 0, -1}, [4][3]float32{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}}, // Back
		{[3]float32{1, 0, 0}, [4][3]float32{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},     // Right
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}}, // Left
	}

	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	texCoords := make([]float32, 0, 6*4*2)
	indices := make([]uint32, 0, 6*6)

	for i, f := range faces {
		for c := 0; c < 4; c++ {
			positions = append(positions, f.corners[c][:]...)
			normals = append(normals, f.normal[:]...)
			texCoords = append(texCoords, uvs[c][:]...)
		}
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	geometry := NewGeometry("Box")
	geometry.SetAttribute(AttributePosition, 3, positions)
	geometry.SetAttribute(AttributeNormal, 3, normals)
	geometry.SetAttribute(AttributeUV, 2, texCoords)
	geometry.Indices = indices
	return geometry

}

// NewPlaneGeometry returns a width × height plane on the XY plane facing +Z.
func NewPlaneGeometry(width, height float64) *Geometry {

	hw, hh := float32(width/2), float32(height/2)

	geometry := NewGeometry("Plane")
	geometry.SetAttribute(AttributePosition, 3, []float32{-hw, -hh, 0, hw, -hh, 0, hw, hh, 0, -hw, hh, 0})
	geometry.SetAttribute(AttributeNormal, 3, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1})
	geometry.SetAttribute(AttributeUV, 2, []float32{0, 1, 1, 1, 1, 0, 0, 0})
	geometry.Indices = []uint32{0, 1, 2, 0, 2, 3}
	return geometry

}

// NewSphereGeometry returns a UV sphere centered on the origin.
func NewSphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {

	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	positions := []float32{}
	normals := []float32{}
	texCoords := []float32{}
	indices := []uint32{}

	for y := 0; y <= heightSegments; y++ {

		v := float64(y) / float64(heightSegments)
		theta := v * math.Pi

		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			phi := u * 2 * math.Pi

			nx := -math.Cos(phi) * math.Sin(theta)
			ny := math.Cos(theta)
			nz := math.Sin(phi) * math.Sin(theta)

			positions = append(positions, float32(nx*radius), float32(ny*radius), float32(nz*radius))
			normals = append(normals, float32(nx), float32(ny), float32(nz))
			texCoords = append(texCoords, float32(u), float32(v))
		}

	}

	stride := uint32(widthSegments + 1)

	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*stride + uint32(x)
			b := a + stride
			if y != 0 {
				indices = append(indices, a, b, a+1)
			}
			if y != heightSegments-1 {
				indices = append(indices, a+1, b, b+1)
			}
		}
	}

	geometry := NewGeometry("Sphere")
	geometry.SetAttribute(AttributePosition, 3, positions)
	geometry.SetAttribute(AttributeNormal, 3, normals)
	geometry.SetAttribute(AttributeUV, 2, texCoords)
	geometry.Indices = indices
	return geometry

}

// NewCylinderGeometry returns a cylinder (or truncated cone) of the given height centered on the origin, built from
// heightSegments rings of radialSegments vertices each. When openEnded is false the top and bottom are capped.
func NewCylinderGeometry(radiusTop, radiusBottom, height float64, radialSegments, heightSegments int, openEnded bool) *Geometry {

	radialSegments = max(radialSegments, 3)
	heightSegments = max(heightSegments, 1)

	positions := []float32{}
	normals := []float32{}
	texCoords := []float32{}
	indices := []uint32{}

	halfHeight := height / 2
	slope := (radiusBottom - radiusTop) / height

	for y := 0; y <= heightSegments; y++ {

		v := float64(y) / float64(heightSegments)
		radius := v*(radiusBottom-radiusTop) + radiusTop

		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			theta := u * 2 * math.Pi
			sin, cos := math.Sin(theta), math.Cos(theta)

			positions = append(positions, float32(radius*sin), float32(-v*height+halfHeight), float32(radius*cos))

			n := [3]float64{sin, slope, cos}
			l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
			normals = append(normals, float32(n[0]/l), float32(n[1]/l), float32(n[2]/l))
			texCoords = append(texCoords, float32(u), float32(1-v))
		}

	}

	stride := uint32(radialSegments + 1)

	for y := 0; y < heightSegments; y++ {
		for x := 0; x < radialSegments; x++ {
			a := uint32(y)*stride + uint32(x)
			b := a + stride
			indices = append(indices, a, b, a+1, b, b+1, a+1)
		}
	}

	if !openEnded {

		addCap := func(top bool) {
			sign := float32(1)
			radius := radiusTop
			if !top {
				sign = -1
				radius = radiusBottom
			}

			center := uint32(len(positions) / 3)
			positions = append(positions, 0, sign*float32(halfHeight), 0)
			normals = append(normals, 0, sign, 0)
			texCoords = append(texCoords, 0.5, 0.5)

			for x := 0; x <= radialSegments; x++ {
				theta := float64(x) / float64(radialSegments) * 2 * math.Pi
				sin, cos := math.Sin(theta), math.Cos(theta)
				positions = append(positions, float32(radius*sin), sign*float32(halfHeight), float32(radius*cos))
				normals = append(normals, 0, sign, 0)
				texCoords = append(texCoords, float32(cos*0.5+0.5), float32(sin*0.5*float64(sign)+0.5))
			}

			for x := uint32(1); x <= uint32(radialSegments); x++ {
				if top {
					indices = append(indices, center+x, center+x+1, center)
				} else {
					indices = append(indices, center+x+1, center+x, center)
				}
			}
		}

		if radiusTop > 0 {
			addCap(true)
		}
		if radiusBottom > 0 {
			addCap(false)
		}

	}

	geometry := NewGeometry("Cylinder")
	geometry.SetAttribute(AttributePosition, 3, positions)
	geometry.SetAttribute(AttributeNormal, 3, normals)
	geometry.SetAttribute(AttributeUV, 2, texCoords)
	geometry.Indices = indices
	return geometry

}
