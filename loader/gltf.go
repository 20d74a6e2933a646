package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrParentDetached is passed to AttachGLTF's callback when the Asset arrives after its parent left the scene.
var ErrParentDetached = errors.New("parent node is no longer in a scene")

// GLTFLoadOptions controls how a glTF document is turned into an Asset.
type GLTFLoadOptions struct {
	// LoadTextures starts loading externally referenced images when the Asset is attached with AttachGLTF.
	LoadTextures bool
	// TextureFS is where external images are read from. If nil, they're read from the OS filesystem relative to the
	// glTF file.
	TextureFS fs.FS
	// DefaultMaterial is used for primitives that don't specify a material. If nil, one is created per Asset.
	DefaultMaterial *facegraph.Material
}

// DefaultGLTFLoadOptions creates an instance of GLTFLoadOptions with some sensible defaults.
func DefaultGLTFLoadOptions() *GLTFLoadOptions {
	return &GLTFLoadOptions{
		LoadTextures: true,
	}
}

// Asset is the result of loading a glTF document: a node tree ready to be parented into a Scene, plus everything in it
// indexed for easy lookup. Skeletons are already bound against the document's inverse bind matrices.
type Asset struct {
	Name       string
	Root       *facegraph.Node
	Nodes      []*facegraph.Node // Indexed like the document's nodes
	Drawables  []*facegraph.Drawable
	Geometries []*facegraph.Geometry
	Materials  []*facegraph.Material
	Textures   []*facegraph.Texture // Every texture the materials reference, loaded or not
	Skeletons  []*facegraph.Skeleton
	Animations map[string]*facegraph.Animation
}

// Material returns the first material with the given name, or nil.
func (asset *Asset) Material(name string) *facegraph.Material {
	for _, m := range asset.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Drawable returns the first drawable with the given name, or nil.
func (asset *Asset) Drawable(name string) *facegraph.Drawable {
	for _, d := range asset.Drawables {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// PendingTextures returns the asset's textures that haven't been loaded yet.
func (asset *Asset) PendingTextures() []*facegraph.Texture {
	out := []*facegraph.Texture{}
	for _, t := range asset.Textures {
		if !t.Loaded() && t.Path != "" {
			out = append(out, t)
		}
	}
	return out
}

// LoadGLTFFile loads a .gltf or .glb file. External buffers are read relative to the file; external images are not
// loaded, only referenced by path (see AttachGLTF and LoadTextures).
func LoadGLTFFile(path string, options *GLTFLoadOptions) (*Asset, error) {

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening glTF %q", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return buildAsset(doc, name, filepath.Dir(path), options)

}

// LoadGLTFData loads a self-contained glTF document (a .glb, or a .gltf with embedded buffers) from memory.
func LoadGLTFData(data []byte, name string, options *GLTFLoadOptions) (*Asset, error) {

	decoder := gltf.NewDecoder(bytes.NewReader(data))
	doc := new(gltf.Document)

	if err := decoder.Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "decoding glTF %q", name)
	}

	return buildAsset(doc, name, "", options)

}

// AttachGLTF loads the glTF file at path in the background. On the Drain that delivers it, the Asset's root is parented
// to parent, its skeletons are registered with parent's Scene, and (if the options ask for it) loading of its textures
// begins. If parent was destroyed or removed from its Scene by then, the Asset is dropped and onLoaded gets an error
// wrapping ErrParentDetached.
//
// onLoaded, if not nil, is called on the frame goroutine with the attached Asset or the load error.
func AttachGLTF(q *Queue, parent *facegraph.Node, path string, options *GLTFLoadOptions, onLoaded func(*Asset, error)) *Pending[*Asset] {

	if options == nil {
		options = DefaultGLTFLoadOptions()
	}

	return Go(q,
		func(ctx context.Context) (*Asset, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return LoadGLTFFile(path, options)
		},
		func(asset *Asset, err error) {

			if err != nil {
				if onLoaded != nil {
					onLoaded(nil, err)
				}
				return
			}

			if !parent.Attached() {
				if onLoaded != nil {
					onLoaded(nil, errors.Wrapf(ErrParentDetached, "dropping %s under %q", path, parent.Name()))
				}
				return
			}

			parent.AddChildren(asset.Root)

			scene := parent.Scene()
			for _, skeleton := range asset.Skeletons {
				scene.RegisterSkeleton(skeleton)
			}

			if options.LoadTextures {
				for _, texture := range asset.PendingTextures() {
					LoadTexture(q, options.TextureFS, texture, func(err error) {
						log.Println("Warning: texture not loaded:", err)
					})
				}
			}

			if onLoaded != nil {
				onLoaded(asset, nil)
			}

		},
	)

}

func buildAsset(doc *gltf.Document, name, dir string, options *GLTFLoadOptions) (*Asset, error) {

	if options == nil {
		options = DefaultGLTFLoadOptions()
	}

	asset := &Asset{
		Name:       name,
		Root:       facegraph.NewNode(name),
		Animations: map[string]*facegraph.Animation{},
	}

	textures, err := readTextures(doc, dir)
	if err != nil {
		return nil, err
	}

	for _, t := range textures {
		if t != nil {
			asset.Textures = append(asset.Textures, t)
		}
	}

	for _, gltfMat := range doc.Materials {
		asset.Materials = append(asset.Materials, readMaterial(gltfMat, textures))
	}

	defaultMaterial := options.DefaultMaterial
	if defaultMaterial == nil {
		defaultMaterial = facegraph.NewMaterial(name + ".default")
	}

	// Mesh primitives become Geometries shared by every node instancing the mesh
	geometries := make([][]*facegraph.Geometry, len(doc.Meshes))

	for meshIndex, mesh := range doc.Meshes {

		targetNames := meshTargetNames(mesh)

		for primIndex, prim := range mesh.Primitives {

			geoName := mesh.Name
			if len(mesh.Primitives) > 1 {
				geoName = fmt.Sprintf("%s.%d", mesh.Name, primIndex)
			}

			geometry, err := readPrimitive(doc, prim, geoName, targetNames)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %q", mesh.Name)
			}

			geometries[meshIndex] = append(geometries[meshIndex], geometry)
			asset.Geometries = append(asset.Geometries, geometry)

		}

	}

	joints := map[int]bool{}
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			joints[int(j)] = true
		}
	}

	asset.Nodes = make([]*facegraph.Node, len(doc.Nodes))

	for i, gltfNode := range doc.Nodes {

		var node *facegraph.Node
		if joints[i] {
			node = facegraph.NewBone(gltfNode.Name)
		} else {
			node = facegraph.NewNode(gltfNode.Name)
		}

		if extras, ok := gltfNode.Extras.(map[string]any); ok {
			props := node.Properties()
			for k, v := range extras {
				props.Get(k).Set(v)
			}
		}

		if err := node.SetLocalTransform(nodeTransform(gltfNode)); err != nil {
			log.Println("Warning: node", gltfNode.Name, "has an invalid transform; using identity:", err)
		}

		if gltfNode.Mesh != nil {

			mesh := doc.Meshes[*gltfNode.Mesh]

			for primIndex, geometry := range geometries[*gltfNode.Mesh] {

				material := defaultMaterial
				if m := mesh.Primitives[primIndex].Material; m != nil {
					material = asset.Materials[*m]
				}

				drawable := facegraph.NewDrawable(geometry.Name, geometry, material)
				for t := range drawable.MorphInfluences {
					if t < len(mesh.Weights) {
						drawable.MorphInfluences[t] = float64(mesh.Weights[t])
					}
				}

				node.AddDrawable(drawable)
				asset.Drawables = append(asset.Drawables, drawable)

			}

		}

		asset.Nodes[i] = node

	}

	hasParent := make([]bool, len(doc.Nodes))

	for i, gltfNode := range doc.Nodes {
		for _, childIndex := range gltfNode.Children {
			asset.Nodes[i].AddChildren(asset.Nodes[int(childIndex)])
			hasParent[int(childIndex)] = true
		}
	}

	for i, node := range asset.Nodes {
		if !hasParent[i] {
			asset.Root.AddChildren(node)
		}
	}

	// The Asset isn't shared with the frame goroutine yet, so it's safe to propagate it here to get bind matrices.
	asset.Root.UpdateWorldMatrix(true)

	skeletons := make([]*facegraph.Skeleton, len(doc.Skins))

	for skinIndex, skin := range doc.Skins {

		skeleton, err := readSkin(doc, skin, asset.Nodes)
		if err != nil {
			return nil, errors.Wrapf(err, "skin %q", skin.Name)
		}

		skeletons[skinIndex] = skeleton
		asset.Skeletons = append(asset.Skeletons, skeleton)

	}

	for i, gltfNode := range doc.Nodes {
		if gltfNode.Skin == nil {
			continue
		}
		for _, drawable := range asset.Nodes[i].Drawables() {
			if !drawable.Geometry.Skinned() {
				continue
			}
			if err := drawable.BindSkeleton(skeletons[*gltfNode.Skin]); err != nil {
				return nil, err
			}
		}
	}

	for _, gltfAnim := range doc.Animations {
		anim, err := readAnimation(doc, gltfAnim)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %q", gltfAnim.Name)
		}
		asset.Animations[anim.Name] = anim
	}

	return asset, nil

}

func nodeTransform(node *gltf.Node) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {

	mat := mgl64.Mat4{}
	for i, v := range node.Matrix {
		mat[i] = float64(v)
	}

	if mat != (mgl64.Mat4{}) && !facegraph.IsIdentity(mat) {
		return facegraph.Decompose(mat)
	}

	position := mgl64.Vec3{float64(node.Translation[0]), float64(node.Translation[1]), float64(node.Translation[2])}

	rotation := facegraph.NewQuaternion(float64(node.Rotation[0]), float64(node.Rotation[1]), float64(node.Rotation[2]), float64(node.Rotation[3]))
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}

	scale := mgl64.Vec3{float64(node.Scale[0]), float64(node.Scale[1]), float64(node.Scale[2])}
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}

	return position, rotation, scale

}

func meshTargetNames(mesh *gltf.Mesh) []string {

	names := []string{}

	if extras, ok := mesh.Extras.(map[string]any); ok {
		if list, ok := extras["targetNames"].([]any); ok {
			for _, n := range list {
				if s, ok := n.(string); ok {
					names = append(names, s)
				}
			}
		}
	}

	return names

}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, name string, targetNames []string) (*facegraph.Geometry, error) {

	geometry := facegraph.NewGeometry(name)

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.Errorf("primitive %q has no positions", name)
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], [][3]float32{})
	if err != nil {
		return nil, err
	}

	geometry.SetAttribute(facegraph.AttributePosition, 3, flatten3(positions))

	if normalIndex, exists := prim.Attributes[gltf.NORMAL]; exists {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normalIndex], [][3]float32{})
		if err != nil {
			return nil, err
		}
		geometry.SetAttribute(facegraph.AttributeNormal, 3, flatten3(normals))
	}

	if uvIndex, exists := prim.Attributes[gltf.TEXCOORD_0]; exists {

		texCoords, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIndex], [][2]float32{})
		if err != nil {
			return nil, err
		}

		// glTF UVs start at the top-left; Geometry UVs start at the bottom-left.
		uvs := make([]float32, 0, len(texCoords)*2)
		for _, uv := range texCoords {
			uvs = append(uvs, uv[0], 1-uv[1])
		}
		geometry.SetAttribute(facegraph.AttributeUV, 2, uvs)

	}

	if weightIndex, exists := prim.Attributes[gltf.WEIGHTS_0]; exists {

		jointIndex, hasJoints := prim.Attributes[gltf.JOINTS_0]
		if !hasJoints {
			return nil, errors.Errorf("primitive %q has weights but no joints", name)
		}

		weights, err := modeler.ReadWeights(doc, doc.Accessors[weightIndex], [][4]float32{})
		if err != nil {
			return nil, err
		}

		bones, err := modeler.ReadJoints(doc, doc.Accessors[jointIndex], [][4]uint16{})
		if err != nil {
			return nil, err
		}

		skinIndex := make([]float32, 0, len(bones)*4)
		for _, b := range bones {
			skinIndex = append(skinIndex, float32(b[0]), float32(b[1]), float32(b[2]), float32(b[3]))
		}

		skinWeight := make([]float32, 0, len(weights)*4)
		for _, w := range weights {
			skinWeight = append(skinWeight, w[0], w[1], w[2], w[3])
		}

		geometry.SetAttribute(facegraph.AttributeSkinIndex, 4, skinIndex)
		geometry.SetAttribute(facegraph.AttributeSkinWeight, 4, skinWeight)

	}

	for t, target := range prim.Targets {

		morph := facegraph.MorphTarget{Name: fmt.Sprintf("morph%d", t)}
		if t < len(targetNames) {
			morph.Name = targetNames[t]
		}

		if idx, exists := target[gltf.POSITION]; exists {
			deltas, err := modeler.ReadPosition(doc, doc.Accessors[idx], [][3]float32{})
			if err != nil {
				return nil, err
			}
			morph.Positions = flatten3(deltas)
		}

		if idx, exists := target[gltf.NORMAL]; exists {
			deltas, err := modeler.ReadNormal(doc, doc.Accessors[idx], [][3]float32{})
			if err != nil {
				return nil, err
			}
			morph.Normals = flatten3(deltas)
		}

		if morph.Positions == nil {
			morph.Positions = make([]float32, len(positions)*3)
		}

		geometry.MorphTargets = append(geometry.MorphTargets, morph)

	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], []uint32{})
		if err != nil {
			return nil, err
		}
		geometry.Indices = indices
	}

	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	return geometry, nil

}

func flatten3(values [][3]float32) []float32 {
	out := make([]float32, 0, len(values)*3)
	for _, v := range values {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func readTextures(doc *gltf.Document, dir string) ([]*facegraph.Texture, error) {

	textures := make([]*facegraph.Texture, len(doc.Textures))

	for i, gltfTex := range doc.Textures {

		if gltfTex.Source == nil {
			continue
		}

		gltfImage := doc.Images[*gltfTex.Source]

		texName := gltfImage.Name
		if texName == "" {
			texName = gltfTex.Name
		}

		switch {

		case gltfImage.BufferView != nil:

			imageData, err := modeler.ReadBufferView(doc, doc.BufferViews[*gltfImage.BufferView])
			if err != nil {
				return nil, err
			}

			img, err := DecodeImage(imageData)
			if err != nil {
				return nil, errors.Wrapf(err, "image %q", texName)
			}

			textures[i] = facegraph.NewTextureFromImage(texName, img)

		case strings.HasPrefix(gltfImage.URI, "data:"):

			comma := strings.IndexByte(gltfImage.URI, ',')
			if comma < 0 {
				return nil, errors.Errorf("image %q has a malformed data URI", texName)
			}

			imageData, err := base64.StdEncoding.DecodeString(gltfImage.URI[comma+1:])
			if err != nil {
				return nil, errors.Wrapf(err, "image %q", texName)
			}

			img, err := DecodeImage(imageData)
			if err != nil {
				return nil, errors.Wrapf(err, "image %q", texName)
			}

			textures[i] = facegraph.NewTextureFromImage(texName, img)

		default:

			textures[i] = facegraph.NewTexture(texName)
			textures[i].Path = filepath.Join(dir, filepath.FromSlash(gltfImage.URI))

		}

	}

	return textures, nil

}

func readMaterial(gltfMat *gltf.Material, textures []*facegraph.Texture) *facegraph.Material {

	newMat := facegraph.NewMaterial(gltfMat.Name)
	newMat.DoubleSided = gltfMat.DoubleSided
	newMat.Transparent = gltfMat.AlphaMode == gltf.AlphaBlend

	emissive := gltfMat.EmissiveFactor
	newMat.Emissive.SetRGBA(float32(emissive[0]), float32(emissive[1]), float32(emissive[2]), 1)

	if gltfMat.EmissiveTexture != nil {
		newMat.SetTexture(facegraph.SlotEmissive, textures[gltfMat.EmissiveTexture.Index])
	}

	pbr := gltfMat.PBRMetallicRoughness
	if pbr == nil {
		return newMat
	}

	if c := pbr.BaseColorFactor; c != nil {
		newMat.Color.SetRGBA(float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3]))
		newMat.Opacity = float64(c[3])
	}

	if pbr.MetallicFactor != nil {
		newMat.Metalness = float64(*pbr.MetallicFactor)
	} else {
		newMat.Metalness = 1
	}

	if pbr.RoughnessFactor != nil {
		newMat.Roughness = float64(*pbr.RoughnessFactor)
	}

	if texture := pbr.BaseColorTexture; texture != nil {
		newMat.SetTexture(facegraph.SlotMap, textures[texture.Index])
	}

	// glTF packs roughness (G) and metalness (B) into one image
	if texture := pbr.MetallicRoughnessTexture; texture != nil {
		newMat.SetTexture(facegraph.SlotRoughness, textures[texture.Index])
		newMat.SetTexture(facegraph.SlotMetalness, textures[texture.Index])
	}

	return newMat

}

func readSkin(doc *gltf.Document, skin *gltf.Skin, nodes []*facegraph.Node) (*facegraph.Skeleton, error) {

	skeleton := facegraph.NewSkeleton(skin.Name)

	bones := make([]*facegraph.Node, 0, len(skin.Joints))
	for _, j := range skin.Joints {
		bones = append(bones, nodes[int(j)])
	}

	if skin.InverseBindMatrices == nil {
		// Bound against the bones' current (rest) pose
		return skeleton, skeleton.Bind(bones...)
	}

	data, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
	if err != nil {
		return nil, err
	}

	matrices, ok := data.([][4][4]float32)
	if !ok {
		return nil, errors.Errorf("inverse bind matrices have unexpected type %T", data)
	}

	inverses := make([]mgl64.Mat4, len(matrices))
	for m, matrix := range matrices {
		for col, column := range matrix {
			for row, v := range column {
				inverses[m][col*4+row] = float64(v)
			}
		}
	}

	return skeleton, skeleton.BindWithInverses(bones, inverses)

}

func readAnimation(doc *gltf.Document, gltfAnim *gltf.Animation) (*facegraph.Animation, error) {

	anim := facegraph.NewAnimation(gltfAnim.Name)

	for _, channel := range gltfAnim.Channels {

		channelName := "root"
		if channel.Target.Node != nil && *channel.Target.Node < len(doc.Nodes) {
			channelName = doc.Nodes[*channel.Target.Node].Name
		}

		if channel.Sampler < 0 || channel.Sampler >= len(gltfAnim.Samplers) {
			return nil, errors.Errorf("channel %q refers to sampler %d of %d", channelName, channel.Sampler, len(gltfAnim.Samplers))
		}

		sampler := gltfAnim.Samplers[channel.Sampler]
		if sampler.Input >= len(doc.Accessors) || sampler.Output >= len(doc.Accessors) {
			return nil, errors.Errorf("channel %q refers to a missing accessor", channelName)
		}

		id, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)
		if err != nil {
			return nil, err
		}

		inputData, ok := id.([]float32)
		if !ok {
			return nil, errors.Errorf("channel %q has keyframe times of type %T", channelName, id)
		}

		od, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)
		if err != nil {
			return nil, err
		}

		animChannel := anim.AddChannel(channelName)

		switch channel.Target.Path {

		case gltf.TRSTranslation, gltf.TRSScale:

			outputData, ok := od.([][3]float32)
			if !ok || len(outputData) < len(inputData) {
				return nil, errors.Errorf("channel %q has malformed vector keyframes", channelName)
			}

			trackType := facegraph.TrackTypePosition
			if channel.Target.Path == gltf.TRSScale {
				trackType = facegraph.TrackTypeScale
			}

			track := animChannel.AddTrack(trackType)
			for i, t := range inputData {
				p := outputData[i]
				track.AddKeyframe(float64(t), mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
			}

		case gltf.TRSRotation:

			outputData, ok := od.([][4]float32)
			if !ok || len(outputData) < len(inputData) {
				return nil, errors.Errorf("channel %q has malformed rotation keyframes", channelName)
			}

			track := animChannel.AddTrack(facegraph.TrackTypeRotation)
			for i, t := range inputData {
				p := outputData[i]
				track.AddKeyframe(float64(t), facegraph.NewQuaternion(float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])))
			}

		case gltf.TRSWeights:

			outputData, ok := od.([]float32)
			if !ok || len(inputData) == 0 || len(outputData)%len(inputData) != 0 {
				return nil, errors.Errorf("channel %q has malformed morph keyframes", channelName)
			}

			stride := len(outputData) / len(inputData)

			track := animChannel.AddTrack(facegraph.TrackTypeMorph)
			for i, t := range inputData {
				weights := make([]float64, stride)
				for w := range weights {
					weights[w] = float64(outputData[i*stride+w])
				}
				track.AddKeyframe(float64(t), weights)
			}

		}

	}

	anim.UpdateLength()

	return anim, nil

}
