package facegraph

// TextureSlot names one of a Material's texture inputs.
type TextureSlot string

const (
	SlotMap               TextureSlot = "map"
	SlotNormal            TextureSlot = "normalMap"
	SlotRoughness         TextureSlot = "roughnessMap"
	SlotMetalness         TextureSlot = "metalnessMap"
	SlotAO                TextureSlot = "aoMap"
	SlotClearcoat         TextureSlot = "clearcoatMap"
	SlotSpecularIntensity TextureSlot = "specularIntensityMap"
	SlotDisplacement      TextureSlot = "displacementMap"
	SlotBump              TextureSlot = "bumpMap"
	SlotEmissive          TextureSlot = "emissiveMap"
)

// TextureSlots lists every slot in the order backends bind them.
var TextureSlots = []TextureSlot{
	SlotMap, SlotNormal, SlotRoughness, SlotMetalness, SlotAO, SlotClearcoat,
	SlotSpecularIntensity, SlotDisplacement, SlotBump, SlotEmissive,
}

// Material is a physically-based surface description. Materials are shared by pointer: every Drawable referencing a
// Material sees changes to it on the next frame. Exported numeric and color fields are meant to be edited live, by
// the tweak panel for example.
type Material struct {
	Name string // Name is the name of the Material.

	Color    *Color // The base color of the Material.
	Emissive *Color
	Opacity  float64

	Roughness          float64
	Metalness          float64
	Clearcoat          float64
	ClearcoatRoughness float64
	SheenColor         *Color
	SheenRoughness     float64
	SpecularIntensity  float64
	IOR                float64
	EnvMapIntensity    float64
	AOMapIntensity     float64
	NormalScale        float64
	BumpScale          float64
	DisplacementScale  float64
	DisplacementBias   float64

	Transparent bool
	DoubleSided bool
	Wireframe   bool
	FlatShading bool

	textures map[TextureSlot]*Texture
}

// NewMaterial creates a new Material with the name given: white, fully rough, non-metallic, with an IOR of 1.5.
func NewMaterial(name string) *Material {
	return &Material{
		Name:              name,
		Color:             NewColor(1, 1, 1, 1),
		Emissive:          NewColor(0, 0, 0, 1),
		SheenColor:        NewColor(0, 0, 0, 1),
		Opacity:           1,
		Roughness:         1,
		SheenRoughness:    1,
		SpecularIntensity: 1,
		IOR:               1.5,
		EnvMapIntensity:   1,
		AOMapIntensity:    1,
		NormalScale:       1,
		BumpScale:         1,
		DisplacementScale: 1,
		textures:          map[TextureSlot]*Texture{},
	}
}

// Clone creates a clone of the specified Material. Texture handles are shared with the original.
func (material *Material) Clone() *Material {
	newMat := *material
	newMat.Color = material.Color.Clone()
	newMat.Emissive = material.Emissive.Clone()
	newMat.SheenColor = material.SheenColor.Clone()
	newMat.textures = make(map[TextureSlot]*Texture, len(material.textures))
	for slot, tex := range material.textures {
		newMat.textures[slot] = tex
	}
	return &newMat
}

// SetTexture assigns a Texture to a slot. A nil Texture clears the slot.
func (material *Material) SetTexture(slot TextureSlot, texture *Texture) {
	if texture == nil {
		delete(material.textures, slot)
		return
	}
	material.textures[slot] = texture
}

// Texture returns the Texture in the given slot, or nil.
func (material *Material) Texture(slot TextureSlot) *Texture {
	return material.textures[slot]
}

// Textures returns the Material's assigned textures keyed by slot.
func (material *Material) Textures() map[TextureSlot]*Texture {
	return material.textures
}

// Ready returns true if every assigned Texture has loaded. A Material with no textures is always ready.
func (material *Material) Ready() bool {
	for _, tex := range material.textures {
		if !tex.Loaded() {
			return false
		}
	}
	return true
}
