package facegraph

import (
	"image"
	"sync/atomic"
)

var textureID atomic.Uint64

// Texture is a shared handle to an image that may not have finished loading yet. Materials reference Textures by
// handle; a Drawable whose material points at an unloaded Texture is skipped until the Texture is resolved.
//
// Textures are resolved on the frame goroutine (see loader.Queue.Drain), so a Texture never changes mid-frame.
type Texture struct {
	id    uint64
	Name  string
	Path  string // Where the image was (or is being) loaded from, if anywhere
	image image.Image
	// Version is bumped each time the image changes so backends can invalidate anything they derived from it.
	version uint64
}

// NewTexture returns an unloaded Texture handle.
func NewTexture(name string) *Texture {
	return &Texture{id: textureID.Add(1), Name: name}
}

// NewTextureFromImage returns a Texture that is already loaded with the given image.
func NewTextureFromImage(name string, img image.Image) *Texture {
	tex := NewTexture(name)
	tex.Resolve(img)
	return tex
}

// ID returns the Texture's unique ID.
func (texture *Texture) ID() uint64 {
	return texture.id
}

// Loaded returns true once the Texture has an image.
func (texture *Texture) Loaded() bool {
	return texture != nil && texture.image != nil
}

// Image returns the Texture's image, or nil if it hasn't loaded.
func (texture *Texture) Image() image.Image {
	return texture.image
}

// Version returns a counter incremented every time the Texture's image is replaced.
func (texture *Texture) Version() uint64 {
	return texture.version
}

// Resolve sets the Texture's image, completing a pending load or replacing the current image. A nil image unloads the
// Texture.
func (texture *Texture) Resolve(img image.Image) {
	texture.image = img
	texture.version++
}

// Size returns the image dimensions, or zero if unloaded.
func (texture *Texture) Size() (int, int) {
	if texture.image == nil {
		return 0, 0
	}
	b := texture.image.Bounds()
	return b.Dx(), b.Dy()
}
