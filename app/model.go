package app

import (
	"log"

	"github.com/openhuman/facegraph"
	"github.com/openhuman/facegraph/loader"
)

// LoadModel loads the glTF file at path in the background and attaches it under parent (the scene root if nil). Once
// it arrives, configured material presets are applied to its materials, every texture they need starts loading, and
// onLoaded (if not nil) is called.
func (ctx *Context) LoadModel(parent *facegraph.Node, path string, onLoaded func(*loader.Asset, error)) *loader.Pending[*loader.Asset] {

	if parent == nil {
		parent = ctx.Scene.Root()
	}

	options := loader.DefaultGLTFLoadOptions()
	options.TextureFS = ctx.TextureFS
	// Textures are loaded together below, once presets have had a chance to replace them.
	options.LoadTextures = false

	return loader.AttachGLTF(ctx.Loader, parent, path, options, func(asset *loader.Asset, err error) {

		if err == nil {
			ctx.ApplyPresets(asset.Materials)
			textures := append(asset.PendingTextures(), ctx.Textures.Pending()...)
			ctx.LoadTextures(textures, nil)
		}

		if onLoaded != nil {
			onLoaded(asset, err)
		}

	})

}

// ApplyPresets applies the configured preset, if any, to each material by name. It returns the number of materials a
// preset was applied to.
func (ctx *Context) ApplyPresets(materials []*facegraph.Material) int {
	applied := 0
	for _, mat := range materials {
		preset, ok := ctx.Config.Materials[mat.Name]
		if !ok {
			continue
		}
		preset.Apply(mat, ctx.Textures, ctx.Config.TexturePath)
		applied++
	}
	return applied
}

// LoadTextures starts loading the given textures together, skipping any already loaded or in a texture set twice.
// done, if not nil, is called on the frame goroutine once the batch has finished; textures that failed stay unloaded.
func (ctx *Context) LoadTextures(textures []*facegraph.Texture, done func(error)) {

	seen := map[*facegraph.Texture]bool{}
	pending := []*facegraph.Texture{}

	for _, tex := range textures {
		if tex == nil || tex.Loaded() || tex.Path == "" || seen[tex] {
			continue
		}
		seen[tex] = true
		pending = append(pending, tex)
	}

	if len(pending) == 0 {
		if done != nil {
			done(nil)
		}
		return
	}

	loader.LoadTextures(ctx.Loader, ctx.TextureFS, pending, func(err error) {
		if err != nil {
			log.Println("Warning: textures not loaded:", err)
		}
		if done != nil {
			done(err)
		}
	})

}
