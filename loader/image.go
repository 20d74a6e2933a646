package loader

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes an image in any of the registered formats (PNG, JPEG, WebP, BMP or TIFF).
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	if img.Bounds().Empty() {
		return nil, errors.Errorf("%s image has no pixels", format)
	}
	return img, nil
}

// LoadImage reads and decodes an image file. If fileSystem is nil, the path is read from the OS filesystem.
func LoadImage(ctx context.Context, fileSystem fs.FS, path string) (image.Image, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	var err error

	if fileSystem != nil {
		data, err = fs.ReadFile(fileSystem, filepath.ToSlash(path))
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "reading image %q", path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}

	return img, nil

}

// LoadTexture starts loading the texture's image (from texture.Path) in the background. The texture is resolved on the
// Drain that delivers the image, after which any Material using it becomes ready to draw. A failed load leaves the
// texture unloaded and is reported to onError if it's not nil.
func LoadTexture(q *Queue, fileSystem fs.FS, texture *facegraph.Texture, onError func(error)) *Pending[image.Image] {

	path := texture.Path

	return Go(q,
		func(ctx context.Context) (image.Image, error) {
			return LoadImage(ctx, fileSystem, path)
		},
		func(img image.Image, err error) {
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			texture.Resolve(img)
		},
	)

}

// LoadTextures loads every texture's image in parallel and resolves the ones that loaded on the Drain following the
// last load. A failed texture stays unloaded without holding back the rest of the batch; the returned images have nil
// in its place, and done gets an error naming how many failed.
func LoadTextures(q *Queue, fileSystem fs.FS, textures []*facegraph.Texture, done func(error)) *Pending[[]image.Image] {

	paths := make([]string, len(textures))
	for i, t := range textures {
		paths[i] = t.Path
	}

	return Go(q,
		func(ctx context.Context) ([]image.Image, error) {

			images := make([]image.Image, len(paths))
			errs := make([]error, len(paths))

			// Loads report failures through errs rather than the group, so one failure doesn't cancel the others.
			group, groupCtx := errgroup.WithContext(ctx)
			group.SetLimit(4)

			for i, path := range paths {
				group.Go(func() error {
					images[i], errs[i] = LoadImage(groupCtx, fileSystem, path)
					return nil
				})
			}

			group.Wait()

			return images, batchError(errs)

		},
		func(images []image.Image, err error) {
			for i, img := range images {
				if img != nil {
					textures[i].Resolve(img)
				}
			}
			if done != nil {
				done(err)
			}
		},
	)

}

// batchError returns nil if every load succeeded, or the first failure annotated with the failure count.
func batchError(errs []error) error {

	var first error
	failed := 0

	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		failed++
	}

	if first == nil {
		return nil
	}

	return errors.Wrapf(first, "%d of %d textures failed to load", failed, len(errs))

}
