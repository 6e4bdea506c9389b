package imgio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type LoadOptions struct {
	// AutoOrient rotates and flips the image according to its EXIF
	// orientation tag, if any.
	AutoOrient bool
}

// Load decodes the image at path. Every failure is a *DecodeError.
func Load(path string, opts LoadOptions) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close source file", "name", path, "error", closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("not a regular file: %s", info.Mode())}
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}
