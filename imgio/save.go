package imgio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// DefaultFormat is used when the destination has no recognised extension.
const DefaultFormat = "png"

// Formats lists the output formats able to keep a fully transparent pixel.
var Formats = []string{"png", "tiff", "gif"}

var errFlattensAlpha = errors.New("format cannot store transparency")

type SaveOptions struct {
	// Format overrides the format derived from the destination extension.
	Format string
	// NoClobber keeps an existing destination file and fails instead.
	NoClobber bool
}

// FormatFromPath maps a file extension to a format name, or "" when the
// extension is not known.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".webp":
		return "webp"
	}
	return ""
}

// Save encodes img to path. The image is written to a temporary file in the
// same folder and renamed into place once complete, so a failed save leaves
// no destination behind. Every failure is an *EncodeError.
func Save(img image.Image, path string, opts SaveOptions) error {
	format := opts.Format
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == "" {
		format = DefaultFormat
	}

	if err := writeFile(img, path, format, opts.NoClobber); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

func writeFile(img image.Image, path, format string, noClobber bool) (err error) {
	if noClobber {
		if err := checkDest(path); err != nil {
			return err
		}
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination: %w", err)
	}
	tmpName := outFile.Name()

	done := false
	defer func() {
		if done {
			return
		}
		_ = outFile.Close()
		_ = os.Remove(tmpName)
	}()

	if err = encode(outFile, img, format); err != nil {
		return err
	}
	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination: %w", err)
	}
	if err = outFile.Close(); err != nil {
		return fmt.Errorf("could not close temporary destination: %w", err)
	}
	// CreateTemp uses 0600. Outputs are made world-readable with a fixed
	// 0644, without applying the process umask.
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("could not set destination permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		done = true
		return fmt.Errorf("could not rename destination file: %w", err)
	}

	done = true
	return nil
}

func checkDest(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file: %w", err)
		}
		return nil
	}
	return fmt.Errorf("destination file already exists: %q", info.Name())
}

func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("could not encode PNG: %w", err)
		}
	case "tiff":
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("could not encode TIFF: %w", err)
		}
	case "gif":
		if err := gif.Encode(w, toMattePaletted(img), nil); err != nil {
			return fmt.Errorf("could not encode GIF: %w", err)
		}
	case "jpeg", "bmp":
		return fmt.Errorf("%s: %w", format, errFlattensAlpha)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return nil
}

// mattePalette keeps the transparent entry first so GIF marks it as the
// transparent index.
var mattePalette = color.Palette{
	color.NRGBA{},
	color.NRGBA{A: 0xFF},
}

func toMattePaletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}
	r := img.Bounds()
	dst := image.NewPaletted(r, mattePalette)
	draw.Draw(dst, r, img, r.Min, draw.Src)
	return dst
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
