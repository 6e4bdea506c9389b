// Package matte turns an image into a two-color silhouette: pixels with any
// color channel above a threshold become opaque black, all others become
// fully transparent.
package matte

import (
	"image"
	"image/color"

	"silhouette/parallel"

	"github.com/disintegration/imaging"
)

// Threshold is the default cutoff on the 0-255 channel scale. A channel must
// be strictly greater than it to count as bright.
const Threshold uint8 = 10

var (
	Opaque      = color.NRGBA{A: 0xFF}
	Transparent = color.NRGBA{}
)

type Options struct {
	// Threshold is compared against the red, green and blue channels.
	Threshold uint8
	// Workers is the number of goroutines sharing the rows. Values below 1
	// use GOMAXPROCS.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Threshold: Threshold,
		Workers:   1,
	}
}

// Bright reports whether c has a red, green or blue channel above t. Alpha
// is ignored.
func Bright(c color.NRGBA, t uint8) bool {
	return c.R > t || c.G > t || c.B > t
}

// Apply returns a new image with the dimensions of src, anchored at (0, 0),
// holding only Opaque and Transparent pixels.
//
// Channels are read non-premultiplied, so a fully transparent source pixel
// with a bright color still becomes opaque. Applying Apply to its own output
// gives a fully transparent image, since opaque black has no bright channel.
func Apply(src image.Image, opts Options) *image.NRGBA {
	in := imaging.Clone(src)
	dst := image.NewNRGBA(in.Rect)

	pool := parallel.Start(opts.Workers)
	pool.DoBands(in.Rect.Dy(), func(rows parallel.Band) {
		fillRows(dst, in, rows, opts.Threshold)
	})
	pool.Wait(true)

	return dst
}

// fillRows only sets alpha: dst starts out transparent black.
func fillRows(dst, src *image.NRGBA, rows parallel.Band, t uint8) {
	width := src.Rect.Dx()
	for y := rows.Min; y < rows.Max; y++ {
		si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		di := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		for x := 0; x < width; x++ {
			p := src.Pix[si : si+4 : si+4]
			if Bright(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}, t) {
				dst.Pix[di+3] = 0xFF
			}
			si += 4
			di += 4
		}
	}
}
