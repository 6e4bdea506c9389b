package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resize scales img to fit inside width x height keeping its aspect ratio.
// A zero dimension is derived from the other one; when both are zero or
// already match, img is returned unchanged.
//
// A scaled result is fully opaque. Scaling works on premultiplied colors, so the
// alpha channel is dropped first to keep the color of transparent pixels.
func Resize(logger *slog.Logger, img image.Image, width, height int) (image.Image, error) {
	switch {
	case width < 0:
		return nil, fmt.Errorf("invalid resize width: %d", width)
	case height < 0:
		return nil, fmt.Errorf("invalid resize height: %d", height)
	case width == 0 && height == 0:
		return img, nil
	}

	srcBounds := img.Bounds()
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())
	if srcWidth == 0 || srcHeight == 0 {
		return img, nil
	}
	srcAR := srcWidth / srcHeight

	destWidth := float64(width)
	destHeight := float64(height)
	switch {
	case width == 0:
		destWidth = destHeight * srcAR
	case height == 0:
		destHeight = destWidth / srcAR
	default:
		if destAR := destWidth / destHeight; srcAR < destAR {
			destWidth = destHeight * srcAR
		} else if srcAR > destAR {
			destHeight = destWidth / srcAR
		}
	}

	destBounds := image.Rect(0, 0,
		max(1, int(math.Round(destWidth))),
		max(1, int(math.Round(destHeight))))
	if destBounds.Dx() == srcBounds.Dx() && destBounds.Dy() == srcBounds.Dy() {
		return img, nil
	}

	logger.Debug("resizing", "width", destBounds.Dx(), "height", destBounds.Dy())
	opaque := imaging.Clone(img)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xFF
	}

	dest := image.NewNRGBA(destBounds)
	draw.CatmullRom.Scale(dest, destBounds, opaque, opaque.Rect, draw.Src, nil)

	return dest, nil
}
