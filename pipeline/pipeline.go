// Package pipeline runs one source image through decode, optional resize,
// the matte filter and encode.
package pipeline

import (
	"fmt"
	"log/slog"

	"silhouette/imgio"
	"silhouette/matte"
)

type Job struct {
	Src  string
	Dest string
	// Format overrides the output format derived from Dest.
	Format string
	// Width and Height bound the image before thresholding; zero keeps the
	// source size.
	Width, Height int
	Matte         matte.Options
	AutoOrient    bool
	NoClobber     bool
}

// Run executes job. Decode and encode failures are returned unwrapped as
// *imgio.DecodeError and *imgio.EncodeError.
func Run(logger *slog.Logger, job Job) error {
	logger = logger.With("src", job.Src, "dest", job.Dest)

	img, err := imgio.Load(job.Src, imgio.LoadOptions{AutoOrient: job.AutoOrient})
	if err != nil {
		return err
	}
	b := img.Bounds()
	logger.Debug("decoded", "width", b.Dx(), "height", b.Dy())

	if job.Width != 0 || job.Height != 0 {
		if img, err = Resize(logger, img, job.Width, job.Height); err != nil {
			return fmt.Errorf("could not resize %q: %w", job.Src, err)
		}
	}

	out := matte.Apply(img, job.Matte)
	logger.Debug("thresholded", "threshold", job.Matte.Threshold, "workers", job.Matte.Workers)

	if err := imgio.Save(out, job.Dest, imgio.SaveOptions{
		Format:    job.Format,
		NoClobber: job.NoClobber,
	}); err != nil {
		return err
	}

	logger.Info("saved", "width", out.Rect.Dx(), "height", out.Rect.Dy())
	return nil
}
