package convert

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"silhouette/imgio"
	"silhouette/matte"
	"silhouette/pipeline"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Src        string `help:"Source image" default:"Crack_Future.png"`
	Dest       string `help:"Destination image. Format is taken from the extension unless --format is given." default:"Crack_Transparent_1024.png"`
	Threshold  uint8  `help:"Channel value a pixel must exceed on red, green or blue to become opaque" default:"10"`
	Workers    int    `help:"Goroutines sharing the rows, 0 for one per CPU" default:"0"`
	Width      int    `help:"Max width before thresholding, 0 to keep" default:"0" group:"resize"`
	Height     int    `help:"Max height before thresholding, 0 to keep" default:"0" group:"resize"`
	Format     string `help:"Output format, empty to use the destination extension" default:""`
	AutoOrient bool   `help:"Apply EXIF orientation of the source" default:"false"`
	NoClobber  bool   `help:"Fail instead of replacing an existing destination" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Src == "":
		return fmt.Errorf("no source image given")
	case c.Dest == "":
		return fmt.Errorf("no destination image given")
	case c.Width < 0:
		return fmt.Errorf("invalid resize width: %d", c.Width)
	case c.Height < 0:
		return fmt.Errorf("invalid resize height: %d", c.Height)
	}

	if err := checkFormat(c.Format, c.Dest); err != nil {
		return err
	}

	src, err := filepath.Abs(c.Src)
	if err != nil {
		return fmt.Errorf("invalid source path %q: %w", c.Src, err)
	}
	dest, err := filepath.Abs(c.Dest)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Dest, err)
	}
	if src == dest {
		return fmt.Errorf("source and destination are the same file: %q", src)
	}
	c.Src, c.Dest = src, dest

	return nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	return pipeline.Run(logger, c.job())
}

func (c *CLICmd) job() pipeline.Job {
	return pipeline.Job{
		Src:        c.Src,
		Dest:       c.Dest,
		Format:     c.Format,
		Width:      c.Width,
		Height:     c.Height,
		Matte:      c.matteOptions(),
		AutoOrient: c.AutoOrient,
		NoClobber:  c.NoClobber,
	}
}

func (c *CLICmd) matteOptions() matte.Options {
	opts := matte.DefaultOptions()
	opts.Threshold = c.Threshold
	opts.Workers = c.Workers
	return opts
}

// checkFormat rejects output formats Save would refuse, before any decoding
// work is done.
func checkFormat(format, dest string) error {
	if format == "" {
		format = imgio.FormatFromPath(dest)
		if format == "" {
			return nil
		}
	}
	if !slices.Contains(imgio.Formats, format) {
		return fmt.Errorf("output format %q cannot store transparency, use one of %s",
			format, strings.Join(imgio.Formats, ", "))
	}
	return nil
}
