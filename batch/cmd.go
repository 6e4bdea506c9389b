package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"silhouette/imgio"
	"silhouette/matte"
	"silhouette/parallel"
	"silhouette/pipeline"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan       string `help:"Source folder to scan" default:"."`
	Dest       string `help:"Destination folder for silhouettes. Relative to scan dir if not absolute." default:"silhouettes"`
	Threshold  uint8  `help:"Channel value a pixel must exceed on red, green or blue to become opaque" default:"10"`
	Workers    int    `help:"Images processed at once, 0 for one per CPU" default:"0"`
	Width      int    `help:"Max width before thresholding, 0 to keep" default:"0" group:"resize"`
	Height     int    `help:"Max height before thresholding, 0 to keep" default:"0" group:"resize"`
	Format     string `help:"Output format" enum:"png,tiff,gif" default:"png"`
	AutoOrient bool   `help:"Apply EXIF orientation of each source" default:"false"`
	NoClobber  bool   `help:"Fail sources whose destination file already exists" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}
	if c.Dest == c.Scan {
		return fmt.Errorf("destination folder must differ from scan folder: %q", c.Dest)
	}

	switch {
	case c.Width < 0:
		return fmt.Errorf("invalid resize width: %d", c.Width)
	case c.Height < 0:
		return fmt.Errorf("invalid resize height: %d", c.Height)
	}

	if !slices.Contains(imgio.Formats, c.Format) {
		return fmt.Errorf("output format %q cannot store transparency", c.Format)
	}

	return nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	pool := parallel.Start(c.Workers)

	var processedCount, errCount atomic.Uint64
	// ReadDir sorts by name, so the first source claiming a destination
	// always wins.
	claimed := make(map[string]string, len(files))
	for _, file := range files {
		if file.IsDir() || strings.HasPrefix(file.Name(), ".") {
			continue
		}

		job := c.job(file.Name())
		if other, ok := claimed[job.Dest]; ok {
			errCount.Add(1)
			logger.Error("destination already used by another source", "file", job.Src,
				"dest", job.Dest, "other", other)
			continue
		}
		claimed[job.Dest] = job.Src

		pool.Do(func() {
			fileLog := logger.With("file", job.Src)

			if err := pipeline.Run(fileLog, job); err != nil {
				errCount.Add(1)
				fileLog.Error("could not process image", "error", err)
				return
			}
			processedCount.Add(1)
		})
	}

	pool.Wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	logger.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) job(fileName string) pipeline.Job {
	ext := filepath.Ext(fileName)
	destName := fmt.Sprintf("%s.%s", fileName[:len(fileName)-len(ext)], c.Format)

	return pipeline.Job{
		Src:        filepath.Join(c.Scan, fileName),
		Dest:       filepath.Join(c.Dest, destName),
		Format:     c.Format,
		Width:      c.Width,
		Height:     c.Height,
		Matte:      c.matteOptions(),
		AutoOrient: c.AutoOrient,
		NoClobber:  c.NoClobber,
	}
}

// matteOptions keeps the default single row worker: images already run in
// parallel.
func (c *CLICmd) matteOptions() matte.Options {
	opts := matte.DefaultOptions()
	opts.Threshold = c.Threshold
	return opts
}
