package main

import (
	"log/slog"
	"os"

	"silhouette/batch"
	"silhouette/convert"

	"github.com/alecthomas/kong"
)

type cli struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogJSON  bool   `help:"Log in JSON format" default:"false"`

	Convert convert.CLICmd `cmd:"" default:"withargs" help:"Turn one image into a black silhouette on a transparent background"`
	Batch   batch.CLICmd   `cmd:"" help:"Turn every image in a folder into a silhouette"`
}

func newLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("silhouette"),
		kong.Description("Threshold images into opaque black silhouettes with transparent backgrounds."),
		kong.UsageOnError(),
	)

	logger := newLogger(c.LogLevel, c.LogJSON)
	slog.SetDefault(logger)

	if err := kctx.Run(logger); err != nil {
		logger.Error("failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
