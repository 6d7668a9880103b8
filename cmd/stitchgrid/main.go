package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Verbose bool      `help:"Log per-stage details" short:"v"`
	Render  RenderCmd `cmd:"" help:"Turn an image into a stitch pattern"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("stitchgrid"),
		kong.Description("Reduce an image to a small palette on a gauge-aware block grid for cross-stitch and knitting charts."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := kctx.Run(logger); err != nil {
		slog.Error("failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
