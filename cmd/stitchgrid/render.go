package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/setanarut/stitchgrid"
	"github.com/setanarut/stitchgrid/utils"
)

type RenderCmd struct {
	Input       string   `arg:"" help:"Source image" type:"existingfile"`
	Out         string   `help:"Output image (png, bmp or tiff) or directory. Defaults to a timestamped png in the current directory" short:"o"`
	BlockSize   int      `help:"Block size in source pixels" default:"8" short:"b"`
	Colors      int      `help:"Number of palette colors" default:"2" short:"c"`
	Gauge       string   `help:"Swatch gauge as horizontal:vertical stitches, e.g. 34:37" short:"g"`
	Aggregation string   `help:"Block color policy" enum:"weighted,median" default:"weighted"`
	Method      string   `help:"Palette extraction method" enum:"frequency,kmeans,dominantcolor" default:"frequency"`
	Palette     string   `help:"Fixed palette from a RIFF .pal file instead of extracting one" group:"palette"`
	PaletteOut  string   `help:"Write the resulting palette as a RIFF .pal file" group:"palette"`
	Swatches    string   `help:"Write the resulting palette as a png swatch strip" group:"palette"`
	Layers      string   `help:"Directory to write one png layer per palette color into"`
	MaxSize     int      `help:"Longest side the source is reduced to before gridding" default:"1200"`
	Workers     int      `help:"Aggregation goroutines, 0 for one per CPU" default:"0"`
	Paint       []string `help:"Repaint a block after building, as bx,by=#rrggbb with a palette color" sep:"none"`

	options stitchgrid.Options `kong:"-"`
	paints  []paintOp          `kong:"-"`
}

type paintOp struct {
	bx, by int
	color  stitchgrid.Color
}

func (c *RenderCmd) Validate(kctx *kong.Context) error {
	opt := stitchgrid.DefaultOptions()
	opt.BlockSize = c.BlockSize
	opt.PaletteSize = c.Colors
	opt.Workers = c.Workers

	if c.Gauge != "" {
		gauge, err := parseGauge(c.Gauge)
		if err != nil {
			return err
		}
		opt.Gauge = gauge
	}

	switch c.Aggregation {
	case "median":
		opt.Aggregation = stitchgrid.AggregateMedian
	default:
		opt.Aggregation = stitchgrid.AggregateWeighted
	}

	switch c.Method {
	case "kmeans":
		opt.PaletteMethod = stitchgrid.PaletteMethodKMeans
	case "dominantcolor":
		opt.PaletteMethod = stitchgrid.PaletteMethodDominantColor
	default:
		opt.PaletteMethod = stitchgrid.PaletteMethodFrequency
	}

	if c.Palette != "" {
		pal, err := utils.LoadPaletteFile(c.Palette)
		if err != nil {
			return err
		}
		if len(pal) == 0 {
			return fmt.Errorf("palette %q has no colors", c.Palette)
		}
		opt.Palette = pal
	}

	if _, err := opt.Validate(); err != nil {
		return err
	}
	c.options = opt

	c.paints = c.paints[:0]
	for _, p := range c.Paint {
		op, err := parsePaint(p)
		if err != nil {
			return err
		}
		c.paints = append(c.paints, op)
	}

	if c.MaxSize < 0 {
		return fmt.Errorf("invalid max size: %d", c.MaxSize)
	}
	return nil
}

func (c *RenderCmd) Run(logger *slog.Logger) error {
	logger = logger.With("file", c.Input)

	img, err := utils.ReadImage(c.Input)
	if err != nil {
		return err
	}
	src := img.Bounds()
	img = utils.Fit(img, c.MaxSize)
	if dst := img.Bounds(); dst.Size() != src.Size() {
		logger.Info("resized", "from", src.Size(), "to", dst.Size())
	}

	studio := stitchgrid.NewStudio(logger)
	studio.LoadImage(img)
	grid, err := studio.Build(c.options)
	if err != nil {
		return fmt.Errorf("could not build pattern: %w", err)
	}
	logger.Info("pattern size", "width", grid.Width, "height", grid.Height,
		"block", fmt.Sprintf("%dx%d", grid.Geometry.BlockWidth, grid.Geometry.BlockHeight))

	painted := 0
	for _, op := range c.paints {
		if !studio.SelectColor(op.color) {
			logger.Warn("paint color is not in the palette", "color", op.color.Hex())
			continue
		}
		if studio.Paint(op.bx, op.by) {
			painted++
		}
	}
	if len(c.paints) > 0 {
		logger.Info("painted blocks", "requested", len(c.paints), "changed", painted, "state", studio.State())
	}

	for _, s := range studio.Usage() {
		logger.Info("color", "rgb", s.Color.String(), "hex", s.Color.Hex(),
			"blocks", s.Count, "percent", fmt.Sprintf("%.1f%%", s.Percentage))
	}

	out := outputPath(c.Out, time.Now())
	if err := utils.SaveImage(studio.Render(), out); err != nil {
		return err
	}
	logger.Info("saved pattern", "to", out)

	live := studio.Grid()
	if c.PaletteOut != "" {
		if err := utils.SavePaletteFile(live.Palette, c.PaletteOut); err != nil {
			return err
		}
		logger.Info("saved palette", "to", c.PaletteOut)
	}
	if c.Swatches != "" {
		if err := utils.SavePalette(live.Palette, 64, c.Swatches); err != nil {
			return err
		}
		logger.Info("saved swatches", "to", c.Swatches)
	}
	if c.Layers != "" {
		if err := os.MkdirAll(c.Layers, 0o755); err != nil {
			return fmt.Errorf("unable to create layer folder %q: %w", c.Layers, err)
		}
		if err := utils.SaveLayers(stitchgrid.Layers(live), c.Layers); err != nil {
			return err
		}
		logger.Info("saved layers", "to", c.Layers, "count", len(live.Palette))
	}
	return nil
}

func outputPath(out string, now time.Time) string {
	if out == "" {
		return utils.PatternFileName(now)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, utils.PatternFileName(now))
	}
	return out
}

// parseGauge reads "H:V" (also "HxV" or "H/V").
func parseGauge(s string) (stitchgrid.Gauge, error) {
	h, v, ok := strings.Cut(s, ":")
	if !ok {
		if h, v, ok = strings.Cut(s, "x"); !ok {
			h, v, ok = strings.Cut(s, "/")
		}
	}
	if !ok {
		return stitchgrid.Gauge{}, fmt.Errorf("invalid gauge %q, should be horizontal:vertical", s)
	}
	hg, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return stitchgrid.Gauge{}, fmt.Errorf("invalid horizontal gauge %q: %w", h, err)
	}
	vg, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return stitchgrid.Gauge{}, fmt.Errorf("invalid vertical gauge %q: %w", v, err)
	}
	return stitchgrid.Gauge{Horizontal: hg, Vertical: vg}, nil
}

// parsePaint reads "bx,by=#rrggbb".
func parsePaint(s string) (paintOp, error) {
	pos, hex, ok := strings.Cut(s, "=")
	if !ok {
		return paintOp{}, fmt.Errorf("invalid paint %q, should be bx,by=#rrggbb", s)
	}
	var op paintOp
	if _, err := fmt.Sscanf(pos, "%d,%d", &op.bx, &op.by); err != nil {
		return paintOp{}, fmt.Errorf("invalid paint position %q: %w", pos, err)
	}
	c, err := stitchgrid.ParseHex(strings.TrimSpace(hex))
	if err != nil {
		return paintOp{}, err
	}
	op.color = c
	return op, nil
}
