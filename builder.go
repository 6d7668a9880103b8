package stitchgrid

import (
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"
)

// Builder turns one decoded image into a pattern grid. The intermediate
// results of the last Build stay available for inspection.
type Builder struct {
	Raster      *Raster
	Geometry    Geometry
	BlockColors []Color // aggregated color per block, row-major
	Seeds       []Color // palette before mapping, most frequent first
	Grid        *Grid
	Logger      *slog.Logger
}

func NewBuilder(input image.Image) *Builder {
	return NewRasterBuilder(NewRaster(input))
}

func NewRasterBuilder(r *Raster) *Builder {
	return &Builder{
		Raster: r,
		Logger: slog.Default(),
	}
}

// Build runs the pipeline: the palette is extracted from the whole image
// while blocks are aggregated, then every block is mapped onto the palette.
func (b *Builder) Build(opt Options) error {
	geom, err := opt.Validate()
	if err != nil {
		return err
	}
	if b.Raster == nil {
		return &EmptyGridError{Geometry: geom}
	}
	b.Geometry = geom
	logger := b.Logger.With("block", fmt.Sprintf("%dx%d", geom.BlockWidth, geom.BlockHeight))

	if gw, gh := geom.GridSize(b.Raster.W, b.Raster.H); gw == 0 || gh == 0 {
		return &EmptyGridError{Width: b.Raster.W, Height: b.Raster.H, Geometry: geom}
	}

	var (
		wg      sync.WaitGroup
		seeds   []Color
		seedErr error
	)
	if len(opt.Palette) > 0 {
		seeds = slices.Clone(opt.Palette)
	} else {
		wg.Go(func() {
			seeds, seedErr = ExtractPalette(b.Raster, opt.PaletteSize, opt.PaletteMethod, opt.MergeThreshold)
		})
	}

	colors, gw, gh, aggErr := AggregateBlocks(b.Raster, geom, opt.Aggregation, opt.Workers)
	wg.Wait()
	if aggErr != nil {
		return aggErr
	}
	if seedErr != nil {
		return fmt.Errorf("could not extract palette: %w", seedErr)
	}
	logger.Debug("aggregated blocks", "width", gw, "height", gh, "mode", opt.Aggregation)
	logger.Debug("extracted palette", "method", opt.PaletteMethod, "colors", len(seeds))

	grid, err := NewGrid(colors, gw, gh, geom, seeds)
	if err != nil {
		return err
	}
	b.BlockColors = colors
	b.Seeds = seeds
	b.Grid = grid
	logger.Debug("mapped blocks", "palette", len(grid.Palette))
	return nil
}

// Build is a shortcut for NewRasterBuilder(r).Build(opt).
func Build(r *Raster, opt Options) (*Grid, error) {
	b := NewRasterBuilder(r)
	if err := b.Build(opt); err != nil {
		return nil, err
	}
	return b.Grid, nil
}
