package stitchgrid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidOptions = errors.New("invalid options")
	ErrEmptyPalette   = errors.New("no colors to build a palette from")
	ErrStale          = errors.New("build superseded by a newer one")
)

// DecodeError wraps a failure to decode the source image bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EmptyGridError reports a geometry that leaves no complete block in one of
// the image axes.
type EmptyGridError struct {
	Width, Height int
	Geometry      Geometry
}

func (e *EmptyGridError) Error() string {
	return fmt.Sprintf("image %dx%d has no room for a %dx%d block",
		e.Width, e.Height, e.Geometry.BlockWidth, e.Geometry.BlockHeight)
}

const (
	MinBlockSize   = 2
	MaxBlockSize   = 30
	MinPaletteSize = 2
	MaxPaletteSize = 7

	defaultGauge = 10.0
)

type Aggregation int

const (
	// AggregateWeighted averages each block with weights falling off from
	// the middle of its scan order.
	AggregateWeighted Aggregation = iota
	// AggregateMedian takes the per-channel median of each block.
	AggregateMedian
)

func (a Aggregation) String() string {
	switch a {
	case AggregateMedian:
		return "median"
	default:
		return "weighted"
	}
}

type PaletteMethod int

const (
	PaletteMethodFrequency PaletteMethod = iota
	PaletteMethodKMeans
	PaletteMethodDominantColor
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "frequency"
	}
}

// Gauge is the stitch count of a swatch in both directions. The zero value
// means no gauge, i.e. square blocks.
type Gauge struct {
	Horizontal float64
	Vertical   float64
}

// IsZero reports whether no gauge was given.
func (g Gauge) IsZero() bool {
	return g.Horizontal == 0 && g.Vertical == 0
}

// Ratio returns horizontal/vertical. A non-positive side counts as 10
// stitches, which is what the gauge form falls back to.
func (g Gauge) Ratio() float64 {
	if g.IsZero() {
		return 1
	}
	h, v := g.Horizontal, g.Vertical
	if h <= 0 || math.IsNaN(h) {
		h = defaultGauge
	}
	if v <= 0 || math.IsNaN(v) {
		v = defaultGauge
	}
	return h / v
}

func (g Gauge) String() string {
	if g.IsZero() {
		return "1:1"
	}
	return fmt.Sprintf("%g:%g", g.Horizontal, g.Vertical)
}

// Geometry is the size of one block in source pixels.
type Geometry struct {
	BlockWidth  int
	BlockHeight int
}

// NewGeometry derives the block size for a base size and gauge. The block
// keeps its width and stretches its height by the gauge ratio.
func NewGeometry(size int, gauge Gauge) (Geometry, error) {
	g := Geometry{
		BlockWidth:  size,
		BlockHeight: int(math.Round(float64(size) * gauge.Ratio())),
	}
	if g.BlockWidth < 1 || g.BlockHeight < 1 {
		return g, fmt.Errorf("%w: block %dx%d from size %d and gauge %s",
			ErrInvalidOptions, g.BlockWidth, g.BlockHeight, size, gauge)
	}
	return g, nil
}

// GridSize returns the number of whole blocks that fit in a w x h image.
func (g Geometry) GridSize(w, h int) (int, int) {
	return w / g.BlockWidth, h / g.BlockHeight
}

// Block returns the block containing the source pixel (x, y).
func (g Geometry) Block(x, y int) (int, int) {
	if x < 0 || y < 0 {
		return -1, -1
	}
	return x / g.BlockWidth, y / g.BlockHeight
}

type Options struct {
	// Base block size in source pixels. Must be in [2,30].
	BlockSize int
	// Number of palette colors to keep. Must be in [2,7].
	// The palette can end up smaller when the image has fewer distinct colors.
	PaletteSize int
	// Swatch gauge used to skew the block height. Zero value means 1:1.
	Gauge Gauge
	// Per-block representative color policy.
	Aggregation Aggregation
	// Palette extraction policy. Only PaletteMethodFrequency is deterministic.
	PaletteMethod PaletteMethod
	// Lab distance under which colors are merged during extraction.
	// Zero means MergeThreshold.
	MergeThreshold float64
	// Goroutines used for block aggregation. 0 uses GOMAXPROCS, 1 runs inline.
	Workers int
	// Fixed palette of at most MaxPaletteSize colors. When set, extraction is
	// skipped and PaletteSize is ignored.
	Palette []Color
}

func DefaultOptions() Options {
	return Options{
		BlockSize:      8,
		PaletteSize:    2,
		Aggregation:    AggregateWeighted,
		PaletteMethod:  PaletteMethodFrequency,
		MergeThreshold: MergeThreshold,
	}
}

// Validate checks parameter ranges and returns the block geometry.
func (o Options) Validate() (Geometry, error) {
	if o.BlockSize < MinBlockSize || o.BlockSize > MaxBlockSize {
		return Geometry{}, fmt.Errorf("%w: block size %d not in [%d,%d]",
			ErrInvalidOptions, o.BlockSize, MinBlockSize, MaxBlockSize)
	}
	if len(o.Palette) == 0 && (o.PaletteSize < MinPaletteSize || o.PaletteSize > MaxPaletteSize) {
		return Geometry{}, fmt.Errorf("%w: palette size %d not in [%d,%d]",
			ErrInvalidOptions, o.PaletteSize, MinPaletteSize, MaxPaletteSize)
	}
	if len(o.Palette) > MaxPaletteSize {
		return Geometry{}, fmt.Errorf("%w: fixed palette has %d colors, at most %d allowed",
			ErrInvalidOptions, len(o.Palette), MaxPaletteSize)
	}
	switch o.Aggregation {
	case AggregateWeighted, AggregateMedian:
	default:
		return Geometry{}, fmt.Errorf("%w: unknown aggregation %d", ErrInvalidOptions, o.Aggregation)
	}
	switch o.PaletteMethod {
	case PaletteMethodFrequency, PaletteMethodKMeans, PaletteMethodDominantColor:
	default:
		return Geometry{}, fmt.Errorf("%w: unknown palette method %d", ErrInvalidOptions, o.PaletteMethod)
	}
	if o.MergeThreshold < 0 {
		return Geometry{}, fmt.Errorf("%w: negative merge threshold %g", ErrInvalidOptions, o.MergeThreshold)
	}
	return NewGeometry(o.BlockSize, o.Gauge)
}
