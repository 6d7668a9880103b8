package stitchgrid

import (
	"cmp"
	"fmt"
	"slices"
)

// Block is one cell of the pattern.
type Block struct {
	Color Color // aggregated source color
	Index int   // palette entry the block is stitched with
}

// Swatch is a palette color with its share of the grid.
type Swatch struct {
	Index      int
	Color      Color
	Count      int
	Percentage float64
}

// Grid is the pattern: a row-major array of blocks plus the palette their
// indices point into. The palette index is the authoritative state of a
// block; rendered bitmaps are derived from it.
type Grid struct {
	Width, Height int
	Geometry      Geometry
	Palette       []Color
	Blocks        []Block
}

// NewGrid maps block colors onto palette and builds the grid. colors must
// hold width*height entries in row-major order; empty images are caught
// earlier by AggregateBlocks with an *EmptyGridError. Palette
// entries no block maps to are dropped and the rest are ordered by
// descending usage, so Palette and Usage agree right after construction.
func NewGrid(colors []Color, width, height int, geom Geometry, palette []Color) (*Grid, error) {
	if width <= 0 || height <= 0 || len(colors) != width*height {
		return nil, fmt.Errorf("%w: %d block colors for a %dx%d grid",
			ErrInvalidOptions, len(colors), width, height)
	}
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}

	indices := MapBlocks(colors, palette)
	counts := make([]int, len(palette))
	for _, idx := range indices {
		counts[idx]++
	}

	order := make([]int, 0, len(palette))
	for i, n := range counts {
		if n > 0 {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(counts[b], counts[a])
	})

	remap := make([]int, len(palette))
	g := &Grid{
		Width:    width,
		Height:   height,
		Geometry: geom,
		Palette:  make([]Color, len(order)),
		Blocks:   make([]Block, len(colors)),
	}
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
		g.Palette[newIdx] = palette[oldIdx]
	}
	for i, c := range colors {
		g.Blocks[i] = Block{Color: c, Index: remap[indices[i]]}
	}
	return g, nil
}

func (g *Grid) InBounds(bx, by int) bool {
	return g != nil && bx >= 0 && by >= 0 && bx < g.Width && by < g.Height
}

// At returns the block at (bx, by).
func (g *Grid) At(bx, by int) (Block, bool) {
	if !g.InBounds(bx, by) {
		return Block{}, false
	}
	return g.Blocks[by*g.Width+bx], true
}

// ColorAt returns the palette color the block at (bx, by) is stitched with.
func (g *Grid) ColorAt(bx, by int) (Color, bool) {
	b, ok := g.At(bx, by)
	if !ok || b.Index < 0 || b.Index >= len(g.Palette) {
		return Color{}, false
	}
	return g.Palette[b.Index], true
}

// PaletteIndex returns the index of c in the palette, or -1.
func (g *Grid) PaletteIndex(c Color) int {
	return slices.Index(g.Palette, c)
}

// Usage tallies the blocks per palette entry. Entries are sorted by
// descending percentage; entries with the same share keep palette order.
func (g *Grid) Usage() []Swatch {
	if g == nil || len(g.Blocks) == 0 {
		return nil
	}
	out := make([]Swatch, len(g.Palette))
	for i, c := range g.Palette {
		out[i] = Swatch{Index: i, Color: c}
	}
	for _, b := range g.Blocks {
		out[b.Index].Count++
	}
	total := float64(len(g.Blocks))
	for i := range out {
		out[i].Percentage = 100 * float64(out[i].Count) / total
	}
	slices.SortStableFunc(out, func(a, b Swatch) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	c := *g
	c.Palette = slices.Clone(g.Palette)
	c.Blocks = slices.Clone(g.Blocks)
	return &c
}

// Equal reports whether both grids have the same geometry, palette and
// block assignment.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.Width == o.Width && g.Height == o.Height && g.Geometry == o.Geometry &&
		slices.Equal(g.Palette, o.Palette) && slices.Equal(g.Blocks, o.Blocks)
}
