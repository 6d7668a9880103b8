package stitchgrid

import (
	"image"
)

type EditState int

const (
	// Clean means no manual override since the grid was built or reverted.
	Clean EditState = iota
	// Edited means at least one block was painted.
	Edited
)

func (s EditState) String() string {
	if s == Edited {
		return "edited"
	}
	return "clean"
}

// EditSession paints palette colors onto single blocks of a live grid and
// can revert to the snapshot taken when the session started.
//
// All methods are no-ops on a nil or grid-less session. A session is not
// safe for concurrent use.
type EditSession struct {
	grid     *Grid
	original *Grid
	selected int
	state    EditState
}

// NewEditSession starts editing grid, keeping a copy of it as the original.
func NewEditSession(grid *Grid) *EditSession {
	return newEditSession(grid, grid.Clone())
}

func newEditSession(grid, original *Grid) *EditSession {
	return &EditSession{
		grid:     grid,
		original: original,
		selected: -1,
	}
}

func (s *EditSession) valid() bool {
	return s != nil && s.grid != nil && s.original != nil
}

// Grid returns the live grid.
func (s *EditSession) Grid() *Grid {
	if s == nil {
		return nil
	}
	return s.grid
}

// Original returns the snapshot revert restores.
func (s *EditSession) Original() *Grid {
	if s == nil {
		return nil
	}
	return s.original
}

func (s *EditSession) State() EditState {
	if s == nil {
		return Clean
	}
	return s.state
}

// SelectColor makes c the active paint color. c has to be one of the live
// palette colors; otherwise the selection is left unchanged and false is
// returned.
func (s *EditSession) SelectColor(c Color) bool {
	if !s.valid() {
		return false
	}
	return s.SelectIndex(s.grid.PaletteIndex(c))
}

// SelectIndex makes palette entry i the active paint color.
func (s *EditSession) SelectIndex(i int) bool {
	if !s.valid() || i < 0 || i >= len(s.grid.Palette) {
		return false
	}
	s.selected = i
	return true
}

// Selected returns the active paint color, if any.
func (s *EditSession) Selected() (Color, bool) {
	if !s.valid() || s.selected < 0 {
		return Color{}, false
	}
	return s.grid.Palette[s.selected], true
}

func (s *EditSession) ClearSelection() {
	if s != nil {
		s.selected = -1
	}
}

// Paint sets block (bx, by) to the active color. It does nothing when no
// color is selected or the block is outside the grid. The return value
// reports whether the block changed; painting a block with the color it
// already has changes nothing.
func (s *EditSession) Paint(bx, by int) bool {
	if !s.valid() || s.selected < 0 || !s.grid.InBounds(bx, by) {
		return false
	}
	s.state = Edited
	b := &s.grid.Blocks[by*s.grid.Width+bx]
	if b.Index == s.selected {
		return false
	}
	b.Index = s.selected
	return true
}

// PaintAt paints the block containing the source pixel (x, y).
func (s *EditSession) PaintAt(x, y int) bool {
	if !s.valid() {
		return false
	}
	bx, by := s.grid.Geometry.Block(x, y)
	return s.Paint(bx, by)
}

// PaintStroke paints the blocks under a sampled pointer path and returns the
// number of blocks that changed.
func (s *EditSession) PaintStroke(points []image.Point) int {
	n := 0
	for _, p := range points {
		if s.PaintAt(p.X, p.Y) {
			n++
		}
	}
	return n
}

// Revert restores the live grid from the original snapshot and clears the
// active color.
func (s *EditSession) Revert() {
	if !s.valid() {
		return
	}
	*s.grid = *s.original.Clone()
	s.selected = -1
	s.state = Clean
}
