package stitchgrid

import (
	"image"
	"testing"
)

func testGrid() *Grid {
	a, b, c := Color{255, 0, 0}, Color{0, 0, 255}, Color{0, 200, 0}
	return &Grid{
		Width: 3, Height: 2, Geometry: Geometry{BlockWidth: 4, BlockHeight: 3},
		Palette: []Color{a, b, c},
		Blocks: []Block{
			{a, 0}, {a, 0}, {b, 1},
			{b, 1}, {c, 2}, {a, 0},
		},
	}
}

func TestPaintRequiresSelection(t *testing.T) {
	s := NewEditSession(testGrid())
	if s.Paint(0, 0) {
		t.Error("painted without a selected color")
	}
	if s.State() != Clean {
		t.Errorf("state = %s, want clean", s.State())
	}
	if _, ok := s.Selected(); ok {
		t.Error("new session has a selection")
	}
}

func TestPaintSetsIndex(t *testing.T) {
	g := testGrid()
	s := NewEditSession(g)
	if !s.SelectColor(Color{0, 200, 0}) {
		t.Fatal("SelectColor rejected a palette color")
	}
	if !s.Paint(1, 0) {
		t.Fatal("Paint reported no change")
	}
	if b, _ := g.At(1, 0); b.Index != 2 {
		t.Errorf("block index = %d, want 2", b.Index)
	}
	if c, _ := g.ColorAt(1, 0); c != (Color{0, 200, 0}) {
		t.Errorf("ColorAt = %v", c)
	}
	if s.State() != Edited {
		t.Errorf("state = %s, want edited", s.State())
	}
	// the original snapshot is untouched
	if b, _ := s.Original().At(1, 0); b.Index != 0 {
		t.Errorf("original changed to %d", b.Index)
	}

	// painting again is idempotent
	before := g.Clone()
	if s.Paint(1, 0) {
		t.Error("second Paint reported a change")
	}
	if !g.Equal(before) {
		t.Error("second Paint changed the grid")
	}
	if s.State() != Edited {
		t.Errorf("state = %s after a no-op paint, want edited", s.State())
	}
}

func TestPaintSameColorMarksEdited(t *testing.T) {
	s := NewEditSession(testGrid())
	s.SelectIndex(0)
	if s.Paint(0, 0) {
		t.Error("painting the current color reported a change")
	}
	if s.State() != Edited {
		t.Errorf("state = %s, want edited", s.State())
	}
}

func TestPaintOutOfBounds(t *testing.T) {
	g := testGrid()
	before := g.Clone()
	s := NewEditSession(g)
	s.SelectIndex(1)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		if s.Paint(p[0], p[1]) {
			t.Errorf("Paint(%d,%d) changed a block", p[0], p[1])
		}
	}
	if !g.Equal(before) || s.State() != Clean {
		t.Error("out of bounds paint modified the session")
	}
}

func TestSelectColorNotInPalette(t *testing.T) {
	s := NewEditSession(testGrid())
	s.SelectIndex(2)
	if s.SelectColor(Color{1, 2, 3}) {
		t.Error("accepted a color outside the palette")
	}
	if c, ok := s.Selected(); !ok || c != (Color{0, 200, 0}) {
		t.Errorf("selection changed to %v, %v", c, ok)
	}
	if s.SelectIndex(3) || s.SelectIndex(-1) {
		t.Error("accepted an out of range index")
	}
	s.ClearSelection()
	if _, ok := s.Selected(); ok {
		t.Error("selection survived ClearSelection")
	}
}

func TestRevert(t *testing.T) {
	g := testGrid()
	s := NewEditSession(g)
	orig := g.Clone()

	s.SelectIndex(1)
	s.Paint(0, 0)
	s.Paint(2, 1)
	s.Revert()
	if !g.Equal(orig) {
		t.Error("revert did not restore the original")
	}
	if s.State() != Clean {
		t.Errorf("state = %s, want clean", s.State())
	}
	if _, ok := s.Selected(); ok {
		t.Error("revert kept the selection")
	}

	s.Revert()
	if !g.Equal(orig) {
		t.Error("second revert changed the grid")
	}

	// the live grid stays independent of the snapshot after a revert
	s.SelectIndex(2)
	s.Paint(0, 0)
	if b, _ := s.Original().At(0, 0); b.Index != 0 {
		t.Error("painting after revert reached the original")
	}
}

func TestPaintAtAndStroke(t *testing.T) {
	g := testGrid() // blocks are 4x3 pixels
	s := NewEditSession(g)
	s.SelectIndex(2)

	if !s.PaintAt(9, 1) {
		t.Error("PaintAt(9,1) did not paint block (2,0)")
	}
	if b, _ := g.At(2, 0); b.Index != 2 {
		t.Errorf("block (2,0) index = %d", b.Index)
	}
	if s.PaintAt(-3, 1) || s.PaintAt(100, 1) {
		t.Error("PaintAt outside the grid painted")
	}

	stroke := []image.Point{{0, 0}, {1, 1}, {3, 2}, {4, 0}, {0, 3}, {5, 4}}
	// (0,0) x3 then (1,0), (0,1) and (1,1) which is already index 2
	if n := s.PaintStroke(stroke); n != 3 {
		t.Errorf("PaintStroke changed %d blocks, want 3", n)
	}
	for _, want := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if b, _ := g.At(want[0], want[1]); b.Index != 2 {
			t.Errorf("block %v index = %d", want, b.Index)
		}
	}
}

func TestNilSession(t *testing.T) {
	var s *EditSession
	s.Revert()
	s.ClearSelection()
	if s.SelectColor(Color{}) || s.SelectIndex(0) || s.Paint(0, 0) || s.PaintAt(0, 0) {
		t.Error("nil session accepted an operation")
	}
	if s.PaintStroke([]image.Point{{}}) != 0 || s.State() != Clean || s.Grid() != nil {
		t.Error("nil session reports state")
	}

	empty := &EditSession{}
	empty.Revert()
	if empty.SelectIndex(0) || empty.Paint(0, 0) {
		t.Error("grid-less session accepted an operation")
	}
}
