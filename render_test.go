package stitchgrid

import (
	"image"
	"image/color"
	"testing"
)

func rgba(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func TestRender(t *testing.T) {
	g := testGrid() // 3x2 blocks of 4x3 pixels
	img := Render(g)
	if b := img.Bounds(); b != image.Rect(0, 0, 12, 6) {
		t.Fatalf("bounds = %v", b)
	}

	for by := range g.Height {
		for bx := range g.Width {
			c, _ := g.ColorAt(bx, by)
			r := g.Bounds(bx, by)
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					want := rgba(c)
					if x == r.Min.X || y == r.Min.Y {
						want = rgba(c.Complement())
					}
					if got := img.RGBAAt(x, y); got != want {
						t.Errorf("block (%d,%d) pixel (%d,%d) = %v, want %v", bx, by, x, y, got, want)
					}
				}
			}
		}
	}

	// rendering follows edits
	s := NewEditSession(g)
	s.SelectIndex(1)
	s.Paint(0, 0)
	if got := Render(g).RGBAAt(1, 1); got != rgba(Color{0, 0, 255}) {
		t.Errorf("painted block renders as %v", got)
	}
}

// fillCount returns how many pixels of block (bx, by) carry its palette color.
func fillCount(img *image.RGBA, g *Grid, bx, by int) int {
	c, _ := g.ColorAt(bx, by)
	r := g.Bounds(bx, by)
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == rgba(c) {
				n++
			}
		}
	}
	return n
}

func TestRenderSmallBlocksKeepFill(t *testing.T) {
	red, blue := Color{255, 0, 0}, Color{0, 0, 255}
	opt := DefaultOptions()
	opt.BlockSize = 2
	opt.PaletteSize = 2

	for _, tc := range []struct {
		name  string
		gauge Gauge
		w, h  int
		geom  Geometry
		fill  int // fill pixels per block
	}{
		{"square", Gauge{}, 4, 4, Geometry{2, 2}, 1},
		{"flat", Gauge{Horizontal: 10, Vertical: 20}, 4, 4, Geometry{2, 1}, 1},
		{"tall", Gauge{Horizontal: 30, Vertical: 20}, 4, 6, Geometry{2, 3}, 2},
	} {
		opt.Gauge = tc.gauge
		g, err := Build(twoColorRaster(tc.w, tc.h, red, blue), opt)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if g.Geometry != tc.geom {
			t.Fatalf("%s: geometry = %+v, want %+v", tc.name, g.Geometry, tc.geom)
		}
		img := Render(g)
		for by := range g.Height {
			for bx := range g.Width {
				if n := fillCount(img, g, bx, by); n != tc.fill {
					t.Errorf("%s: block (%d,%d) keeps %d fill pixels, want %d", tc.name, bx, by, n, tc.fill)
				}
			}
		}
	}
}

func TestRenderTwoColorExample(t *testing.T) {
	red, blue := Color{255, 0, 0}, Color{0, 0, 255}
	opt := DefaultOptions()
	opt.BlockSize = 2
	opt.PaletteSize = 2
	g, err := Build(twoColorRaster(4, 4, red, blue), opt)
	if err != nil {
		t.Fatal(err)
	}
	img := Render(g)
	// the bottom right pixel of each 2x2 block is fill
	for _, tc := range []struct {
		x, y int
		want Color
	}{
		{1, 1, red}, {3, 1, red}, {1, 3, blue}, {3, 3, blue},
	} {
		if got := img.RGBAAt(tc.x, tc.y); got != rgba(tc.want) {
			t.Errorf("pixel (%d,%d) = %v, want %v", tc.x, tc.y, got, rgba(tc.want))
		}
	}
}

func TestLayers(t *testing.T) {
	g := testGrid()
	layers := Layers(g)
	if len(layers) != len(g.Palette) {
		t.Fatalf("got %d layers, want %d", len(layers), len(g.Palette))
	}
	for by := range g.Height {
		for bx := range g.Width {
			b, _ := g.At(bx, by)
			p := g.Bounds(bx, by).Min.Add(image.Pt(1, 1))
			for i, l := range layers {
				got := l.NRGBAAt(p.X, p.Y)
				if i == b.Index {
					c := g.Palette[i]
					if got != (color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}) {
						t.Errorf("layer %d at block (%d,%d) = %v", i, bx, by, got)
					}
				} else if got.A != 0 {
					t.Errorf("layer %d is opaque at block (%d,%d)", i, bx, by)
				}
			}
		}
	}
	if Layers(nil) != nil {
		t.Error("nil grid has layers")
	}
}
