package stitchgrid

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Bounds returns the pixel rectangle of block (bx, by) in rendered output.
func (g *Grid) Bounds(bx, by int) image.Rectangle {
	x0, y0 := bx*g.Geometry.BlockWidth, by*g.Geometry.BlockHeight
	return image.Rect(x0, y0, x0+g.Geometry.BlockWidth, y0+g.Geometry.BlockHeight)
}

// Render draws the pattern at source resolution: every block filled with
// its palette color and separated from its neighbours by a one pixel line
// along its top and left edge in the complement of that color. An edge is
// left out when the block is only one pixel thick in that direction, so the
// fill always shows.
func Render(g *Grid) *image.RGBA {
	if g == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Width*g.Geometry.BlockWidth, g.Height*g.Geometry.BlockHeight))
	for by := range g.Height {
		for bx := range g.Width {
			c, ok := g.ColorAt(bx, by)
			if !ok {
				continue
			}
			r := g.Bounds(bx, by)
			draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
			separator(img, r, c.Complement())
		}
	}
	return img
}

func separator(img *image.RGBA, r image.Rectangle, c Color) {
	rgba := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	if r.Dy() > 1 {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y, rgba)
		}
	}
	if r.Dx() > 1 {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X, y, rgba)
		}
	}
}

// Layers returns one image per palette entry, opaque in that entry's color
// where blocks use it and transparent elsewhere. Stacking them in any order
// reproduces the pattern without outlines.
func Layers(g *Grid) []*image.NRGBA {
	if g == nil || len(g.Palette) == 0 {
		return nil
	}
	out := make([]*image.NRGBA, len(g.Palette))
	rect := image.Rect(0, 0, g.Width*g.Geometry.BlockWidth, g.Height*g.Geometry.BlockHeight)
	for i := range out {
		out[i] = image.NewNRGBA(rect)
	}
	for by := range g.Height {
		for bx := range g.Width {
			b, _ := g.At(bx, by)
			c := g.Palette[b.Index]
			draw.Draw(out[b.Index], g.Bounds(bx, by),
				image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}), image.Point{}, draw.Src)
		}
	}
	return out
}
