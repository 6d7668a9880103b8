package stitchgrid

import (
	"image"
)

// Raster is a decoded image as a dense row-major array of opaque colors.
type Raster struct {
	W, H int
	Pix  []Color // len = W*H
}

// NewRaster copies img into a Raster. Alpha is discarded.
func NewRaster(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	r := &Raster{
		W:   w,
		H:   h,
		Pix: make([]Color, w*h),
	}
	switch src := img.(type) {
	case *image.NRGBA:
		for y := range h {
			row := src.Pix[y*src.Stride:]
			for x := range w {
				off := x * 4
				r.Pix[y*w+x] = Color{R: row[off], G: row[off+1], B: row[off+2]}
			}
		}
	default:
		for y := range h {
			for x := range w {
				r.Pix[y*w+x] = FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
	}
	return r
}

// At returns the color at (x, y). Coordinates are not checked.
func (r *Raster) At(x, y int) Color {
	return r.Pix[y*r.W+x]
}

// Image returns the raster as an opaque NRGBA image.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	for i, c := range r.Pix {
		off := i * 4
		img.Pix[off] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = 0xff
	}
	return img
}

// Empty reports whether the raster has no pixels.
func (r *Raster) Empty() bool {
	return r == nil || r.W <= 0 || r.H <= 0
}
