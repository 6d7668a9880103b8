package stitchgrid

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// MergeThreshold is the Lab distance under which two colors are considered
// the same thread during palette extraction.
const MergeThreshold = 20.0

// Color is an opaque 8-bit sRGB color.
type Color struct {
	R, G, B uint8
}

// FromColor drops alpha and returns the straight (non premultiplied) RGB of c.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Complement returns the channel complement, used for block outlines.
func (c Color) Complement() Color {
	return Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

func (c Color) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return c.toColorful().Hex()
}

// ParseHex reads a #rgb or #rrggbb string.
func ParseHex(s string) (Color, error) {
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("invalid hex color %q, should be #rgb or #rrggbb", s)
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Lab is a CIE L*a*b* color (D65 white) with L in [0,100].
type Lab struct {
	L, A, B float64
}

// ToLab converts c to CIE L*a*b*. go-colorful works on the unit scale
// (XYZ without the factor 100), so the result is rescaled.
func ToLab(c Color) Lab {
	l, a, b := c.toColorful().Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// Distance is the Euclidean distance between two Lab colors.
func (lc Lab) Distance(o Lab) float64 {
	dL := lc.L - o.L
	da := lc.A - o.A
	db := lc.B - o.B
	return math.Sqrt(dL*dL + da*da + db*db)
}

// Distance returns the perceptual distance between c1 and c2 in Lab units.
func Distance(c1, c2 Color) float64 {
	return ToLab(c1).Distance(ToLab(c2))
}

// SortByBrightness orders colors from darkest to brightest by relative
// luminance. Equal luminance keeps the input order.
func SortByBrightness(colors []Color) {
	slices.SortStableFunc(colors, func(a, b Color) int {
		ri, gi, bi := a.toColorful().LinearRgb()
		rj, gj, bj := b.toColorful().LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}
