package stitchgrid

// Nearest returns the index of the palette entry closest to c in Lab. Ties
// go to the earlier entry. It returns -1 for an empty palette.
func Nearest(c Color, palette []Lab) int {
	lab := ToLab(c)
	best, bestDist := -1, 0.0
	for i, p := range palette {
		d := lab.Distance(p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// MapBlocks assigns every block color to its nearest palette entry.
func MapBlocks(colors []Color, palette []Color) []int {
	labs := make([]Lab, len(palette))
	for i, p := range palette {
		labs[i] = ToLab(p)
	}

	// Blocks repeat colors a lot, especially with the median policy.
	cache := make(map[Color]int)
	out := make([]int, len(colors))
	for i, c := range colors {
		idx, ok := cache[c]
		if !ok {
			idx = Nearest(c, labs)
			cache[c] = idx
		}
		out[i] = idx
	}
	return out
}
