package stitchgrid

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ColorCluster accumulates the raw colors folded into one palette candidate.
// The centroid is the count-weighted mean of everything merged so far.
type ColorCluster struct {
	sumR, sumG, sumB uint64
	Count            int

	centroid Color
	lab      Lab
}

func newColorCluster(c Color, count int) *ColorCluster {
	cl := &ColorCluster{}
	cl.Merge(c, count)
	return cl
}

// Merge folds count occurrences of c into the cluster.
func (cl *ColorCluster) Merge(c Color, count int) {
	if count <= 0 {
		return
	}
	n := uint64(count)
	cl.sumR += uint64(c.R) * n
	cl.sumG += uint64(c.G) * n
	cl.sumB += uint64(c.B) * n
	cl.Count += count

	total := float64(cl.Count)
	cl.centroid = Color{
		R: uint8(math.Round(float64(cl.sumR) / total)),
		G: uint8(math.Round(float64(cl.sumG) / total)),
		B: uint8(math.Round(float64(cl.sumB) / total)),
	}
	cl.lab = ToLab(cl.centroid)
}

func (cl *ColorCluster) Centroid() Color {
	return cl.centroid
}

type colorCount struct {
	col   Color
	count int
}

// colorFrequencies counts exact colors. Entries come out by descending
// count, ties in order of first appearance.
func colorFrequencies(pix []Color) []colorCount {
	index := make(map[Color]int)
	var counts []colorCount
	for _, c := range pix {
		if i, ok := index[c]; ok {
			counts[i].count++
			continue
		}
		index[c] = len(counts)
		counts = append(counts, colorCount{col: c, count: 1})
	}
	slices.SortStableFunc(counts, func(a, b colorCount) int {
		return cmp.Compare(b.count, a.count)
	})
	return counts
}

// FoldClusters greedily merges colors into clusters in descending frequency
// order. Each color joins the first cluster whose centroid lies closer than
// threshold, otherwise it starts a new one. The result is sorted by
// descending count.
//
// This is order dependent single linkage, not k-means: it is deterministic
// and costs O(distinct colors * clusters), and the exact-color table is
// usually much smaller than the pixel count.
func FoldClusters(pix []Color, threshold float64) []*ColorCluster {
	var cls []*ColorCluster
	for _, e := range colorFrequencies(pix) {
		lab := ToLab(e.col)
		merged := false
		for _, cl := range cls {
			if cl.lab.Distance(lab) < threshold {
				cl.Merge(e.col, e.count)
				merged = true
				break
			}
		}
		if !merged {
			cls = append(cls, newColorCluster(e.col, e.count))
		}
	}
	slices.SortStableFunc(cls, func(a, b *ColorCluster) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return cls
}

// ExtractDominant reduces pix to at most k representative colors, most
// frequent first. It returns fewer than k colors when the image does not
// have k distinct clusters.
func ExtractDominant(pix []Color, k int, threshold float64) ([]Color, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: palette size %d", ErrInvalidOptions, k)
	}
	cls := FoldClusters(pix, threshold)
	if len(cls) == 0 {
		return nil, ErrEmptyPalette
	}

	out := make([]Color, 0, k)
	for _, cl := range cls {
		if len(out) == k {
			break
		}
		if !slices.Contains(out, cl.Centroid()) {
			out = append(out, cl.Centroid())
		}
	}
	return out, nil
}

// ExtractPalette picks the palette seed colors of r with the given method.
func ExtractPalette(r *Raster, k int, method PaletteMethod, threshold float64) ([]Color, error) {
	if r.Empty() {
		return nil, ErrEmptyPalette
	}
	if threshold == 0 {
		threshold = MergeThreshold
	}
	switch method {
	case PaletteMethodKMeans:
		return extractKMeans(r, k)
	case PaletteMethodDominantColor:
		return extractDominantColor(r, k)
	default:
		return ExtractDominant(r.Pix, k, threshold)
	}
}

type weightedColor struct {
	col    Color
	weight float64
}

func extractDominantColor(r *Raster, k int) ([]Color, error) {
	candidates := dominantcolor.FindWeight(r.Image(), max(24, k*8))
	if len(candidates) == 0 {
		return nil, ErrEmptyPalette
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		weighted = append(weighted, weightedColor{
			col:    Color{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B},
			weight: c.Weight,
		})
	}
	return selectDiverse(weighted, k), nil
}

// Subsample to keep kmeans tractable on large images.
const maxKMeansSamples = 12000

func extractKMeans(r *Raster, k int) ([]Color, error) {
	step := 1
	if n := r.W * r.H; n > maxKMeansSamples {
		step = int(math.Sqrt(float64(n)/maxKMeansSamples)) + 1
	}

	distinct := make(map[Color]struct{})
	dataset := make(clusters.Observations, 0, min(r.W*r.H, maxKMeansSamples))
	for y := 0; y < r.H; y += step {
		for x := 0; x < r.W; x += step {
			c := r.At(x, y)
			distinct[c] = struct{}{}
			dataset = append(dataset, clusters.Coordinates{
				float64(c.R) / 255.0,
				float64(c.G) / 255.0,
				float64(c.B) / 255.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, ErrEmptyPalette
	}

	workK := min(max(k*4, k+2), len(distinct))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(b.Observations), len(a.Observations))
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		weighted = append(weighted, weightedColor{
			col: Color{
				R: unit8(c.Center[0]),
				G: unit8(c.Center[1]),
				B: unit8(c.Center[2]),
			},
			weight: float64(len(c.Observations)),
		})
	}
	if len(weighted) == 0 {
		return nil, ErrEmptyPalette
	}
	return selectDiverse(weighted, k), nil
}

func unit8(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v*255))))
}

// selectDiverse seeds with the heaviest candidate, then repeatedly adds the
// candidate farthest in Lab from everything selected, scaled by its weight.
func selectDiverse(cands []weightedColor, k int) []Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col Color
		lab Lab
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		w := c.weight
		if w <= 0 {
			w = 1e-6
		}
		maxW = max(maxW, w)
		items = append(items, item{col: c.col, lab: ToLab(c.col), w: w})
	}
	k = min(k, len(items))

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := 0.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range selectedIdx {
				minD = min(minD, items[i].lab.Distance(items[s].lab))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		// Only duplicates of selected colors are left.
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}
