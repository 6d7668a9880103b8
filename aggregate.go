package stitchgrid

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/stitchgrid/parallel"
)

// AggregateBlocks partitions r into blocks of geometry g and returns one
// representative color per block in row-major order, together with the grid
// size.
func AggregateBlocks(r *Raster, g Geometry, mode Aggregation, workers int) ([]Color, int, int, error) {
	gw, gh := g.GridSize(r.W, r.H)
	if gw == 0 || gh == 0 {
		return nil, gw, gh, &EmptyGridError{Width: r.W, Height: r.H, Geometry: g}
	}

	out := make([]Color, gw*gh)
	parallel.For(gh, workers, func(by int) {
		agg := newBlockAggregator(mode)
		buf := make([]Color, 0, g.BlockWidth*g.BlockHeight)
		for bx := range gw {
			buf = blockPixels(r, g, bx, by, buf[:0])
			out[by*gw+bx] = agg.aggregate(buf)
		}
	})
	return out, gw, gh, nil
}

// blockPixels appends the pixels of block (bx, by) in row-major order,
// clipped to the raster.
func blockPixels(r *Raster, g Geometry, bx, by int, dst []Color) []Color {
	x0, y0 := bx*g.BlockWidth, by*g.BlockHeight
	x1 := min(x0+g.BlockWidth, r.W)
	y1 := min(y0+g.BlockHeight, r.H)
	for y := y0; y < y1; y++ {
		dst = append(dst, r.Pix[y*r.W+x0:y*r.W+x1]...)
	}
	return dst
}

// blockAggregator holds per-goroutine scratch space.
type blockAggregator struct {
	mode    Aggregation
	weights map[int][]float64
	ch      [3][]float64
	med     [3][]uint8
}

func newBlockAggregator(mode Aggregation) *blockAggregator {
	return &blockAggregator{
		mode:    mode,
		weights: make(map[int][]float64),
	}
}

func (a *blockAggregator) aggregate(pix []Color) Color {
	if len(pix) == 0 {
		return Color{}
	}
	if a.mode == AggregateMedian {
		return a.median(pix)
	}
	return a.weighted(pix)
}

// centerWeights returns 1/(1+|i-c|) for i in [0,n) where c is the middle of
// the scan order.
func (a *blockAggregator) centerWeights(n int) []float64 {
	if w, ok := a.weights[n]; ok {
		return w
	}
	w := make([]float64, n)
	center := float64(n-1) / 2
	for i := range w {
		w[i] = 1 / (1 + math.Abs(float64(i)-center))
	}
	a.weights[n] = w
	return w
}

func (a *blockAggregator) weighted(pix []Color) Color {
	w := a.centerWeights(len(pix))
	for c := range a.ch {
		a.ch[c] = a.ch[c][:0]
	}
	for _, p := range pix {
		a.ch[0] = append(a.ch[0], float64(p.R))
		a.ch[1] = append(a.ch[1], float64(p.G))
		a.ch[2] = append(a.ch[2], float64(p.B))
	}
	return Color{
		R: channel(stat.Mean(a.ch[0], w)),
		G: channel(stat.Mean(a.ch[1], w)),
		B: channel(stat.Mean(a.ch[2], w)),
	}
}

// median takes the upper median of every channel independently.
func (a *blockAggregator) median(pix []Color) Color {
	for c := range a.med {
		a.med[c] = a.med[c][:0]
	}
	for _, p := range pix {
		a.med[0] = append(a.med[0], p.R)
		a.med[1] = append(a.med[1], p.G)
		a.med[2] = append(a.med[2], p.B)
	}
	mid := len(pix) / 2
	for c := range a.med {
		slices.Sort(a.med[c])
	}
	return Color{R: a.med[0][mid], G: a.med[1][mid], B: a.med[2][mid]}
}

func channel(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v))))
}
