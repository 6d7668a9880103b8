package stitchgrid

import (
	"errors"
	"image"
	"log/slog"
	"sync"
)

var ErrNoImage = errors.New("no image loaded")

// Studio owns the loaded image, the live grid with its edit session and the
// original snapshot. It is safe for concurrent use.
//
// Every build is tagged with a generation. Loading an image or starting a
// newer build moves the generation on, and a build that finishes after that
// is dropped with ErrStale instead of replacing the newer result.
type Studio struct {
	mu       sync.Mutex
	logger   *slog.Logger
	raster   *Raster
	gen      uint64
	original *Grid
	session  *EditSession
}

func NewStudio(logger *slog.Logger) *Studio {
	if logger == nil {
		logger = slog.Default()
	}
	return &Studio{logger: logger}
}

// Load replaces the image. The previous grid, its original snapshot and any
// edits are discarded.
func (s *Studio) Load(r *Raster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.raster = r
	s.original = nil
	s.session = nil
	if r != nil {
		s.logger.Info("image loaded", "width", r.W, "height", r.H, "generation", s.gen)
	}
}

// LoadImage is Load(NewRaster(img)).
func (s *Studio) LoadImage(img image.Image) {
	s.Load(NewRaster(img))
}

// Build computes a grid for the loaded image and makes it the live grid,
// unless another Load or Build started in the meantime. The first grid built
// for an image becomes the original that Revert returns to. The returned
// grid is a copy.
func (s *Studio) Build(opt Options) (*Grid, error) {
	if _, err := opt.Validate(); err != nil {
		return nil, err
	}
	gen, raster, err := s.begin()
	if err != nil {
		return nil, err
	}

	b := NewRasterBuilder(raster)
	b.Logger = s.logger.With("generation", gen)
	err = b.Build(opt)
	return s.commit(gen, b.Grid, err)
}

// begin starts a new generation and returns the raster to build from.
func (s *Studio) begin() (uint64, *Raster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raster == nil {
		return 0, nil, ErrNoImage
	}
	s.gen++
	return s.gen, s.raster, nil
}

// commit installs the result of generation gen if it is still current.
func (s *Studio) commit(gen uint64, grid *Grid, err error) (*Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale build", "generation", gen, "current", s.gen)
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	if s.original == nil {
		s.original = grid.Clone()
	}
	s.session = newEditSession(grid, s.original)
	s.logger.Info("pattern built", "generation", gen,
		"width", grid.Width, "height", grid.Height, "colors", len(grid.Palette))
	return grid.Clone(), nil
}

// Generation returns the current generation number.
func (s *Studio) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Grid returns a copy of the live grid, or nil before the first build.
func (s *Studio) Grid() *Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Grid().Clone()
}

// Original returns a copy of the original snapshot.
func (s *Studio) Original() *Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original.Clone()
}

func (s *Studio) State() EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.State()
}

func (s *Studio) SelectColor(c Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.SelectColor(c)
}

func (s *Studio) SelectIndex(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.SelectIndex(i)
}

func (s *Studio) Paint(bx, by int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Paint(bx, by)
}

func (s *Studio) PaintStroke(points []image.Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.PaintStroke(points)
}

func (s *Studio) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Revert()
}

// Usage returns the palette usage of the live grid.
func (s *Studio) Usage() []Swatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Grid().Usage()
}

// Render draws the live grid.
func (s *Studio) Render() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Render(s.session.Grid())
}
