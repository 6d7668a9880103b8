package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/setanarut/stitchgrid"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxDimension is the longest side a source image is reduced to before the
// block grid is computed.
const MaxDimension = 1200

// Decode reads an encoded image. Any failure is returned as a
// *stitchgrid.DecodeError.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &stitchgrid.DecodeError{Err: err}
	}
	return img, format, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(b []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(b))
}

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer file.Close()
	img, _, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return img, nil
}

// Fit scales img down so that neither side exceeds maxDim, keeping the
// aspect ratio. Images that already fit are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	var dw, dh int
	if float64(w)/float64(maxDim) > float64(h)/float64(maxDim) {
		dw = maxDim
		dh = int(math.Round(float64(h) * float64(maxDim) / float64(w)))
	} else {
		dh = maxDim
		dw = int(math.Round(float64(w) * float64(maxDim) / float64(h)))
	}
	dw, dh = max(dw, 1), max(dh, 1)

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// PatternFileName returns the export name for a pattern created at t.
func PatternFileName(t time.Time) string {
	return "stitchgrid_pattern_" + strconv.FormatInt(t.UnixMilli(), 10) + ".png"
}

// Encode writes img in the format named by ext (png, bmp or tiff).
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png", "":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
}

// SaveImage encodes img by the extension of filename. The file is written
// to a temporary name first and renamed once complete.
func SaveImage(img image.Image, filename string) (err error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	out, err := os.CreateTemp(dir, base+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", filename, err)
	}
	complete := false
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close %q: %w", out.Name(), closeErr)
		}
		if complete && err == nil {
			if renameErr := os.Rename(out.Name(), filename); renameErr != nil {
				err = fmt.Errorf("could not rename %q: %w", out.Name(), renameErr)
			}
		}
		if err != nil {
			os.Remove(out.Name())
		}
	}()

	if err = Encode(out, img, filepath.Ext(filename)); err != nil {
		return fmt.Errorf("could not encode %q: %w", filename, err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("could not flush %q: %w", filename, err)
	}
	// CreateTemp makes the file private.
	if err = out.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set permissions on %q: %w", filename, err)
	}
	complete = true
	return nil
}

// SaveLayers writes one png per palette layer into dir as layer_NN.png.
func SaveLayers(layers []*image.NRGBA, dir string) error {
	for i, layer := range layers {
		name := filepath.Join(dir, fmt.Sprintf("layer_%02d.png", i))
		if err := SaveImage(layer, name); err != nil {
			return err
		}
	}
	return nil
}

// Swatches draws the palette as a row of square tiles.
func Swatches(palette []stitchgrid.Color, tileSize int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		draw.Draw(img, tile, image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}), image.Point{}, draw.Src)
	}
	return img, nil
}

func SavePalette(palette []stitchgrid.Color, tileSize int, filename string) error {
	img, err := Swatches(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
