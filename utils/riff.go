package utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/setanarut/stitchgrid"

	"golang.org/x/image/riff"
)

// Microsoft RIFF palette (.pal): a "PAL " form holding "data" chunks of
//
//	WORD palVersion (0x0300)
//	WORD palNumEntries
//	PALETTEENTRY { BYTE red, green, blue, flags }[palNumEntries]

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

// ReadPaletteRIFF reads every palette chunk of a RIFF .pal stream and
// concatenates them.
func ReadPaletteRIFF(r io.Reader) ([]stitchgrid.Color, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %q", string(formType[:]))
	}
	return readPalettes(rd, 0)
}

func readPalettes(r *riff.Reader, depth int) ([]stitchgrid.Color, error) {
	var res []stitchgrid.Color
	for i := 0; ; i++ {
		id, size, data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		} else if err != nil {
			return res, fmt.Errorf("could not read chunk %d.%d: %w", depth, i, err)
		}

		switch id {
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return res, fmt.Errorf("could not read list %d.%d: %w", depth, i, err)
			} else if listType != palType {
				return res, fmt.Errorf("list %d.%d has unsupported type %q", depth, i, string(listType[:]))
			}
			pal, err := readPalettes(list, depth+1)
			res = append(res, pal...)
			if err != nil {
				return res, err
			}
		case dataType:
			pal, err := readPalette(data, size)
			if err != nil {
				return res, fmt.Errorf("chunk %d.%d: %w", depth, i, err)
			}
			res = append(res, pal...)
		default:
			return res, fmt.Errorf("unsupported chunk type in %d.%d: %q", depth, i, string(id[:]))
		}
	}
}

func readPalette(r io.Reader, size uint32) ([]stitchgrid.Color, error) {
	var head [4]byte
	if size < 4 {
		return nil, fmt.Errorf("palette chunk too short: %d bytes", size)
	}
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("could not read palette header: %w", err)
	}
	if ver := binary.BigEndian.Uint16(head[:2]); ver != 3 {
		return nil, fmt.Errorf("unsupported palette version: %d", ver)
	}

	count := int(binary.LittleEndian.Uint16(head[2:]))
	if 4+4*uint32(count) > size {
		return nil, fmt.Errorf("palette declares %d colors in %d bytes", count, size)
	}
	entries := make([]byte, 4*count)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors: %w", count, err)
	}

	res := make([]stitchgrid.Color, count)
	for i := range res {
		res[i] = stitchgrid.Color{R: entries[4*i], G: entries[4*i+1], B: entries[4*i+2]}
	}
	return res, nil
}

// WritePaletteRIFF writes palette as a single-chunk RIFF .pal stream.
func WritePaletteRIFF(w io.Writer, palette []stitchgrid.Color) (int64, error) {
	if len(palette) > 0xffff {
		return 0, fmt.Errorf("too many colors for a RIFF palette: %d", len(palette))
	}
	chunkSize := 4 + 4*len(palette)

	buf := bytes.NewBuffer(make([]byte, 0, 20+chunkSize))
	buf.Write(riffType[:])
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(4+8+chunkSize)))
	buf.Write(palType[:])
	buf.Write(dataType[:])
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(chunkSize)))
	buf.Write(binary.LittleEndian.AppendUint16(nil, palVersion))
	buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(len(palette))))
	for _, c := range palette {
		buf.Write([]byte{c.R, c.G, c.B, 0x00})
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("could not save palette: %w", err)
	}
	return n, nil
}

func LoadPaletteFile(path string) ([]stitchgrid.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", path, err)
	}
	defer f.Close()
	pal, err := ReadPaletteRIFF(f)
	if err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", path, err)
	}
	return pal, nil
}

func SavePaletteFile(palette []stitchgrid.Color, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create palette %q: %w", path, err)
	}
	if _, err := WritePaletteRIFF(f, palette); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
