package utils

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/setanarut/stitchgrid"
)

func TestPaletteRIFFRoundTrip(t *testing.T) {
	pal := []stitchgrid.Color{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {12, 34, 56}}
	var buf bytes.Buffer
	n, err := WritePaletteRIFF(&buf, pal)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) || n != 24+4*int64(len(pal)) {
		t.Errorf("wrote %d bytes, buffer has %d", n, buf.Len())
	}

	got, err := ReadPaletteRIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(pal, got); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestPaletteRIFFLayout(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WritePaletteRIFF(&buf, []stitchgrid.Color{{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		'R', 'I', 'F', 'F', 20, 0, 0, 0, 'P', 'A', 'L', ' ',
		'd', 'a', 't', 'a', 8, 0, 0, 0,
		0x00, 0x03, 1, 0,
		1, 2, 3, 0,
	}
	if d := cmp.Diff(want, buf.Bytes()); d != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", d)
	}
}

func riffList(chunks ...[]byte) []byte {
	body := []byte("PAL ")
	for _, c := range chunks {
		body = append(body, c...)
	}
	out := []byte("LIST")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

func dataChunk(colors ...stitchgrid.Color) []byte {
	out := []byte("data")
	out = binary.LittleEndian.AppendUint32(out, uint32(4+4*len(colors)))
	out = append(out, 0x00, 0x03)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(colors)))
	for _, c := range colors {
		out = append(out, c.R, c.G, c.B, 0)
	}
	return out
}

func TestReadPaletteRIFFNested(t *testing.T) {
	a, b, c := stitchgrid.Color{1, 1, 1}, stitchgrid.Color{2, 2, 2}, stitchgrid.Color{3, 3, 3}
	body := []byte("PAL ")
	body = append(body, dataChunk(a)...)
	body = append(body, riffList(dataChunk(b, c))...)
	stream := []byte("RIFF")
	stream = binary.LittleEndian.AppendUint32(stream, uint32(len(body)))
	stream = append(stream, body...)

	got, err := ReadPaletteRIFF(bytes.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]stitchgrid.Color{a, b, c}, got); d != "" {
		t.Errorf("nested palette mismatch (-want +got):\n%s", d)
	}
}

func TestReadPaletteRIFFErrors(t *testing.T) {
	wave := []byte("RIFF\x04\x00\x00\x00WAVE")
	if _, err := ReadPaletteRIFF(bytes.NewReader(wave)); err == nil {
		t.Error("accepted a WAVE stream")
	}

	bad := dataChunk(stitchgrid.Color{})
	bad[8] = 0x01 // corrupt version
	body := append([]byte("PAL "), bad...)
	stream := binary.LittleEndian.AppendUint32([]byte("RIFF"), uint32(len(body)))
	stream = append(stream, body...)
	if _, err := ReadPaletteRIFF(bytes.NewReader(stream)); err == nil {
		t.Error("accepted an unknown palette version")
	}

	if _, err := ReadPaletteRIFF(bytes.NewReader(nil)); err == nil {
		t.Error("accepted an empty stream")
	}
}

func TestPaletteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.pal")
	pal := []stitchgrid.Color{{9, 8, 7}, {6, 5, 4}}
	if err := SavePaletteFile(pal, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadPaletteFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(pal, got); d != "" {
		t.Errorf("palette file mismatch (-want +got):\n%s", d)
	}
	if _, err := LoadPaletteFile(path + ".missing"); err == nil {
		t.Error("loaded a missing palette file")
	}
}
