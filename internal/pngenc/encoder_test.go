package pngenc

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"

	"itcx/internal/itc"
)

type chunk struct {
	typ     string
	payload []byte
	crc     uint32
}

// parsePNG splits an encoded file into its chunks, checking the signature
// and that each declared length matches the payload actually present.
func parsePNG(t *testing.T, data []byte) []chunk {
	t.Helper()

	want := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	if len(data) < 8 || !bytes.Equal(data[:8], want) {
		t.Fatalf("missing PNG signature, got % x", data[:min(8, len(data))])
	}

	var chunks []chunk
	rest := data[8:]
	for len(rest) > 0 {
		if len(rest) < 12 {
			t.Fatalf("trailing garbage: %d bytes left", len(rest))
		}
		length := binary.BigEndian.Uint32(rest[:4])
		typ := string(rest[4:8])
		if uint32(len(rest)-12) < length {
			t.Fatalf("chunk %s declares %d payload bytes, only %d remain", typ, length, len(rest)-12)
		}
		payload := rest[8 : 8+length]
		crc := binary.BigEndian.Uint32(rest[8+length : 12+length])
		chunks = append(chunks, chunk{typ: typ, payload: payload, crc: crc})
		rest = rest[12+length:]
	}
	return chunks
}

func inflate(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("zlib reader: %v", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	return out
}

func mustImage(t *testing.T, width, height uint32, data []byte) *itc.Image {
	t.Helper()
	img, err := itc.FormatARGB.NewImage(width, height, data)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestEncodeStructure(t *testing.T) {
	img := mustImage(t, 2, 2, make([]byte, 16))

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	chunks := parsePNG(t, buf.Bytes())
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, typ := range []string{"IHDR", "IDAT", "IEND"} {
		if chunks[i].typ != typ {
			t.Errorf("chunk %d is %s, want %s", i, chunks[i].typ, typ)
		}
	}

	ihdr := chunks[0].payload
	if len(ihdr) != 13 {
		t.Fatalf("IHDR payload is %d bytes, want 13", len(ihdr))
	}
	if w := binary.BigEndian.Uint32(ihdr[0:4]); w != 2 {
		t.Errorf("IHDR width = %d, want 2", w)
	}
	if h := binary.BigEndian.Uint32(ihdr[4:8]); h != 2 {
		t.Errorf("IHDR height = %d, want 2", h)
	}
	if ihdr[8] != 8 || ihdr[9] != 6 || ihdr[10] != 0 || ihdr[11] != 0 || ihdr[12] != 0 {
		t.Errorf("IHDR trailer = % x, want 08 06 00 00 00", ihdr[8:])
	}

	if len(chunks[2].payload) != 0 {
		t.Errorf("IEND payload is %d bytes, want 0", len(chunks[2].payload))
	}
}

func TestChannelReorder(t *testing.T) {
	img := mustImage(t, 1, 1, []byte{0x10, 0x20, 0x30, 0x40})

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	chunks := parsePNG(t, buf.Bytes())
	scanlines := inflate(t, chunks[1].payload)
	expected := []byte{0x00, 0x20, 0x30, 0x40, 0x10}
	if !bytes.Equal(scanlines, expected) {
		t.Fatalf("scanline stream = % x, want % x", scanlines, expected)
	}
}

func TestScanlineLayout(t *testing.T) {
	// 2x2, distinct bytes everywhere: each row must start with a zero
	// filter byte and carry its own pixels in order.
	data := []byte{
		0xa0, 0x01, 0x02, 0x03, 0xa1, 0x11, 0x12, 0x13,
		0xa2, 0x21, 0x22, 0x23, 0xa3, 0x31, 0x32, 0x33,
	}
	img := mustImage(t, 2, 2, data)

	var buf bytes.Buffer
	if err := EncodeLevel(&buf, img, BestCompression); err != nil {
		t.Fatalf("EncodeLevel: %v", err)
	}

	scanlines := inflate(t, parsePNG(t, buf.Bytes())[1].payload)
	expected := []byte{
		0x00, 0x01, 0x02, 0x03, 0xa0, 0x11, 0x12, 0x13, 0xa1,
		0x00, 0x21, 0x22, 0x23, 0xa2, 0x31, 0x32, 0x33, 0xa3,
	}
	if !bytes.Equal(scanlines, expected) {
		t.Fatalf("scanline stream = % x, want % x", scanlines, expected)
	}
}

func TestChunkCRCs(t *testing.T) {
	img := mustImage(t, 3, 2, []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	})

	levels := []struct {
		name  string
		level int
	}{
		{name: "none", level: NoCompression},
		{name: "fast", level: BestSpeed},
		{name: "default", level: DefaultCompression},
		{name: "best", level: BestCompression},
	}
	for _, tc := range levels {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeLevel(&buf, img, tc.level); err != nil {
				t.Fatalf("EncodeLevel: %v", err)
			}
			for _, c := range parsePNG(t, buf.Bytes()) {
				crc := crc32.NewIEEE()
				crc.Write([]byte(c.typ))
				crc.Write(c.payload)
				if sum := crc.Sum32(); sum != c.crc {
					t.Errorf("%s crc = %08x, stored %08x", c.typ, sum, c.crc)
				}
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	data := make([]byte, 8*4*4)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	img := mustImage(t, 8, 4, data)

	for _, level := range []int{NoCompression, BestCompression} {
		var first, second bytes.Buffer
		if err := EncodeLevel(&first, img, level); err != nil {
			t.Fatalf("EncodeLevel: %v", err)
		}
		if err := EncodeLevel(&second, img, level); err != nil {
			t.Fatalf("EncodeLevel: %v", err)
		}
		if !bytes.Equal(first.Bytes(), second.Bytes()) {
			t.Fatalf("level %d output not deterministic", level)
		}
	}
}

func TestEncodeRejectsBadRecords(t *testing.T) {
	var buf bytes.Buffer

	png := &itc.Image{Format: itc.FormatPNG, Width: 1, Height: 1, Data: []byte{1}}
	if err := Encode(&buf, png); err == nil {
		t.Fatal("expected error for non-argb record")
	}

	short := &itc.Image{Format: itc.FormatARGB, Width: 2, Height: 2, Data: make([]byte, 8)}
	if err := Encode(&buf, short); err == nil {
		t.Fatal("expected error for short argb payload")
	}
}

type failingWriter struct {
	limit int
	wrote int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.wrote+len(p) > f.limit {
		return 0, io.ErrClosedPipe
	}
	f.wrote += len(p)
	return len(p), nil
}

func TestEncodePropagatesWriteErrors(t *testing.T) {
	img := mustImage(t, 1, 1, make([]byte, 4))
	if err := Encode(&failingWriter{limit: 10}, img); err == nil {
		t.Fatal("expected write error to propagate")
	}
}
