package pngenc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"itcx/internal/itc"
)

// Deflate levels accepted by EncodeLevel.
const (
	NoCompression      = flate.NoCompression
	BestSpeed          = flate.BestSpeed
	BestCompression    = flate.BestCompression
	DefaultCompression = flate.DefaultCompression
)

var signature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

const (
	bitDepth       = 8
	colorTypeAlpha = 6 // truecolor with alpha
)

// Encode writes img to w as a PNG file without compressing the pixel data,
// matching the historical default of the itc extraction tools.
func Encode(w io.Writer, img *itc.Image) error {
	return EncodeLevel(w, img, NoCompression)
}

// EncodeLevel writes img to w as a PNG file with the given deflate level.
// Only ARGB records can be encoded; PNG and JPEG records are already files
// and are written verbatim elsewhere. Write errors on w abort immediately
// and may leave a partial file behind; the caller owns cleanup.
func EncodeLevel(w io.Writer, img *itc.Image, level int) error {
	if img.Format != itc.FormatARGB {
		return fmt.Errorf("pngenc: cannot encode %v record, want argb", img.Format)
	}
	if expected := uint64(img.Width) * uint64(img.Height) * 4; uint64(len(img.Data)) != expected {
		return fmt.Errorf("pngenc: argb payload is %d bytes, want %d for %dx%d", len(img.Data), expected, img.Width, img.Height)
	}

	if _, err := w.Write(signature); err != nil {
		return err
	}
	if err := writeHeader(w, img.Width, img.Height); err != nil {
		return err
	}
	if err := writePixels(w, img, level); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

func writeHeader(w io.Writer, width, height uint32) error {
	payload := make([]byte, 13)
	binary.BigEndian.PutUint32(payload[0:], width)
	binary.BigEndian.PutUint32(payload[4:], height)
	payload[8] = bitDepth
	payload[9] = colorTypeAlpha
	// Compression, filter, and interlace methods stay zero.
	return writeChunk(w, "IHDR", payload)
}

// writePixels builds the scanline stream (one zero filter byte per row, then
// the row's pixels reordered from ARGB to RGBA), deflates it, and emits the
// result as a single IDAT chunk.
func writePixels(w io.Writer, img *itc.Image, level int) error {
	width, height := int(img.Width), int(img.Height)
	raw := make([]byte, 0, height*(1+width*4))
	for y := 0; y < height; y++ {
		raw = append(raw, 0)
		row := img.Data[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			raw = append(raw, px[1], px[2], px[3], px[0])
		}
	}

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, level)
	if err != nil {
		return fmt.Errorf("pngenc: deflate level %d: %w", level, err)
	}
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return writeChunk(w, "IDAT", compressed.Bytes())
}

// writeChunk frames one PNG chunk: length, type, payload, then CRC-32 over
// type and payload. A zero-length payload is omitted entirely.
func writeChunk(w io.Writer, chunkType string, payload []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(payload)))
	copy(header[4:], chunkType)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkType))
	crc.Write(payload)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	_, err := w.Write(sum[:])
	return err
}
