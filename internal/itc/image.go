package itc

import "io"

// Image is one artwork entry extracted from an .itc stream. It is built once
// by the Reader and not mutated afterwards.
//
// For PNG and JPEG records Data holds a complete image file. For ARGB records
// Data holds width*height*4 raw bytes in [A,R,G,B] per-pixel order; see
// package pngenc for converting those to a standard PNG file.
type Image struct {
	Format Format
	Width  uint32
	Height uint32
	Data   []byte
}

// WriteTo writes the raw payload verbatim. This is the correct output path
// for PNG and JPEG records; ARGB records need pngenc instead.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(img.Data)
	return int64(n), err
}
