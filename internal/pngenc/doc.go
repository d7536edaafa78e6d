// Package pngenc converts raw ARGB artwork records into standalone PNG files.
//
// The output is a minimal but fully valid PNG: signature, IHDR, a single
// IDAT, and IEND. Scanlines are unfiltered 8-bit RGBA; the only variable is
// the deflate level of the IDAT payload. Encoding is deterministic for a
// given record and level.
package pngenc
