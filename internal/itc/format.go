package itc

import "fmt"

// Format identifies how an item frame's payload is encoded.
type Format int

const (
	// FormatPNG payloads are complete PNG files, emitted verbatim.
	FormatPNG Format = iota
	// FormatJPEG payloads are complete JPEG files, emitted verbatim.
	FormatJPEG
	// FormatARGB payloads are raw interleaved ARGB pixels (4 bytes per
	// pixel, row-major, no padding) and need re-encoding before any image
	// viewer can read them.
	FormatARGB
)

// ParseFormat resolves a 4-byte format tag from an item frame.
//
// iTunes tagged artwork inconsistently across versions: PNG appears both as
// the literal tag "PNGf" and as tags whose fourth byte is 0x0E, while JPEG is
// only ever discriminated by a fourth byte of 0x0D. The mixed rule below
// matches real-world files and must not be unified.
func ParseFormat(tag []byte) (Format, error) {
	if len(tag) != 4 {
		return 0, fmt.Errorf("itc: format tag must be 4 bytes, got %d", len(tag))
	}
	switch {
	case string(tag) == "PNGf" || tag[3] == 0x0e:
		return FormatPNG, nil
	case tag[3] == 0x0d:
		return FormatJPEG, nil
	case string(tag) == "ARGb":
		return FormatARGB, nil
	default:
		return 0, &UnknownFormatError{Tag: string(tag)}
	}
}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatARGB:
		return "argb"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the output file extension for images of this format.
// ARGB maps to "png" because its payload is re-encoded as PNG on output.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// NewImage builds an Image record for this format. For ARGB the payload
// length must be exactly width*height*4; any other length means the item
// frame was malformed.
func (f Format) NewImage(width, height uint32, data []byte) (*Image, error) {
	if f == FormatARGB {
		if expected := uint64(width) * uint64(height) * 4; uint64(len(data)) != expected {
			return nil, fmt.Errorf("itc: argb payload is %d bytes, want %d for %dx%d", len(data), expected, width, height)
		}
	}
	return &Image{Format: f, Width: width, Height: height, Data: data}, nil
}
