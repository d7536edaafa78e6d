package itc

import (
	"errors"
	"fmt"
)

// ErrReadAllAfterNext reports misuse of ReadAll on a reader that has already
// begun incremental reading. It is detected before any stream access.
var ErrReadAllAfterNext = errors.New("itc: ReadAll called after Next on the same reader")

// UnexpectedFrameError reports a top-level frame tag outside the recognized
// set. Framing can no longer be trusted past this point, so parsing stops.
type UnexpectedFrameError struct {
	Size uint32
	Tag  string
}

func (e *UnexpectedFrameError) Error() string {
	return fmt.Sprintf("itc: unexpected frame %q (declared size %d)", e.Tag, e.Size)
}

// UnknownFormatError reports an item-frame format tag that matches none of
// the known discriminators.
type UnknownFormatError struct {
	Tag string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("itc: unknown image format %q", e.Tag)
}

// TruncatedError reports a stream that ended before a fixed-size field or a
// declared payload was fully available.
type TruncatedError struct {
	Expected int
	Actual   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("itc: truncated stream: expected %d bytes, read %d", e.Expected, e.Actual)
}
