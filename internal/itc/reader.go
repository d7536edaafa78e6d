package itc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	itchFrame = "itch"
	artwFrame = "artw"
	itemFrame = "item"

	// Offset values written by the two known iTunes generations. Each
	// implies a fixed preamble skip inside the item header; the lengths
	// were reverse-engineered and have no documented meaning.
	itunes9Offset    = 208
	itunesOldOffset  = 216
	itunes9Skip      = 16
	itunesOldSkip    = 20
	itchPreambleSize = 16
	artwBodySize     = 256

	// Fixed item-header fields after the version preamble: library id (8),
	// track id (8) and method (4), none of which the reader uses.
	itemFixedSkip = 8 + 8 + 4
)

type frame struct {
	size uint32
	tag  string
}

// Reader scans an .itc stream and yields the images embedded in it. It is
// strictly sequential and not safe for concurrent use; wrap the source with
// external synchronization if that is ever needed.
type Reader struct {
	src     io.Reader
	br      *bufio.Reader
	started bool
	closed  bool
}

// NewReader returns a Reader over src. The reader buffers internally, so src
// needs no seeking or mark/reset support. If src is an io.Closer, Close
// closes it.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src, br: bufio.NewReader(src)}
}

// Next returns the next image in the stream, or io.EOF once the stream is
// exhausted. Any parse or source error is fatal: the reader's position can no
// longer be trusted and further calls are undefined.
func (r *Reader) Next() (*Image, error) {
	r.started = true

	for {
		f, err := r.readFrame()
		if err != nil {
			return nil, err
		}
		img, err := r.handleFrame(f)
		if err != nil {
			return nil, err
		}
		if img != nil {
			return img, nil
		}
	}
}

// ReadAll drains the stream and returns every image in discovery order. It
// must be the first read on the reader; calling it after Next (or after a
// prior ReadAll) returns ErrReadAllAfterNext without touching the stream.
func (r *Reader) ReadAll() ([]*Image, error) {
	if r.started {
		return nil, ErrReadAllAfterNext
	}

	var images []*Image
	for {
		img, err := r.Next()
		if err == io.EOF {
			return images, nil
		}
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
}

// Close releases the underlying source if it is closable. The first call
// wins; subsequent calls are no-ops returning nil.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// readFrame reads an 8-byte frame header. Anything short of 8 bytes counts
// as a clean end of stream, reported as io.EOF.
func (r *Reader) readFrame() (frame, error) {
	var header [8]byte
	if _, err := io.ReadFull(r.br, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return frame{}, io.EOF
		}
		return frame{}, err
	}
	return frame{
		size: binary.BigEndian.Uint32(header[:4]),
		tag:  string(header[4:8]),
	}, nil
}

// handleFrame dispatches a frame by tag. It returns a non-nil image only for
// item frames; itch frames recurse with their nested tag and artw frames are
// skipped whole.
func (r *Reader) handleFrame(f frame) (*Image, error) {
	switch f.tag {
	case itchFrame:
		if err := r.discard(itchPreambleSize); err != nil {
			return nil, err
		}
		var tag [4]byte
		if err := r.readFull(tag[:]); err != nil {
			return nil, err
		}
		// The itch frame is a thin wrapper: its real content starts
		// after the preamble, under the nested tag but with the outer
		// frame's declared size.
		return r.handleFrame(frame{size: f.size, tag: string(tag[:])})
	case artwFrame:
		return nil, r.discard(artwBodySize)
	case itemFrame:
		return r.parseItem(f)
	default:
		return nil, &UnexpectedFrameError{Size: f.size, Tag: f.tag}
	}
}

// parseItem extracts one image from an item frame. The leading offset field
// is relative to the frame-header start, 8 bytes before the frame body; the
// header region up to that offset is small and bounded, so it is read into
// memory and all field positions are computed against the buffer instead of
// rewinding the stream.
func (r *Reader) parseItem(f frame) (*Image, error) {
	offset, err := r.readUint32()
	if err != nil {
		return nil, err
	}

	pos := 0
	switch offset {
	case itunes9Offset:
		pos += itunes9Skip
	case itunesOldOffset:
		pos += itunesOldSkip
	}
	pos += itemFixedSkip

	// Tag (4) + reserved (4) + width (4) + height (4) must fit between the
	// offset field and the payload.
	const fieldBytes = 16
	if offset < 12 || int(offset)-12 < pos+fieldBytes {
		return nil, fmt.Errorf("itc: item frame offset %d leaves no room for the header fields", offset)
	}
	if offset > f.size {
		return nil, fmt.Errorf("itc: item frame offset %d exceeds declared frame size %d", offset, f.size)
	}

	// The 8-byte frame header and the 4-byte offset field are already
	// consumed, so the remaining header region is offset-12 bytes and the
	// payload starts immediately after it.
	header := make([]byte, offset-12)
	if err := r.readFull(header); err != nil {
		return nil, err
	}

	format, err := ParseFormat(header[pos : pos+4])
	if err != nil {
		return nil, err
	}
	pos += 8 // tag + 4 reserved bytes
	width := binary.BigEndian.Uint32(header[pos : pos+4])
	height := binary.BigEndian.Uint32(header[pos+4 : pos+8])

	payload := make([]byte, f.size-offset)
	if err := r.readFull(payload); err != nil {
		return nil, err
	}

	return format.NewImage(width, height, payload)
}

func (r *Reader) readUint32() (uint32, error) {
	var buf [4]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// readFull fills buf or fails. Short reads surface as TruncatedError; other
// source errors propagate unchanged.
func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &TruncatedError{Expected: len(buf), Actual: n}
	}
	return err
}

// discard skips exactly n bytes, with the same error contract as readFull.
func (r *Reader) discard(n int) error {
	skipped, err := r.br.Discard(n)
	if skipped < n {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return &TruncatedError{Expected: n, Actual: skipped}
		}
		return err
	}
	return nil
}
