package cramfs

import (
	"errors"
	"io"
)

// boundedStream is a positionable view over a parent io.ReaderAt, clamping
// every read and seek to the half-open window [start, end) and translating
// positions to stream-local coordinates (0 == start). It tracks its own
// cursor rather than relying on the parent to be seekable, the same way
// the teacher's tableReader (tablereader.go) layers a sequential reader
// over absolute ReadAt calls against the superblock's io.ReaderAt.
//
// It never permits a read, seek or Tell() to report a position outside its
// window — the directory builder and data reader both trust that
// invariant to stay inside the image.
type boundedStream struct {
	src   io.ReaderAt
	start int64
	end   int64
	pos   int64 // absolute position into src
}

// newBoundedStream wraps src with the absolute window [start, end). The
// cursor begins at start.
func newBoundedStream(src io.ReaderAt, start, end int64) *boundedStream {
	return &boundedStream{src: src, start: start, end: end, pos: start}
}

// Read reads into p, never crossing end, advancing the cursor.
func (b *boundedStream) Read(p []byte) (int, error) {
	max := b.end - b.pos
	if max <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > max {
		p = p[:max]
	}
	n, err := b.src.ReadAt(p, b.pos)
	b.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// ReadAt reads len(p) bytes (or up to end) at local offset off without
// moving the cursor.
func (b *boundedStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("cramfs: negative ReadAt offset")
	}
	abs := b.start + off
	if abs > b.end {
		return 0, io.EOF
	}
	max := b.end - abs
	n := len(p)
	if int64(n) > max {
		n = int(max)
	}
	read, err := b.src.ReadAt(p[:n], abs)
	if err == nil && read < len(p) {
		err = io.EOF
	}
	return read, err
}

// Seek repositions the cursor, clamping the resulting absolute position to
// [start, end], and returns the new local position.
//
//   - SEEK_SET clamps a negative absolute target to start.
//   - SEEK_CUR clamps the resulting absolute position to [start, end].
//   - SEEK_END pins offset > 0 to end; offset <= 0 seeks backward from end.
func (b *boundedStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = b.start + offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		if offset > 0 {
			target = b.end
		} else {
			target = b.end + offset
		}
	default:
		return 0, errors.New("cramfs: invalid whence")
	}

	if target < b.start {
		target = b.start
	}
	if target > b.end {
		target = b.end
	}

	b.pos = target
	return b.pos - b.start, nil
}

// Tell returns the current position relative to start.
func (b *boundedStream) Tell() int64 {
	return b.pos - b.start
}

// Close closes the underlying source if it supports io.Closer. Unknown
// operations like this one fall through to the underlying stream, the
// same contract the spec describes for the bounded view.
func (b *boundedStream) Close() error {
	if c, ok := b.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Size returns the window's length in bytes.
func (b *boundedStream) Size() int64 { return b.end - b.start }
