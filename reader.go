package cramfs

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// blockReader decodes a data-bearing inode's block-pointer array and
// serves its blocks one at a time, lazily and without caching — the same
// "never cache anything" discipline the teacher documents for the erofs
// package it borrows its doc comment style from, and the same
// read-the-header-then-decompress-on-demand shape as the teacher's
// tableReader.readBlock (tablereader.go), adapted from one compressed
// table block to cramfs's block-pointer-addressed block array.
type blockReader struct {
	src       io.ReaderAt // local (bounded-stream) coordinates
	remaining uint32      // blocks left to decode
	size      uint32      // total uncompressed size of the data
	cursor    int64       // start of next block's payload
	ptrs      []uint32    // remaining block pointers, in order
	done      uint32      // blocks already decoded, for the tail-size calc
	nBlocks   uint32
}

// newBlockReader prepares iteration over ino's data blocks. src must be the
// image's bounded stream (local coordinates).
func newBlockReader(src io.ReaderAt, ino Inode) (*blockReader, error) {
	size := ino.Size()
	nBlocks := (size + PageSize - 1) / PageSize

	ptrBytes := make([]byte, 4*int64(nBlocks))
	if nBlocks > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(src, ino.Offset(), int64(len(ptrBytes))), ptrBytes); err != nil {
			return nil, err
		}
	}

	ptrs := make([]uint32, nBlocks)
	for i := range ptrs {
		ptrs[i] = leUint32(ptrBytes[i*4 : i*4+4])
	}

	return &blockReader{
		src:       src,
		remaining: nBlocks,
		size:      size,
		cursor:    ino.Offset() + int64(len(ptrBytes)),
		ptrs:      ptrs,
		nBlocks:   nBlocks,
	}, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Next decodes and returns the next block's uncompressed bytes, or io.EOF
// once every block has been served.
func (br *blockReader) Next() ([]byte, error) {
	if br.remaining == 0 {
		return nil, io.EOF
	}

	idx := br.nBlocks - br.remaining
	ptr := br.ptrs[idx]
	br.remaining--
	br.done++

	if ptr&blockDirectPtr != 0 {
		return nil, &CramfsError{Kind: UnsupportedLayout, Msg: "only contiguous data layout supported"}
	}
	uncompressed := ptr&blockUncompressed != 0
	end := int64(ptr &^ blockFlagsMask)

	payloadLen := end - br.cursor
	if payloadLen < 0 {
		return nil, &CramfsError{Kind: UnsupportedLayout, Msg: "block pointer moves backward"}
	}

	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(br.src, br.cursor, payloadLen), payload); err != nil {
			return nil, err
		}
	}
	br.cursor = end

	if uncompressed {
		return payload, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	want := PageSize
	if br.done == br.nBlocks {
		if tail := br.size % PageSize; tail != 0 {
			want = int(tail)
		}
	}
	out := make([]byte, want)
	if _, err := io.ReadFull(zr, out); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return out, nil
}

// readAll concatenates every remaining block into a single buffer, the
// materializing convenience the spec calls read_bytes.
func (br *blockReader) readAll() ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := br.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}

// blockStream adapts a blockReader to io.Reader, for callers that want a
// plain streaming interface over a data-bearing node's content.
type blockStream struct {
	br  *blockReader
	buf []byte
}

func (s *blockStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		chunk, err := s.br.Next()
		if err != nil {
			return 0, err
		}
		s.buf = chunk
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}
