package cramfs

import (
	"io"
)

const scanChunkSize = 64 * 1024

// SuperblockHit is one confirmed superblock found by FindSuperblocks: the
// absolute byte offset it starts at, paired with its decoded fields.
type SuperblockHit struct {
	Offset     int64
	Superblock Superblock
}

// FindSuperblocks scans src for every offset where a valid cramfs
// superblock starts. It's the detection half of locating a cramfs image
// embedded in a larger blob (a firmware dump, a partition image) before
// handing an offset to WithOffset.
//
// Scanning happens in two passes, per spec: first src is read in
// fixed-size chunks looking for the 4-byte magic, carrying the last 3
// bytes of one chunk into the next so no window of 4 consecutive bytes
// goes unchecked across a chunk boundary. Then, for every offset where the
// magic appeared, a full Superblock is decoded and kept only if its raw
// signature field matches "Compressed ROMFS" byte-for-byte — this rejects
// a bare 4-byte magic coincidence that isn't actually followed by a real
// superblock.
func FindSuperblocks(src io.ReaderAt) ([]SuperblockHit, error) {
	candidates, err := scanMagicOffsets(src)
	if err != nil {
		return nil, err
	}

	var hits []SuperblockHit
	for _, off := range candidates {
		sb, err := superblockFromReader(io.NewSectionReader(src, off, superblockSize))
		if err != nil {
			continue
		}
		if sb.RawMagic != Magic {
			continue
		}
		if !signatureMatches(src, off) {
			continue
		}
		hits = append(hits, SuperblockHit{Offset: off, Superblock: sb})
	}

	return hits, nil
}

// signatureMatches reports whether the raw 16 signature bytes at the
// superblock starting at off equal Signature byte-for-byte, undecoded
// (unlike Superblock.Signature, which trims trailing NULs before
// comparison elsewhere). The spec calls for an exact byte comparison here
// so that a signature with embedded or missing NUL padding isn't
// accidentally accepted.
func signatureMatches(src io.ReaderAt, off int64) bool {
	var sig [16]byte
	if _, err := io.ReadFull(io.NewSectionReader(src, off+16, 16), sig[:]); err != nil {
		return false
	}
	return string(sig[:]) == Signature
}

// scanMagicOffsets returns every absolute offset where the 4-byte magic
// appears in src, without validating anything beyond the 4 bytes
// themselves.
func scanMagicOffsets(src io.ReaderAt) ([]int64, error) {
	var hits []int64
	var carry []byte
	var pos int64 // absolute offset of the next unread byte

	buf := make([]byte, scanChunkSize)
	for {
		n, err := src.ReadAt(buf, pos)
		if n == 0 {
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			break
		}

		window := append(carry, buf[:n]...)
		windowStart := pos - int64(len(carry))
		for i := 0; i+4 <= len(window); i++ {
			if window[i] == magicBytes[0] && window[i+1] == magicBytes[1] &&
				window[i+2] == magicBytes[2] && window[i+3] == magicBytes[3] {
				hits = append(hits, windowStart+int64(i))
			}
		}
		pos += int64(n)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(window) < 3 {
			carry = append([]byte(nil), window...)
		} else {
			carry = append([]byte(nil), window[len(window)-3:]...)
		}
	}

	return hits, nil
}
