package cramfs

import (
	"hash/crc32"
	"io"
	"log"
	"os"
)

// Image is a decoded cramfs filesystem image: a validated superblock plus
// the eagerly materialized directory tree rooted at Root. It is the
// facade callers use to open an image and walk its contents, the
// counterpart to the teacher's Superblock (super.go) generalized from a
// single streaming decode to the tree-of-Nodes shape this format's
// eager-materialization design calls for (see Design Notes).
type Image struct {
	src      io.ReaderAt
	offset   int64
	keepOpen bool

	sb     Superblock
	stream *boundedStream
	root   *Node
}

// Open opens the file at path and decodes it as a cramfs image.
func Open(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	img, err := FromReaderAt(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}

// FromBytes decodes a cramfs image held entirely in memory.
func FromBytes(b []byte) (*Image, error) {
	return FromReaderAt(bytesReaderAt(b))
}

type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// FromReaderAt decodes a cramfs image from src, validates its superblock
// and eagerly builds the directory tree. By default src is assumed to
// start with byte 0 of the image; use WithOffset for an image embedded
// elsewhere in src. FromReaderAt takes ownership of src unless KeepOpen is
// given: Image.Close will close src if it implements io.Closer.
func FromReaderAt(src io.ReaderAt, opts ...Option) (*Image, error) {
	img := &Image{src: src}
	for _, opt := range opts {
		if err := opt(img); err != nil {
			return nil, err
		}
	}

	header := io.NewSectionReader(img.src, img.offset, superblockSize)
	sb, err := superblockFromReader(header)
	if err != nil {
		return nil, err
	}

	if err := validateSuperblock(sb); err != nil {
		return nil, err
	}
	img.sb = sb

	img.stream = newBoundedStream(img.src, img.offset, img.offset+int64(sb.Size))

	root := &Node{image: img, inode: sb.Root, kind: kindFromInode(sb.Root)}
	if root.kind == KindDirectory {
		if err := populateDirectory(root); err != nil {
			return nil, err
		}
	}
	img.root = root

	return img, nil
}

// validateSuperblock runs the fatal checks every image must pass before
// its tree is walked, per the error-handling design's rows: magic,
// signature (unless tolerated by WRONG_SIGNATURE), supported flags,
// minimum size, and (when FSID_VERSION_2 is set) a nonzero file count.
func validateSuperblock(sb Superblock) error {
	if sb.RawMagic != Magic {
		return ErrWrongMagic
	}
	if sb.Signature != Signature && !sb.Flags.Has(FlagWrongSignature) {
		return ErrWrongSignature
	}
	if sb.Flags&^SupportedFlags != 0 {
		return newError(UnsupportedFlags, "unsupported flags: %s", (sb.Flags &^ SupportedFlags).String())
	}
	if sb.Size < PageSize {
		return ErrImageTooSmall
	}
	if sb.Flags.Has(FlagFSIDVersion2) && sb.FSID.Files == 0 {
		return ErrZeroFileCount
	}
	if !sb.Flags.Has(FlagFSIDVersion2) {
		log.Printf("cramfs: old cramfs format")
	}
	return nil
}

// Superblock returns the image's decoded and validated superblock.
func (img *Image) Superblock() Superblock { return img.sb }

// Root returns the root directory node.
func (img *Image) Root() *Node { return img.root }

// Select resolves path starting from the image root. See Node.Select.
func (img *Image) Select(path string) (*Node, error) {
	return img.root.Select(path)
}

// Find searches the whole image in pre-order for the first node whose
// name equals name's basename. See Node.Find.
func (img *Image) Find(name string) (*Node, error) {
	return img.root.Find(name)
}

// Itermatch returns every node in the image whose path matches pattern.
// See Node.Itermatch.
func (img *Image) Itermatch(pattern string) ([]*Node, error) {
	return img.root.Itermatch(pattern)
}

// Walk visits every node in the image, root first, in pre-order. See
// Node.Walk.
func (img *Image) Walk(fn func(*Node) error) error {
	return img.root.Walk(fn)
}

// CalculateCRC recomputes the image's CRC-32 checksum: the whole image,
// with the 4-byte fsid.crc field zeroed out in place of its stored value,
// run through the zlib/ISO-HDLC CRC-32 used by cramfsck. It does not
// compare against the stored value; callers do that themselves (see
// cmd/cramfs's check verb).
func (img *Image) CalculateCRC() (uint32, error) {
	buf := make([]byte, img.sb.Size)
	if _, err := io.ReadFull(io.NewSectionReader(img.src, img.offset, int64(img.sb.Size)), buf); err != nil {
		return 0, err
	}
	for i := 0; i < crcFieldSize; i++ {
		buf[crcFieldOffset+i] = 0
	}
	return crc32.ChecksumIEEE(buf), nil
}

// Close releases the image's underlying source, unless it was opened with
// KeepOpen.
func (img *Image) Close() error {
	if img.keepOpen {
		return nil
	}
	if c, ok := img.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
