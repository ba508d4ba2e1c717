package cramfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
)

// Inode is the 12-byte on-disk record describing one filesystem object. The
// six fields are packed into a single 96-bit little-endian word rather than
// laid out at byte boundaries, so it cannot be decoded with a native struct
// layout: the three words are read individually and the fields are pulled
// out by shift and mask.
type Inode struct {
	mode    uint16
	uid     uint16
	size    uint32
	gid     uint8
	namelen uint8 // in 4-byte units, as stored on disk
	offset  uint32
}

const inodeSize = 12

// inodeFromBytes decodes a 12-byte packed Inode record.
func inodeFromBytes(b []byte) (Inode, error) {
	if len(b) < inodeSize {
		return Inode{}, fmt.Errorf("cramfs: short inode read: %d bytes", len(b))
	}

	w0 := binary.LittleEndian.Uint32(b[0:4])
	w1 := binary.LittleEndian.Uint32(b[4:8])
	w2 := binary.LittleEndian.Uint32(b[8:12])

	// The 96-bit word, LSB first, holds the fields in this order:
	// mode(16) uid(16) | size(24) gid(8) | namelen(6) offset(26)
	mode := uint16(w0 & 0xFFFF)
	uid := uint16((w0 >> 16) & 0xFFFF)
	size := w1 & 0xFFFFFF
	gid := uint8((w1 >> 24) & 0xFF)
	namelen := uint8(w2 & 0x3F)
	offset := (w2 >> 6) & 0x3FFFFFF

	return Inode{
		mode:    mode,
		uid:     uid,
		size:    size,
		gid:     gid,
		namelen: namelen,
		offset:  offset,
	}, nil
}

func inodeFromReader(r io.Reader) (Inode, error) {
	var b [inodeSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Inode{}, err
	}
	return inodeFromBytes(b[:])
}

// MarshalBinary re-encodes the inode into its packed 12-byte form, the
// inverse of inodeFromBytes. It exists for the round-trip invariant; this
// package never writes inodes to an image.
func (i Inode) MarshalBinary() ([]byte, error) {
	w0 := uint32(i.mode) | uint32(i.uid)<<16
	w1 := (i.size & 0xFFFFFF) | uint32(i.gid)<<24
	w2 := uint32(i.namelen&0x3F) | (i.offset&0x3FFFFFF)<<6

	b := make([]byte, inodeSize)
	binary.LittleEndian.PutUint32(b[0:4], w0)
	binary.LittleEndian.PutUint32(b[4:8], w1)
	binary.LittleEndian.PutUint32(b[8:12], w2)
	return b, nil
}

// Mode returns the raw POSIX mode word (file type and permission bits).
func (i Inode) Mode() uint16 { return i.mode }

// FileMode converts Mode to an fs.FileMode carrying the type bits.
func (i Inode) FileMode() fs.FileMode { return unixModeToFS(i.mode) }

// UID returns the owning user ID.
func (i Inode) UID() uint16 { return i.uid }

// GID returns the owning group ID.
func (i Inode) GID() uint8 { return i.gid }

// Size returns the inode's size field. Its meaning depends on the file
// type: data length for regular files and symlinks, packed child-header
// size for directories, device number for device nodes, zero for
// FIFOs/sockets.
func (i Inode) Size() uint32 { return i.size }

// NameLen returns the byte length of the entry name that follows this
// inode in its parent directory's header block (already multiplied by 4).
func (i Inode) NameLen() int { return int(i.namelen) * 4 }

// Offset returns the byte offset into the image of this inode's data
// (already multiplied by 4): the child header block for a directory, the
// block-pointer array for a regular file or symlink, zero otherwise.
func (i Inode) Offset() int64 { return int64(i.offset) * 4 }

func (i Inode) IsDir() bool         { return i.mode&modeIFMT == modeIFDIR }
func (i Inode) IsRegular() bool     { return i.mode&modeIFMT == modeIFREG }
func (i Inode) IsSymlink() bool     { return i.mode&modeIFMT == modeIFLNK }
func (i Inode) IsBlockDevice() bool { return i.mode&modeIFMT == modeIFBLK }
func (i Inode) IsCharDevice() bool  { return i.mode&modeIFMT == modeIFCHR }
func (i Inode) IsFIFO() bool        { return i.mode&modeIFMT == modeIFIFO }
func (i Inode) IsSocket() bool      { return i.mode&modeIFMT == modeIFSOCK }

// Filemode renders the ten-character POSIX permission string, e.g. "drwxr-xr-x".
func (i Inode) Filemode() string { return filemodeString(i.mode) }

// Info is the 16-byte FSID record embedded in the superblock.
type Info struct {
	CRC     uint32
	Edition uint32
	Blocks  uint32
	Files   uint32
}

const infoSize = 16

func infoFromReader(r io.Reader) (Info, error) {
	var info Info
	if err := binary.Read(r, binary.LittleEndian, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Superblock is the 76-byte image header at the start of a cramfs image.
type Superblock struct {
	RawMagic  uint32
	Size      uint32
	Flags     Flags
	Future    uint32
	Signature string
	FSID      Info
	Name      string
	Root      Inode
}

const superblockSize = 76

// superblockFromReader decodes a 76-byte Superblock from r, which must be
// positioned at the superblock's first byte.
func superblockFromReader(r io.Reader) (Superblock, error) {
	var sb Superblock

	var raw struct {
		Magic  uint32
		Size   uint32
		Flags  uint32
		Future uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Superblock{}, err
	}
	sb.RawMagic = raw.Magic
	sb.Size = raw.Size
	sb.Flags = Flags(raw.Flags)
	sb.Future = raw.Future

	var signature [16]byte
	if _, err := io.ReadFull(r, signature[:]); err != nil {
		return Superblock{}, err
	}
	sb.Signature = trimASCII(signature[:])

	fsid, err := infoFromReader(r)
	if err != nil {
		return Superblock{}, err
	}
	sb.FSID = fsid

	var name [16]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return Superblock{}, err
	}
	sb.Name = trimASCII(name[:])

	root, err := inodeFromReader(r)
	if err != nil {
		return Superblock{}, err
	}
	sb.Root = root

	return sb, nil
}

// trimASCII decodes a fixed-width ASCII field, dropping trailing NUL padding.
func trimASCII(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		b = b[:i]
	}
	return string(b)
}
