package cramfs_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

// This file builds small synthetic cramfs images byte-by-byte, the same
// way the teacher's mockReader (mock_test.go) hand-rolls minimal
// SquashFS headers to exercise the decoder without a real on-disk image.
// Every helper here independently re-encodes the wire format described
// by structure.go, rather than calling into the package's own encoders,
// so that decoding is tested against an independent writer.

const (
	modeDir     = 0x4000 | 0755
	modeRegular = 0x8000 | 0644
	modeSymlink = 0xA000 | 0777
)

func packInode(mode uint16, uid uint16, size uint32, gid uint8, nameLen int, offset int64) []byte {
	namelen := uint32(nameLen) / 4
	off := uint32(offset) / 4

	w0 := uint32(mode) | uint32(uid)<<16
	w1 := (size & 0xFFFFFF) | uint32(gid)<<24
	w2 := (namelen & 0x3F) | (off&0x3FFFFFF)<<6

	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], w0)
	binary.LittleEndian.PutUint32(b[4:8], w1)
	binary.LittleEndian.PutUint32(b[8:12], w2)
	return b
}

func padName(name string) []byte {
	padded := (len(name) + 3) / 4 * 4
	b := make([]byte, padded)
	copy(b, name)
	return b
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(b)
	w.Close()
	return buf.Bytes()
}

func putUint32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// dirEntry is one (name, inode) pair to be written as a directory child.
type dirEntry struct {
	name   string
	mode   uint16
	size   uint32
	offset int64
}

func entrySize(e dirEntry) int {
	return 12 + len(padName(e.name))
}

func writeDirHeader(buf []byte, at int, entries []dirEntry) {
	pos := at
	for _, e := range entries {
		copy(buf[pos:], packInode(e.mode, 0, e.size, 0, len(padName(e.name)), e.offset))
		pos += 12
		nb := padName(e.name)
		copy(buf[pos:], nb)
		pos += len(nb)
	}
}

// fixtureImage holds the layout parameters of buildFixtureImage's output,
// so tests can assert against specific offsets and sizes without
// recomputing them.
type fixtureImage struct {
	data        []byte
	helloOffset int64
	helloData   []byte // "hello world"
	linkOffset  int64
	linkTarget  string
	bigOffset   int64
	bigSize     uint32
}

// buildFixtureImage assembles a minimal but structurally complete image:
//
//	/
//	├── hello.txt   (regular, one compressed block)
//	├── link        (symlink -> hello.txt)
//	└── sub/
//	    └── big.bin (regular, one compressed block + one raw/uncompressed block)
func buildFixtureImage() fixtureImage {
	const superblockSize = 76

	helloContent := []byte("hello world")
	linkTarget := "hello.txt"
	bigBlock0 := bytes.Repeat([]byte{'A'}, 4096)
	bigBlock1 := bytes.Repeat([]byte{'B'}, 10)
	bigSize := uint32(len(bigBlock0) + len(bigBlock1))

	rootEntries := []dirEntry{
		{name: "hello.txt", mode: modeRegular, size: uint32(len(helloContent))},
		{name: "link", mode: modeSymlink, size: uint32(len(linkTarget))},
		{name: "sub", mode: modeDir, size: 0},
	}
	subEntries := []dirEntry{
		{name: "big.bin", mode: modeRegular, size: bigSize},
	}

	rootHeaderSize := 0
	for _, e := range rootEntries {
		rootHeaderSize += entrySize(e)
	}
	subHeaderSize := 0
	for _, e := range subEntries {
		subHeaderSize += entrySize(e)
	}

	rootHeaderOffset := int64(superblockSize)
	subHeaderOffset := rootHeaderOffset + int64(rootHeaderSize)
	dataStart := subHeaderOffset + int64(subHeaderSize)

	helloComp := zlibCompress(helloContent)
	linkComp := zlibCompress([]byte(linkTarget))
	bigComp0 := zlibCompress(bigBlock0)

	// Inode offsets are stored in 4-byte units, so every data region
	// starts on a 4-byte boundary.
	helloOffset := dataStart
	helloDataLen := (int64(4+len(helloComp)) + 3) &^ 3

	linkOffset := helloOffset + helloDataLen
	linkDataLen := (int64(4+len(linkComp)) + 3) &^ 3

	bigOffset := linkOffset + linkDataLen
	bigDataLen := int64(8 + len(bigComp0) + len(bigBlock1))

	totalSize := bigOffset + bigDataLen
	if totalSize < 4096 {
		totalSize = 4096 // an image is at least one page long
	}

	rootEntries[0].offset = helloOffset
	rootEntries[1].offset = linkOffset
	rootEntries[2].offset = subHeaderOffset
	rootEntries[2].size = uint32(subHeaderSize)
	subEntries[0].offset = bigOffset

	buf := make([]byte, totalSize)

	// Superblock.
	putUint32(buf, 0, 0x28CD3D45) // magic
	putUint32(buf, 4, uint32(totalSize))
	putUint32(buf, 8, 0)  // flags
	putUint32(buf, 12, 0) // future
	copy(buf[16:32], "Compressed ROMFS")
	// fsid (crc, edition, blocks, files) all left zero: FSID_VERSION_2 unset.
	copy(buf[48:64], "test-image")
	copy(buf[64:76], packInode(modeDir, 0, uint32(rootHeaderSize), 0, 0, rootHeaderOffset))

	writeDirHeader(buf, int(rootHeaderOffset), rootEntries)
	writeDirHeader(buf, int(subHeaderOffset), subEntries)

	pos := int(helloOffset)
	putUint32(buf, pos, uint32(helloOffset)+4+uint32(len(helloComp)))
	copy(buf[pos+4:], helloComp)

	pos = int(linkOffset)
	putUint32(buf, pos, uint32(linkOffset)+4+uint32(len(linkComp)))
	copy(buf[pos+4:], linkComp)

	pos = int(bigOffset)
	end0 := uint32(bigOffset) + 8 + uint32(len(bigComp0))
	end1 := end0 + uint32(len(bigBlock1))
	putUint32(buf, pos, end0)
	putUint32(buf, pos+4, end1|uint32(1<<31)) // blockUncompressed
	copy(buf[pos+8:], bigComp0)
	copy(buf[pos+8+len(bigComp0):], bigBlock1)

	return fixtureImage{
		data:        buf,
		helloOffset: helloOffset,
		helloData:   helloContent,
		linkOffset:  linkOffset,
		linkTarget:  linkTarget,
		bigOffset:   bigOffset,
		bigSize:     bigSize,
	}
}
