package cramfs

import "io/fs"

// POSIX mode bits, as packed into Inode.Mode. cramfs inodes are Linux mode_t
// words, so these mirror the constants from <bits/stat.h>.
const (
	modeIFMT   = 0xF000
	modeIFSOCK = 0xC000
	modeIFLNK  = 0xA000
	modeIFREG  = 0x8000
	modeIFBLK  = 0x6000
	modeIFDIR  = 0x4000
	modeIFCHR  = 0x2000
	modeIFIFO  = 0x1000

	modeISUID = 0x800
	modeISGID = 0x400
	modeISVTX = 0x200
)

// unixModeToFS converts a raw POSIX mode word to an fs.FileMode, carrying
// across the type bits and the permission bits.
func unixModeToFS(mode uint16) fs.FileMode {
	m := fs.FileMode(mode) & fs.ModePerm

	switch mode & modeIFMT {
	case modeIFDIR:
		m |= fs.ModeDir
	case modeIFLNK:
		m |= fs.ModeSymlink
	case modeIFCHR:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case modeIFBLK:
		m |= fs.ModeDevice
	case modeIFIFO:
		m |= fs.ModeNamedPipe
	case modeIFSOCK:
		m |= fs.ModeSocket
	}

	if mode&modeISUID != 0 {
		m |= fs.ModeSetuid
	}
	if mode&modeISGID != 0 {
		m |= fs.ModeSetgid
	}
	if mode&modeISVTX != 0 {
		m |= fs.ModeSticky
	}

	return m
}

// filemodeString renders mode as a ten-character POSIX permission string
// (e.g. "drwxr-xr-x"), the same shape as Python's stat.filemode.
func filemodeString(mode uint16) string {
	buf := [10]byte{}

	switch mode & modeIFMT {
	case modeIFDIR:
		buf[0] = 'd'
	case modeIFLNK:
		buf[0] = 'l'
	case modeIFCHR:
		buf[0] = 'c'
	case modeIFBLK:
		buf[0] = 'b'
	case modeIFIFO:
		buf[0] = 'p'
	case modeIFSOCK:
		buf[0] = 's'
	default:
		buf[0] = '-'
	}

	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if mode&(1<<(8-i)) != 0 {
			buf[1+i] = rwx[i]
		} else {
			buf[1+i] = '-'
		}
	}

	if mode&modeISUID != 0 {
		if buf[3] == 'x' {
			buf[3] = 's'
		} else {
			buf[3] = 'S'
		}
	}
	if mode&modeISGID != 0 {
		if buf[6] == 'x' {
			buf[6] = 's'
		} else {
			buf[6] = 'S'
		}
	}
	if mode&modeISVTX != 0 {
		if buf[9] == 'x' {
			buf[9] = 't'
		} else {
			buf[9] = 'T'
		}
	}

	return string(buf[:])
}
