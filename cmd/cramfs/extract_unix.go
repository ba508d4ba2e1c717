//go:build unix

package main

import (
	"golang.org/x/sys/unix"

	"github.com/AT0myks/cramfs"
)

// mknod creates the special file backing a device node, FIFO or socket
// node. For char/block devices, the inode's Size field holds the raw
// device number cramfs packed at image-creation time; it's passed to
// Mknod unmodified, which is how the image's own mknod call originally
// produced it.
func mknod(n *cramfs.Node, dest string) error {
	mode := uint32(n.FileMode().Perm())
	switch {
	case n.IsCharDevice():
		mode |= unix.S_IFCHR
	case n.IsBlockDevice():
		mode |= unix.S_IFBLK
	case n.IsFIFO():
		mode |= unix.S_IFIFO
	case n.IsSocket():
		mode |= unix.S_IFSOCK
	}

	var dev int
	if n.IsCharDevice() || n.IsBlockDevice() {
		dev = int(n.Size())
	}
	return unix.Mknod(dest, mode, dev)
}

func lchown(path string, uid, gid int) error {
	return unix.Lchown(path, uid, gid)
}
