//go:build !unix

package main

import (
	"fmt"

	"github.com/AT0myks/cramfs"
)

// mknod has no portable equivalent outside POSIX systems; device nodes,
// FIFOs and sockets are reported rather than silently skipped.
func mknod(n *cramfs.Node, dest string) error {
	return fmt.Errorf("%s: creating %s nodes is only supported on unix", dest, n.Kind())
}

func lchown(path string, uid, gid int) error {
	return nil
}
