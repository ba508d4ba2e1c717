package main

import (
	"fmt"
	"os"

	"github.com/AT0myks/cramfs"
)

// openImage opens path at the given byte offset, rejecting an offset that
// would leave less than one page of data for the superblock to claim.
func openImage(path string, offset int64) (*cramfs.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size()-offset < cramfs.PageSize {
		return nil, fmt.Errorf("%s: file too small for an image at offset %d", path, offset)
	}
	return cramfs.Open(path, cramfs.WithOffset(offset))
}
