package main

import (
	"flag"
	"fmt"

	"github.com/AT0myks/cramfs"
)

// runCheck walks the image in pre-order and prints an advisory message for
// every node that violates one of the non-fatal structural invariants
// (namelen, the offset/size pairing per file type). These are warnings,
// not failures: the core already rejected anything that would corrupt
// output at construction time, so what's left here is "this image looks
// malformed" rather than "this image can't be read".
func runCheck(args []string) error {
	fset := flag.NewFlagSet("check", flag.ExitOnError)
	offset := fset.Int64("o", 0, "byte offset of the image within the file")
	fset.Int64Var(offset, "offset", 0, "byte offset of the image within the file")
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: cramfs check [-o offset] <image>")
	}
	if *offset < 0 {
		return fmt.Errorf("offset must be >= 0")
	}

	img, err := openImage(rest[0], *offset)
	if err != nil {
		return err
	}
	defer img.Close()

	warnings := 0
	err = img.Walk(func(n *cramfs.Node) error {
		for _, msg := range nodeWarnings(n) {
			fmt.Printf("%s: %s\n", n.Path(), msg)
			warnings++
		}
		return nil
	})
	if err != nil {
		return err
	}

	stored := img.Superblock().FSID.CRC
	computed, crcErr := img.CalculateCRC()
	if crcErr != nil {
		return crcErr
	}
	if stored != computed {
		fmt.Printf("crc mismatch: stored 0x%08x, computed 0x%08x\n", stored, computed)
		warnings++
	}

	if warnings == 0 {
		fmt.Println("OK: no issues found")
	} else {
		fmt.Printf("%d issue(s) found\n", warnings)
	}
	return nil
}

// nodeWarnings reports which of the offset/size invariants (spec section
// 3, items 3-7) n's inode violates. It never returns an error: these are
// advisory, the same as cramfsck's "not all warnings are fatal" checks.
func nodeWarnings(n *cramfs.Node) []string {
	var msgs []string
	ino := n.Inode()

	if n.Parent() != nil && ino.NameLen() == 0 {
		msgs = append(msgs, "empty name")
	}

	switch n.Kind() {
	case cramfs.KindDirectory:
		if (ino.Offset() == 0) != (ino.Size() == 0) {
			msgs = append(msgs, "directory offset/size mismatch")
		}
	case cramfs.KindRegular:
		if (ino.Offset() == 0) != (ino.Size() == 0) {
			msgs = append(msgs, "regular file offset/size mismatch")
		}
	case cramfs.KindSymlink:
		if ino.Offset() <= 0 || ino.Size() == 0 {
			msgs = append(msgs, "symlink has no target data")
		}
	case cramfs.KindCharDevice, cramfs.KindBlockDevice:
		if ino.Offset() != 0 {
			msgs = append(msgs, "device node has nonzero offset")
		}
	case cramfs.KindFIFO, cramfs.KindSocket:
		if ino.Offset() != 0 || ino.Size() != 0 {
			msgs = append(msgs, "fifo/socket has nonzero offset or size")
		}
	}

	return msgs
}
