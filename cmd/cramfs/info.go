package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AT0myks/cramfs"
)

// runInfo scans the whole file for embedded superblocks and prints each
// one's fields, rather than assuming the caller already knows where the
// image starts. That's the scanner's job (cramfs.FindSuperblocks); -o
// narrows the scan to a single known offset instead.
func runInfo(args []string) error {
	fset := flag.NewFlagSet("info", flag.ExitOnError)
	offset := fset.Int64("o", -1, "only report the superblock at this byte offset")
	fset.Int64Var(offset, "offset", -1, "only report the superblock at this byte offset")
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: cramfs info [-o offset] <image>")
	}

	f, err := os.Open(rest[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var offsets []int64
	if *offset >= 0 {
		offsets = []int64{*offset}
	} else {
		hits, err := cramfs.FindSuperblocks(f)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			return fmt.Errorf("%s: no cramfs superblock found", rest[0])
		}
		for _, h := range hits {
			offsets = append(offsets, h.Offset)
		}
	}

	for i, off := range offsets {
		if i > 0 {
			fmt.Println()
		}
		if err := printSuperblockAt(rest[0], off); err != nil {
			fmt.Fprintf(os.Stderr, "offset %#x: %v\n", off, err)
		}
	}
	return nil
}

func printSuperblockAt(path string, offset int64) error {
	img, err := cramfs.Open(path, cramfs.WithOffset(offset))
	if err != nil {
		return err
	}
	defer img.Close()

	sb := img.Superblock()

	fmt.Printf("Superblock at offset %#x\n", offset)
	fmt.Println("=========================")
	fmt.Printf("Name:             %q\n", sb.Name)
	fmt.Printf("Signature:        %q\n", sb.Signature)
	fmt.Printf("Size:             %d bytes\n", sb.Size)
	fmt.Printf("Flags:            %s\n", sb.Flags)
	fmt.Printf("Edition:          %d\n", sb.FSID.Edition)
	fmt.Printf("Blocks:           %d\n", sb.FSID.Blocks)
	fmt.Printf("Files:            %d\n", sb.FSID.Files)
	fmt.Printf("Stored CRC:       0x%08x\n", sb.FSID.CRC)

	var dirs, regular, symlinks, devices, other int
	err = img.Walk(func(n *cramfs.Node) error {
		switch {
		case n.IsDir():
			dirs++
		case n.IsRegular():
			regular++
		case n.IsSymlink():
			symlinks++
		case n.IsCharDevice(), n.IsBlockDevice():
			devices++
		default:
			other++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Content Summary")
	fmt.Println("---------------")
	fmt.Printf("Directories:      %d\n", dirs-1) // exclude root itself
	fmt.Printf("Regular files:    %d\n", regular)
	fmt.Printf("Symlinks:         %d\n", symlinks)
	fmt.Printf("Device nodes:     %d\n", devices)
	fmt.Printf("FIFOs/sockets:    %d\n", other)

	return nil
}
