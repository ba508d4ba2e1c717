// Command cramfs inspects, lists, extracts and verifies cramfs images.
package main

import (
	"fmt"
	"os"
)

const usage = `cramfs - Cramfs image CLI tool

Usage:
  cramfs list [-o off] [--pattern glob] [--type dlpsbcf] <image>
  cramfs info [-o off] <image>
  cramfs extract [-o off] [--path p] [--dest d] [--force] [--quiet] <image>
  cramfs check [-o off] <image>
  cramfs help

-o/--offset names the byte offset of the image within <image>, for images
embedded inside a larger file; it defaults to 0. Without -o, info scans the
whole file for superblocks. Options go before <image>.

Examples:
  cramfs list rootfs.cramfs                   List every entry in rootfs.cramfs
  cramfs list --type d rootfs.cramfs          List only directories
  cramfs list --pattern '*.ko' rootfs.cramfs  List entries matching a glob
  cramfs extract --dest out/ rootfs.cramfs    Extract rootfs.cramfs into ./out
  cramfs info firmware.bin                    Scan firmware.bin for embedded superblocks
  cramfs check rootfs.cramfs                  Check invariants and verify the CRC
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	verb, args := os.Args[1], os.Args[2:]

	var err error
	switch verb {
	case "list":
		err = runList(args)
	case "info":
		err = runInfo(args)
	case "extract":
		err = runExtract(args)
	case "check":
		err = runCheck(args)
	case "help", "-h", "-help", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "cramfs: unknown command %q\n", verb)
		fmt.Print(usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cramfs %s: %v\n", verb, err)
		os.Exit(1)
	}
}
