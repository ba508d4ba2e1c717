package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AT0myks/cramfs"
)

// typeChars maps the one-letter --type codes onto the Kind predicate that
// recognizes them. 'f' is accepted alongside '-' for a regular file,
// matching the spec's "f ≡ regular file ≡ '-'".
var typeChars = map[byte]func(*cramfs.Node) bool{
	'd': (*cramfs.Node).IsDir,
	'l': (*cramfs.Node).IsSymlink,
	'p': (*cramfs.Node).IsFIFO,
	's': (*cramfs.Node).IsSocket,
	'b': (*cramfs.Node).IsBlockDevice,
	'c': (*cramfs.Node).IsCharDevice,
	'f': (*cramfs.Node).IsRegular,
	'-': (*cramfs.Node).IsRegular,
}

func runList(args []string) error {
	fset := flag.NewFlagSet("list", flag.ExitOnError)
	offset := fset.Int64("o", 0, "byte offset of the image within the file")
	fset.Int64Var(offset, "offset", 0, "byte offset of the image within the file")
	pattern := fset.String("pattern", "", "only list paths matching this glob")
	typeFlag := fset.String("type", "", "only list nodes of these types (one or more of d l p s b c f)")
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: cramfs list [-o offset] [--pattern glob] [--type dlpsbcf] <image>")
	}
	if *offset < 0 {
		return fmt.Errorf("offset must be >= 0")
	}

	img, err := openImage(rest[0], *offset)
	if err != nil {
		return err
	}
	defer img.Close()

	var preds []func(*cramfs.Node) bool
	for i := 0; i < len(*typeFlag); i++ {
		pred, ok := typeChars[(*typeFlag)[i]]
		if !ok {
			return fmt.Errorf("unknown --type code %q", (*typeFlag)[i])
		}
		preds = append(preds, pred)
	}

	var nodes []*cramfs.Node
	if *pattern != "" {
		nodes, err = img.Itermatch(*pattern)
		if err != nil {
			return err
		}
	} else {
		err = img.Walk(func(n *cramfs.Node) error {
			nodes = append(nodes, n)
			return nil
		})
		if err != nil {
			return err
		}
	}

	count := 0
	for _, n := range nodes {
		if n == img.Root() {
			continue
		}
		if !matchesAnyType(n, preds) {
			continue
		}
		printNode(os.Stdout, n)
		count++
	}
	fmt.Printf("%d entries\n", count)
	return nil
}

func matchesAnyType(n *cramfs.Node, preds []func(*cramfs.Node) bool) bool {
	if len(preds) == 0 {
		return true
	}
	for _, pred := range preds {
		if pred(n) {
			return true
		}
	}
	return false
}

func printNode(w *os.File, n *cramfs.Node) {
	line := fmt.Sprintf("%s %8d %d:%d %s", n.Filemode(), n.Size(), n.UID(), n.GID(), n.Path())
	if n.IsSymlink() {
		if target, err := n.Readlink(); err == nil {
			line += " -> " + target
		}
	}
	fmt.Fprintln(w, strings.TrimRight(line, " "))
}
