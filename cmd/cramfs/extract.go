package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AT0myks/cramfs"
)

func runExtract(args []string) error {
	fset := flag.NewFlagSet("extract", flag.ExitOnError)
	quiet := fset.Bool("quiet", false, "don't print each extracted path")
	fset.BoolVar(quiet, "q", false, "don't print each extracted path")
	force := fset.Bool("force", false, "overwrite an existing destination")
	offset := fset.Int64("o", 0, "byte offset of the image within the file")
	fset.Int64Var(offset, "offset", 0, "byte offset of the image within the file")
	path := fset.String("path", "/", "path within the image to extract")
	dest := fset.String("dest", "", "destination path (default: next to the source image)")
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: cramfs extract [-o offset] [--path p] [--dest d] [--force] [--quiet] <image>")
	}
	if *offset < 0 {
		return fmt.Errorf("offset must be >= 0")
	}
	imagePath := rest[0]

	img, err := openImage(imagePath, *offset)
	if err != nil {
		return err
	}
	defer img.Close()

	node, err := img.Select(*path)
	if err != nil {
		return err
	}
	if node == nil {
		return &cramfs.CramfsError{Kind: cramfs.NotFound, Msg: fmt.Sprintf("%s: no such path in image", *path)}
	}

	destPath := *dest
	if destPath == "" {
		destPath = extractDefaultDest(imagePath, node)
	}
	if !*force {
		if _, err := os.Lstat(destPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", destPath)
		}
	}

	e := &extractor{quiet: *quiet}
	if node.IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return err
		}
		return e.extractDir(node, destPath)
	}
	if err := e.extractNode(node, destPath); err != nil {
		return fmt.Errorf("%s: %w", node.Path(), err)
	}
	return nil
}

// extractDefaultDest mirrors the spec's "next to the source file" default:
// the extracted node's name (the image's own basename for root) with
// ".extracted" appended, placed in the directory containing imagePath.
func extractDefaultDest(imagePath string, node *cramfs.Node) string {
	base := filepath.Base(imagePath)
	if node.Name() != "" {
		base = node.Name()
	}
	return filepath.Join(filepath.Dir(imagePath), base+".extracted")
}

type extractor struct {
	quiet bool
}

func (e *extractor) log(path string) {
	if !e.quiet {
		fmt.Println(path)
	}
}

// extractDir writes dir's children under destDir, recursing into
// subdirectories. It mirrors pycramfs's extract_dir: directories are
// created before their children are written, and every node's
// permissions, ownership and timestamp are fixed up only after its
// content exists, the same order pycramfs's extract.py uses so that a
// read-only directory mode doesn't block writing its own children.
func (e *extractor) extractDir(dir *cramfs.Node, destDir string) error {
	children, err := dir.Children()
	if err != nil {
		return err
	}
	for _, child := range children {
		dest := filepath.Join(destDir, child.Name())
		if err := e.extractNode(child, dest); err != nil {
			return fmt.Errorf("%s: %w", child.Path(), err)
		}
	}
	return nil
}

func (e *extractor) extractNode(n *cramfs.Node, dest string) error {
	e.log(n.Path())

	switch {
	case n.IsDir():
		if err := os.Mkdir(dest, 0o755); err != nil && !os.IsExist(err) {
			return err
		}
		if err := e.extractDir(n, dest); err != nil {
			return err
		}
	case n.IsRegular():
		if err := writeRegular(n, dest); err != nil {
			return err
		}
	case n.IsSymlink():
		target, err := n.Readlink()
		if err != nil {
			return err
		}
		if err := os.Symlink(target, dest); err != nil {
			// Fall back to writing the target as a plain file when the
			// destination filesystem can't hold a symlink.
			if err2 := os.WriteFile(dest, []byte(target), 0o644); err2 != nil {
				return err
			}
		}
	case n.IsCharDevice(), n.IsBlockDevice(), n.IsFIFO(), n.IsSocket():
		if err := mknod(n, dest); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown node kind %s", n.Kind())
	}

	return finishNode(n, dest)
}

func writeRegular(n *cramfs.Node, dest string) error {
	data, err := n.ReadBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// finishNode applies permissions, ownership and the epoch timestamp cramfs
// stores no real mtime for, after the node's content or device special
// file already exists. Symlinks are left as created. Ownership failures
// are swallowed: chown almost always fails for an unprivileged process and
// pycramfs treats it the same way, as a best-effort operation rather than
// a fatal one. chown clears setuid/setgid, so those bits are applied by a
// second chmod after it.
func finishNode(n *cramfs.Node, dest string) error {
	if n.IsSymlink() {
		return nil
	}
	if err := os.Chmod(dest, n.FileMode().Perm()); err != nil {
		return err
	}
	_ = lchown(dest, int(n.UID()), int(n.GID()))
	if special := n.FileMode() & (os.ModeSetuid | os.ModeSetgid); special != 0 {
		if err := os.Chmod(dest, n.FileMode().Perm()|special); err != nil {
			return err
		}
	}

	epoch := time.Unix(0, 0)
	_ = os.Chtimes(dest, epoch, epoch)
	return nil
}
