package cramfs

import (
	"errors"
	"io"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// populateDirectory decodes dir's child header block and, for every
// subdirectory among the children, recurses into it. The two phases run
// strictly in that order: every sibling's (inode, name) pair is read
// before any child directory is entered. On-disk, a directory's header
// block and its children's subtrees are interleaved with the headers of
// later siblings, so recursing mid-scan would walk the bounded stream out
// of the order the format actually lays bytes out in, the same hazard the
// teacher's dirReader (dir.go) sidesteps by fully draining one header
// before following any entry into its target.
func populateDirectory(dir *Node) error {
	size := int64(dir.inode.Size())
	r := io.NewSectionReader(dir.image.stream, dir.inode.Offset(), size)

	dir.childByName = make(map[string]*Node)

	var remaining = size
	for remaining > 0 {
		ino, err := inodeFromReader(r)
		if err != nil {
			return err
		}
		remaining -= inodeSize

		nameLen := ino.NameLen()
		nameBuf := make([]byte, nameLen)
		if nameLen > 0 {
			if _, err := io.ReadFull(r, nameBuf); err != nil {
				return err
			}
		}
		remaining -= int64(nameLen)

		name := trimASCII(nameBuf)
		child := &Node{
			image:  dir.image,
			parent: dir,
			inode:  ino,
			name:   name,
			kind:   kindFromInode(ino),
		}
		dir.childOrder = append(dir.childOrder, child)
		dir.childByName[name] = child
	}

	for _, child := range dir.childOrder {
		if child.kind == KindDirectory {
			if err := populateDirectory(child); err != nil {
				return err
			}
		}
	}
	return nil
}

var errNotDirectory = errors.New("cramfs: not a directory")

// Children returns dir's direct children in on-disk order. It fails for
// anything but a directory.
func (n *Node) Children() ([]*Node, error) {
	if n.kind != KindDirectory {
		return nil, errNotDirectory
	}
	return n.childOrder, nil
}

var errFound = errors.New("cramfs: found")

// Find searches n's subtree, n included, in pre-order for the first node
// whose name equals name's basename, mirroring pycramfs's Directory.find
// (file.py), which loops self.riter() rather than looking only at direct
// children. It fails for anything but a directory, and returns nil, nil if
// nothing in the subtree matches.
func (n *Node) Find(name string) (*Node, error) {
	if n.kind != KindDirectory {
		return nil, errNotDirectory
	}
	target := path.Base(name)

	var found *Node
	err := n.Walk(func(node *Node) error {
		if node.name == target {
			found = node
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return nil, err
	}
	return found, nil
}

// Total returns the number of descendants of a directory, recursively,
// not counting the directory itself. The result is memoized on first
// call.
func (n *Node) Total() (int, error) {
	if n.kind != KindDirectory {
		return 0, errNotDirectory
	}
	if !n.totalKnown {
		t := 0
		for _, c := range n.childOrder {
			t++
			if c.kind == KindDirectory {
				sub, err := c.Total()
				if err != nil {
					return 0, err
				}
				t += sub
			}
		}
		n.total = t
		n.totalKnown = true
	}
	return n.total, nil
}

// Walk calls fn once for every node in the subtree rooted at n, in
// pre-order (n itself first, then each child's subtree in on-disk order).
// fn is not called again for descendants once it returns a non-nil error;
// that error is returned to Walk's caller. Go 1.18 has no range-over-func
// iterators, so this callback shape stands in for the spec's lazy
// pre-order generator.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	if n.kind != KindDirectory {
		return nil
	}
	for _, c := range n.childOrder {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Select resolves path against n, walking one component at a time. A
// leading "/" restarts the walk from the image root regardless of n; "."
// stays put and ".." moves to the parent (staying at root if n is root).
// It returns nil, nil if the path doesn't resolve to anything, mirroring
// pycramfs's Cramfs.select.
func (n *Node) Select(path string) (*Node, error) {
	cur := n
	if strings.HasPrefix(path, "/") {
		for cur.parent != nil {
			cur = cur.parent
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if cur.parent != nil {
				cur = cur.parent
			}
			continue
		}
		if cur.kind != KindDirectory {
			return nil, nil
		}
		next, ok := cur.childByName[part]
		if !ok {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

// relPath renders full relative to base's path, the way pycramfs's
// PurePosixPath.relative_to does for itermatch: base's own path becomes
// ".", and any path below it has the base prefix and separator stripped.
// It is never called with base == "/": root matches against absolute
// paths unmodified instead (see Itermatch).
func relPath(base, full string) string {
	if full == base {
		return "."
	}
	return strings.TrimPrefix(full, base+"/")
}

// Itermatch returns every node in n's subtree (n included) whose path
// matches the glob pattern. Unlike shell globbing, "*" crosses "/"
// boundaries, matching pycramfs's fnmatch-based itermatch. Following
// pycramfs's Directory.itermatch (file.py), the path matched against
// depends on n: if n is root, matching is against each node's absolute
// path; otherwise it's against the path relative to n.
func (n *Node) Itermatch(pattern string) ([]*Node, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}

	isRoot := n.parent == nil
	base := n.Path()

	var matches []*Node
	err = n.Walk(func(node *Node) error {
		candidate := node.Path()
		if !isRoot {
			candidate = relPath(base, candidate)
		}
		if g.Match(candidate) {
			matches = append(matches, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
