package cramfs_test

import (
	"errors"
	"testing"

	"github.com/AT0myks/cramfs"
)

func TestWalkPreOrder(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	var visited []string
	err = img.Walk(func(n *cramfs.Node) error {
		visited = append(visited, n.Path())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"/", "/hello.txt", "/link", "/sub", "/sub/big.bin"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestWalkStopsOnError(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	stop := errors.New("stop")
	count := 0
	err = img.Walk(func(n *cramfs.Node) error {
		count++
		if n.Name() == "link" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if count != 3 {
		t.Errorf("visited %d nodes before stopping, want 3", count)
	}
}

func TestFindMissingChild(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	node, err := img.Find("nope")
	if err != nil {
		t.Fatal(err)
	}
	if node != nil {
		t.Error("expected nil for a missing child")
	}
}

// TestFindNestedDescendant ensures Find searches the whole subtree, not
// just direct children: big.bin lives two levels below root, under sub/.
func TestFindNestedDescendant(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	node, err := img.Find("big.bin")
	if err != nil {
		t.Fatal(err)
	}
	if node == nil {
		t.Fatal("expected to find big.bin nested under sub/")
	}
	if node.Path() != "/sub/big.bin" {
		t.Errorf("Find(\"big.bin\") = %q, want %q", node.Path(), "/sub/big.bin")
	}

	// A non-root starting point should also search its whole subtree.
	sub, err := img.Select("sub")
	if err != nil || sub == nil {
		t.Fatalf("sub not found: %v", err)
	}
	found, err := sub.Find("big.bin")
	if err != nil {
		t.Fatal(err)
	}
	if found != node {
		t.Error("sub.Find(\"big.bin\") should return the same node as img.Find")
	}
}

func TestChildrenOnNonDirectory(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	hello, err := img.Find("hello.txt")
	if err != nil || hello == nil {
		t.Fatalf("hello.txt not found: %v", err)
	}

	if _, err := hello.Children(); err == nil {
		t.Error("expected an error calling Children on a regular file")
	}
}

func TestPath(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	if got := img.Root().Path(); got != "/" {
		t.Errorf("root Path() = %q, want %q", got, "/")
	}

	big, err := img.Select("sub/big.bin")
	if err != nil || big == nil {
		t.Fatalf("sub/big.bin not found: %v", err)
	}
	if got := big.Path(); got != "/sub/big.bin" {
		t.Errorf("Path() = %q, want %q", got, "/sub/big.bin")
	}
}
