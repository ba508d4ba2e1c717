package cramfs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/AT0myks/cramfs"
)

// TestMixedCompressedAndRawBlocks exercises a file whose data spans two
// blocks: one zlib-compressed, one stored raw behind the uncompressed
// block-pointer flag. Both must decode to the same bytes the fixture
// image was built from.
func TestMixedCompressedAndRawBlocks(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	big, err := img.Select("sub/big.bin")
	if err != nil || big == nil {
		t.Fatalf("sub/big.bin not found: %v", err)
	}

	data, err := big.ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}

	want := append(bytes.Repeat([]byte{'A'}, 4096), bytes.Repeat([]byte{'B'}, 10)...)
	if !bytes.Equal(data, want) {
		t.Errorf("decoded content mismatch: got %d bytes, want %d bytes", len(data), len(want))
	}
}

func TestReaderStreamsSameContentAsReadBytes(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	hello, err := img.Select("hello.txt")
	if err != nil || hello == nil {
		t.Fatalf("hello.txt not found: %v", err)
	}

	r, err := hello.Reader()
	if err != nil {
		t.Fatal(err)
	}
	streamed, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	whole, err := hello.ReadBytes()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(streamed, whole) {
		t.Errorf("Reader() content %q != ReadBytes() content %q", streamed, whole)
	}
}

func TestBlocksFailsOnDirectory(t *testing.T) {
	fx := buildFixtureImage()
	img, err := cramfs.FromBytes(fx.data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer img.Close()

	if _, err := img.Root().Blocks(); err == nil {
		t.Error("expected an error calling Blocks on a directory")
	}
}
