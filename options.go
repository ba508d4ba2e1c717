package cramfs

// Option configures an Image at construction time, following the
// teacher's functional-options pattern (options.go).
type Option func(*Image) error

// WithOffset tells Open/FromReaderAt that the superblock doesn't start at
// byte 0 of src, for images embedded inside a larger file (a firmware
// blob, a partition dump). off is an absolute byte offset into src.
func WithOffset(off int64) Option {
	return func(img *Image) error {
		img.offset = off
		return nil
	}
}

// KeepOpen prevents Image.Close from closing the underlying source, for
// callers that opened it themselves and want to reuse or close it on
// their own terms.
func KeepOpen() Option {
	return func(img *Image) error {
		img.keepOpen = true
		return nil
	}
}
