package cramfs

import "fmt"

// ErrorKind classifies the reason a CramfsError was raised, so callers can
// branch on the failure without parsing the message.
type ErrorKind int

const (
	// WrongMagic means the superblock's magic field didn't match Magic.
	WrongMagic ErrorKind = iota
	// WrongSignature means the superblock's signature field wasn't "Compressed ROMFS".
	WrongSignature
	// UnsupportedFlags means the superblock set a flag bit outside SupportedFlags.
	UnsupportedFlags
	// ImageTooSmall means the superblock's declared size is below PageSize.
	ImageTooSmall
	// ZeroFileCount means FSID_VERSION_2 is set but fsid.files is zero.
	ZeroFileCount
	// UnsupportedLayout means a block pointer had the DIRECT_PTR bit set.
	UnsupportedLayout
	// NotFound means a path lookup on the CLI surface failed to resolve.
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case WrongMagic:
		return "wrong magic"
	case WrongSignature:
		return "wrong signature"
	case UnsupportedFlags:
		return "unsupported flags"
	case ImageTooSmall:
		return "image too small"
	case ZeroFileCount:
		return "zero file count"
	case UnsupportedLayout:
		return "unsupported layout"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// CramfsError is the single domain error category raised by this package.
// Every validation failure and unsupported on-disk condition is reported
// through a CramfsError so that callers can discriminate on Kind rather
// than matching message text.
type CramfsError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CramfsError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

// Is makes errors.Is(err, cramfs.ErrWrongMagic) (and friends) work by
// comparing Kind rather than requiring identical *CramfsError pointers.
func (e *CramfsError) Is(target error) bool {
	other, ok := target.(*CramfsError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newError(kind ErrorKind, format string, args ...any) *CramfsError {
	return &CramfsError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel errors usable with errors.Is, one per ErrorKind, generalizing
// the teacher's flat sentinel-variable block to carry a machine-readable
// Kind alongside the message.
var (
	ErrWrongMagic        = &CramfsError{Kind: WrongMagic, Msg: "wrong magic"}
	ErrWrongSignature    = &CramfsError{Kind: WrongSignature, Msg: "wrong signature"}
	ErrUnsupportedFlags  = &CramfsError{Kind: UnsupportedFlags, Msg: "unsupported filesystem features"}
	ErrImageTooSmall     = &CramfsError{Kind: ImageTooSmall, Msg: "image too small"}
	ErrZeroFileCount     = &CramfsError{Kind: ZeroFileCount, Msg: "zero file count"}
	ErrUnsupportedLayout = &CramfsError{Kind: UnsupportedLayout, Msg: "only contiguous data layout supported"}
	ErrNotFound          = &CramfsError{Kind: NotFound, Msg: "not found"}
)
