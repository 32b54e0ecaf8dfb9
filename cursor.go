package slidemap

// Cursor is the window-providing collaborator a Buffer reads through.
// It owns a sliding window of currently-mapped bytes over an underlying
// resource and can be asked to shift that window to cover any offset.
//
// All offsets are absolute positions in the underlying resource, not
// buffer-relative indices.
//
// WindowCursor is the Manager-backed implementation; tests and embedders may
// supply their own.
type Cursor interface {
	// IsValid reports whether the cursor currently exposes a live window.
	// It must be checked before any read.
	IsValid() bool

	// IsAssociated reports whether the cursor is bound to a resource,
	// independent of having an active window.
	IsAssociated() bool

	// IncludesOffset reports whether the current window contains the given
	// absolute offset.
	IncludesOffset(offset int64) bool

	// WindowBegin returns the absolute offset of the first byte of the
	// current window.
	WindowBegin() int64

	// WindowEnd returns the absolute offset one past the last byte of the
	// current window.
	WindowEnd() int64

	// Relocate requests that the window cover at least length bytes starting
	// at offset. The granted window may be shorter than requested when the
	// resource ends first, but a nil return guarantees the window contains
	// offset. flags is an opaque pass-through of mapping hints.
	Relocate(offset, length int64, flags int) error

	// Bytes returns exactly the bytes of the current window, no more, no
	// less. The slice is valid only until the next relocation or release.
	Bytes() []byte

	// Release relinquishes the current window. The cursor stays associated
	// with its resource and may be relocated again later. Safe to call
	// multiple times.
	Release()
}
