package slidemap

import "errors"

var (
	// ErrInvalidRegion is returned when a bind requests an offset or size the
	// cursor cannot satisfy, or when the cursor is not associated with a
	// resource at bind time.
	ErrInvalidRegion = errors.New("slidemap: invalid region")

	// ErrNotBound is returned when a read is attempted on an unbound or
	// released buffer, or while the cursor reports no valid window.
	ErrNotBound = errors.New("slidemap: buffer is not bound")

	// ErrOutOfRange is returned when a read extends past the resource's
	// available data, even after relocation attempts. Reads never return
	// short results; they fail with this error instead.
	ErrOutOfRange = errors.New("slidemap: offset out of range")

	// ErrClosed is returned when using a cursor whose manager has been
	// closed.
	ErrClosed = errors.New("slidemap: manager is closed")
)
