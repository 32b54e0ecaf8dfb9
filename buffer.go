package slidemap

import (
	"fmt"
	"math"
)

// UnboundedSize makes a buffer impose no length limit of its own; reads are
// bounded only by what the underlying resource can supply.
const UnboundedSize int64 = math.MaxInt64

// Buffer is a read-only, byte-addressable view mapping its own index space
// [0, size) onto the absolute range [offset, offset+size) of an underlying
// resource. Access is fulfilled incrementally through a Cursor: reads that
// miss the cursor's current window trigger a relocation, and slices larger
// than one window are stitched together from multiple relocations. The
// windowing is invisible to correctness; results are byte-identical to a
// single contiguous read.
//
// A Buffer is not safe for concurrent use. Relocating the window and reading
// from it are separate steps with no atomicity between them, so callers must
// ensure one exclusive accessor per buffer at a time.
type Buffer struct {
	c      Cursor
	offset int64
	size   int64
	bound  bool
}

// New creates a buffer bound to cursor at the given absolute offset and
// binds it immediately. size <= 0 means UnboundedSize. flags is passed
// through to the cursor's relocations. On failure the buffer is left fully
// released and ErrInvalidRegion is returned.
func New(cursor Cursor, offset, size int64, flags int) (*Buffer, error) {
	b := NewUnbound()
	if err := b.Bind(cursor, offset, size, flags); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewUnbound creates a buffer with no cursor. Bind must be called before
// the first read.
func NewUnbound() *Buffer {
	return &Buffer{}
}

// Bind associates the buffer with the absolute range [offset, offset+size)
// of the cursor's resource and acquires an initial window. If cursor is nil,
// a previously bound cursor is reused. size <= 0 means UnboundedSize.
//
// Binding fails with ErrInvalidRegion when no cursor is available, the
// cursor is not associated with a resource, or the requested offset cannot
// be covered by a valid window. Rebinding after Release is legal and resets
// the buffer to a usable state.
func (b *Buffer) Bind(cursor Cursor, offset, size int64, flags int) error {
	if cursor != nil {
		b.c = cursor
	}
	if b.c == nil {
		return fmt.Errorf("%w: no cursor provided", ErrInvalidRegion)
	}
	if !b.c.IsAssociated() {
		return fmt.Errorf("%w: cursor is not associated with a resource", ErrInvalidRegion)
	}
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidRegion, offset)
	}
	if size <= 0 {
		size = UnboundedSize
	}

	length := size
	if length > UnboundedSize-offset {
		length = UnboundedSize - offset
	}
	if err := b.c.Relocate(offset, length, flags); err != nil {
		return fmt.Errorf("%w: offset out of bounds or resource not ready: %w", ErrInvalidRegion, err)
	}
	if !b.c.IsValid() {
		return fmt.Errorf("%w: offset out of bounds or resource not ready", ErrInvalidRegion)
	}

	b.offset = offset
	b.size = size
	b.bound = true

	return nil
}

// Release relinquishes the current window. The cursor stays associated with
// its resource, so the buffer may be rebound later. Release is idempotent;
// calling it on an already-released or unbound buffer is a no-op.
func (b *Buffer) Release() {
	if b.c != nil {
		b.c.Release()
	}
	b.bound = false
}

// Close releases the buffer. It implements io.Closer so the window can be
// tied to a scope with defer; it never returns an error, since there is no
// caller left to act on a teardown failure.
func (b *Buffer) Close() error {
	b.Release()
	return nil
}

// Cursor returns the cursor currently providing access to the data, or nil
// for a never-bound buffer.
func (b *Buffer) Cursor() Cursor {
	return b.c
}

// Offset returns the absolute offset buffer index 0 maps to.
func (b *Buffer) Offset() int64 {
	return b.offset
}

// Size returns the buffer's addressable length, UnboundedSize if no limit
// was set at bind time.
func (b *Buffer) Size() int64 {
	return b.size
}

func (b *Buffer) readable() error {
	if !b.bound || b.c == nil || !b.c.IsValid() {
		return fmt.Errorf("%w: read on unbound or released buffer", ErrNotBound)
	}
	return nil
}

// At returns the byte at buffer-relative index i. If the current window does
// not include the position, a minimal relocation is requested first.
func (b *Buffer) At(i int64) (byte, error) {
	if err := b.readable(); err != nil {
		return 0, err
	}
	if i < 0 || i >= b.size {
		return 0, fmt.Errorf("%w: index %d outside [0, %d)", ErrOutOfRange, i, b.size)
	}

	pos := b.offset + i
	if !b.c.IncludesOffset(pos) {
		if err := b.c.Relocate(pos, 1, 0); err != nil {
			return 0, fmt.Errorf("%w: index %d: %w", ErrOutOfRange, i, err)
		}
		if !b.c.IncludesOffset(pos) {
			return 0, fmt.Errorf("%w: index %d is past the end of the resource", ErrOutOfRange, i)
		}
	}

	return b.c.Bytes()[pos-b.c.WindowBegin()], nil
}

// Slice returns the bytes at buffer-relative indices [i, j), j >= i.
//
// When the current window already contains the whole range, the returned
// slice is a zero-copy view into the window; it is valid only until the next
// relocation or release of this buffer's cursor. Ranges spanning more than
// one window are assembled into a freshly allocated slice across as many
// relocations as needed.
//
// A range extending past the resource's available data fails with
// ErrOutOfRange; Slice never returns fewer bytes than requested.
func (b *Buffer) Slice(i, j int64) ([]byte, error) {
	if err := b.readable(); err != nil {
		return nil, err
	}
	if i < 0 || j < i || j > b.size {
		return nil, fmt.Errorf("%w: range [%d, %d) outside [0, %d)", ErrOutOfRange, i, j, b.size)
	}
	if i == j {
		return []byte{}, nil
	}

	begin := b.offset + i
	length := j - i
	// An unbounded buffer at a non-zero offset admits j values whose absolute
	// translation would overflow int64. Cap the length the same way Bind caps
	// its relocation length; a request that large can only end in
	// ErrOutOfRange at end-of-resource anyway.
	if length > UnboundedSize-begin {
		length = UnboundedSize - begin
	}
	end := begin + length

	// Fast path: the range is fully inside the current window. Dominant case,
	// checked first on every call; no relocation, no copy.
	if wb := b.c.WindowBegin(); wb <= begin && end <= b.c.WindowEnd() {
		return b.c.Bytes()[begin-wb : end-wb], nil
	}

	// Allocation hint only; oversized requests fail at end-of-resource long
	// before the result grows anywhere near this.
	hint := length
	if hint > 1<<20 {
		hint = 1 << 20
	}
	out := make([]byte, 0, hint)
	ofs := begin
	remaining := length
	for remaining > 0 {
		if err := b.c.Relocate(ofs, remaining, 0); err != nil {
			return nil, fmt.Errorf("%w: range [%d, %d): %w", ErrOutOfRange, i, j, err)
		}
		wb, we := b.c.WindowBegin(), b.c.WindowEnd()
		if ofs < wb || ofs >= we {
			// Zero-progress relocation: the resource ends before the range does.
			return nil, fmt.Errorf("%w: range [%d, %d) exceeds available data at offset %d", ErrOutOfRange, i, j, ofs)
		}

		n := we - ofs
		if n > remaining {
			n = remaining
		}
		out = append(out, b.c.Bytes()[ofs-wb:ofs-wb+n]...)
		ofs += n
		remaining -= n
	}

	return out, nil
}
