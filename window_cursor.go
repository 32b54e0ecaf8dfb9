package slidemap

import "fmt"

// WindowCursor is the Manager-backed Cursor implementation. A cursor stays
// associated with its resource for its whole life and borrows one mapped
// region at a time as its window. Releasing the window keeps the
// association, so the cursor can be relocated or rebound again later.
type WindowCursor struct {
	m   *Manager
	src *source
	r   *region
}

var _ Cursor = (*WindowCursor)(nil)

// IsAssociated reports whether the cursor is bound to a resource.
func (c *WindowCursor) IsAssociated() bool {
	return c != nil && c.src != nil
}

// IsValid reports whether the cursor currently holds a mapped window.
// Windows do not survive their manager; a closed manager invalidates every
// cursor.
func (c *WindowCursor) IsValid() bool {
	return c != nil && c.r != nil && !c.m.closed
}

// WindowBegin returns the absolute offset of the window's first byte, 0 when
// no window is held.
func (c *WindowCursor) WindowBegin() int64 {
	if c.r == nil {
		return 0
	}
	return c.r.start
}

// WindowEnd returns the absolute offset one past the window's last byte, 0
// when no window is held.
func (c *WindowCursor) WindowEnd() int64 {
	if c.r == nil {
		return 0
	}
	return c.r.end()
}

// IncludesOffset reports whether the current window contains offset.
func (c *WindowCursor) IncludesOffset(offset int64) bool {
	return c.r != nil && c.r.includes(offset)
}

// Bytes returns exactly the bytes of the current window. The slice aliases
// mapped memory and is valid only until the next relocation or release.
func (c *WindowCursor) Bytes() []byte {
	if c.r == nil {
		return nil
	}
	return c.r.mapping.Bytes()
}

// Relocate moves the window to cover at least length bytes at offset. The
// granted window may be shorter than requested when the resource ends first,
// but a nil return guarantees it contains offset; an offset at or past the
// end of the resource fails with ErrOutOfRange. flags carries an optional
// access-pattern hint for newly mapped windows.
//
// The current window is given back before the new one is acquired, so a
// cursor never pins two windows at once; if acquiring the new window fails,
// the cursor is left without one until the next successful relocation.
func (c *WindowCursor) Relocate(offset, length int64, flags int) error {
	if !c.IsAssociated() {
		return fmt.Errorf("%w: cursor is not associated with a resource", ErrInvalidRegion)
	}
	if c.m.closed {
		return ErrClosed
	}
	if offset < 0 || offset >= c.src.size {
		return fmt.Errorf("%w: offset %d outside resource [0, %d)", ErrOutOfRange, offset, c.src.size)
	}
	_ = length // windows are fixed-size chunks; see Manager.window

	if c.r != nil && c.r.includes(offset) {
		c.m.lru.MoveToFront(c.r.lruElem)
		return nil
	}

	// Give the old window back first; holding it would pin memory the new
	// window may need under a tight budget.
	if c.r != nil {
		c.m.releaseRegion(c.r)
		c.r = nil
	}

	r, err := c.m.obtainRegion(c.src, offset, flags)
	if err != nil {
		return err
	}
	c.r = r

	return nil
}

// Release gives the current window back to the manager. The cursor remains
// associated and may be relocated again. Safe to call multiple times.
func (c *WindowCursor) Release() {
	if c == nil || c.r == nil {
		return
	}
	c.m.releaseRegion(c.r)
	c.r = nil
}

// Path returns the path of the associated resource.
func (c *WindowCursor) Path() string {
	if c.src == nil {
		return ""
	}
	return c.src.path
}

// ResourceSize returns the size in bytes of the associated resource.
func (c *WindowCursor) ResourceSize() int64 {
	if c.src == nil {
		return 0
	}
	return c.src.size
}
