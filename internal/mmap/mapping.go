package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping represents one read-only mapped range of a file. It owns the
// underlying mapped memory and is responsible for unmapping it.
type Mapping struct {
	data   []byte // full platform mapping, allocation-granularity aligned
	window []byte // the requested [offset, offset+length) view into data
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// MapRange maps [offset, offset+length) of f as read-only. The offset does
// not need to be aligned; alignment padding is handled internally. The range
// must lie within the file, or reads into the mapping may fault.
func MapRange(f *os.File, offset int64, length int) (*Mapping, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	if length <= 0 {
		return nil, ErrInvalidSize
	}

	g := int64(granularity())
	aligned := offset - offset%g
	pad := int(offset - aligned)

	data, unmapFunc, err := osMap(f, aligned, pad+length)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:   data,
		window: data[pad : pad+length],
		unmap:  unmapFunc,
	}, nil
}

// Bytes returns exactly the requested range.
// Warning: the slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.window
}

// Len returns the length of the requested range in bytes.
func (m *Mapping) Len() int {
	return len(m.window)
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Advise provides hints to the kernel about how the range will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	// Advise the whole aligned mapping; madvise wants page-aligned addresses.
	return osAdvise(m.data, pattern)
}
