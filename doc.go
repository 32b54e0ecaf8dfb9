// Package slidemap provides sliding-window memory-mapped buffers for files
// too large, or too numerous, to map in full.
//
// # Overview
//
// A Buffer is a relative, random-access byte view onto a range of a file.
// It never maps the file itself; it reads through a Cursor, which owns a
// window of currently-mapped bytes and shifts that window on demand. Reads
// inside the current window are zero-copy; reads outside it relocate the
// window, and slices spanning several windows are stitched together
// transparently.
//
// # Quick Start
//
//	m := slidemap.NewManager(slidemap.WithWindowSize(64 << 20))
//	defer m.Close()
//
//	c, err := m.Cursor("huge.pack")
//	if err != nil { ... }
//
//	buf, err := slidemap.New(c, 0, slidemap.UnboundedSize, 0)
//	if err != nil { ... }
//	defer buf.Close()
//
//	head, err := buf.Slice(0, 32)
//
// # Window Management
//
// The Manager maps fixed-size aligned chunks and shares them between all
// cursors on the same file. Client-free windows stay mapped for reuse and
// are evicted least-recently-used when the open-region cap or the mapped
// memory budget (see WithMaxOpenRegions, WithMaxMappedMemory) requires it.
// WithWindowSize(0) maps each file in full instead, which is the better
// trade on 64-bit hosts with few, moderately sized files.
//
// # Concurrency
//
// Buffers, cursors and managers are designed for one accessor at a time:
// relocating a window and reading from it are separate steps with no
// atomicity between them. Callers sharing them across goroutines must
// synchronize externally. Distinct managers are fully independent.
package slidemap
