// Package mmap provides read-only memory mapping of file ranges.
//
// # Overview
//
// Unlike whole-file mapping helpers, MapRange maps an arbitrary byte range
// [offset, offset+length) of a file. Mapping offsets must be multiples of
// the platform's allocation granularity, so MapRange aligns the offset down
// internally and trims the exposed slice; Bytes() always returns exactly the
// requested range.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), granularity is the page size,
//     access hints via madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile, granularity is the 64 KiB
//     allocation granularity, access hints are a no-op
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent and protected
// by an atomic flag, but callers must ensure no goroutine touches Bytes()
// after Close returns.
package mmap
