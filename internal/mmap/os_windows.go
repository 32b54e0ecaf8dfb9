//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, offset int64, length int) ([]byte, func([]byte) error, error) {
	// PAGE_READONLY for read-only access; max size 0 covers the whole file.
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view holds a reference, so the mapping handle can go right away.
	defer windows.CloseHandle(h)

	lo := uint32(offset & 0xffffffff)
	hi := uint32(offset >> 32)
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, hi, lo, uintptr(length))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)

	return data, func(b []byte) error {
		// Capturing 'addr' is safer than reconstructing it from the slice.
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func granularity() int {
	// Windows allocation granularity. Fixed at 64 KiB on all supported
	// architectures; GetSystemInfo would report the same value.
	return 64 << 10
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// No madvise equivalent. PrefetchVirtualMemory could serve AccessWillNeed
	// on Windows 8+, but the OS page cache already handles sequential access
	// well, so this stays a no-op.
	_ = data
	_ = pattern
	return nil
}
