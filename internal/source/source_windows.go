//go:build windows
// +build windows

package source

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func openFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: opening %q: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: stat %q: %w", path, err)
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return &File{data: nil}, nil
	}

	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		defer f.Close()
		return readFileFallback(f, size)
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		defer f.Close()
		return readFileFallback(f, size)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))

	return &File{
		data: data,
		closer: func() error {
			unmapErr := windows.UnmapViewOfFile(addr)
			handleErr := windows.CloseHandle(mapping)
			closeErr := f.Close()
			if unmapErr != nil {
				return fmt.Errorf("source: unmapping view: %w", unmapErr)
			}
			if handleErr != nil {
				return fmt.Errorf("source: closing mapping handle: %w", handleErr)
			}
			if closeErr != nil {
				return fmt.Errorf("source: closing file: %w", closeErr)
			}
			return nil
		},
	}, nil
}

func readFileFallback(f *os.File, size int64) (*File, error) {
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("source: reading file: %w", err)
	}
	return &File{data: buf}, nil
}
