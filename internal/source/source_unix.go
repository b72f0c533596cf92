//go:build !windows
// +build !windows

package source

import (
	"fmt"
	"os"
	"syscall"
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

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		// Not every filesystem supports mmap (pipes, some network mounts);
		// fall back to a plain read rather than failing outright.
		defer f.Close()
		return readFileFallback(f, size)
	}

	return &File{
		data: data,
		closer: func() error {
			munmapErr := syscall.Munmap(data)
			closeErr := f.Close()
			if munmapErr != nil {
				return fmt.Errorf("source: munmap: %w", munmapErr)
			}
			if closeErr != nil {
				return fmt.Errorf("source: close: %w", closeErr)
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
