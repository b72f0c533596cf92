// Package source supplies the decoder with an in-memory byte slice of the
// GIF stream, either by reading a io.Reader fully or by memory-mapping a
// regular file, avoiding a copy for the common CLI case of decoding a file
// already resident on disk.
package source

import (
	"bytes"
	"fmt"
	"io"
)

// File is an opened byte source. Close releases any underlying mapping or
// file handle; callers must not retain Bytes() after Close.
type File struct {
	data   []byte
	closer func() error
}

// Bytes returns the source's full content.
func (f *File) Bytes() []byte { return f.data }

// Close releases the source. It is safe to call multiple times.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	closer := f.closer
	f.closer = nil
	return closer()
}

// FromReader reads r to completion and wraps the result as a File with no
// underlying resource to release. Intended for stdin or any stream that
// isn't a seekable regular file.
func FromReader(r io.Reader) (*File, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("source: reading stream: %w", err)
	}
	return &File{data: buf.Bytes()}, nil
}

// OpenFile opens path and maps its contents into memory when possible,
// falling back to a full read for empty files and any platform where the
// mapping call itself fails.
func OpenFile(path string) (*File, error) {
	return openFile(path)
}
