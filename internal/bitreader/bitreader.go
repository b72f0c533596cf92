// Package bitreader reads LSB-first, variable-width codes from a byte
// iterator, as required by the GIF LZW wire format.
package bitreader

import (
	"errors"
	"io"
)

// ErrUnexpectedEOF is returned when the underlying byte source is exhausted
// before a requested code could be fully assembled.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// Reader accumulates bytes from an io.ByteReader and hands out codes of up to
// 12 bits, least-significant-bit first, matching the GIF LZW bitstream.
type Reader struct {
	src  io.ByteReader
	acc  uint32
	bits uint8
}

// New wraps src. src is read one byte at a time as wider codes demand more
// bits than are currently buffered.
func New(src io.ByteReader) *Reader {
	return &Reader{src: src}
}

// ReadCode reads the next code of the given bit width (1..12), least
// significant bit first. It returns ErrUnexpectedEOF if src runs out before
// width bits could be assembled.
func (r *Reader) ReadCode(width uint8) (uint16, error) {
	for r.bits < width {
		b, err := r.src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrUnexpectedEOF
			}
			return 0, err
		}
		r.acc |= uint32(b) << r.bits
		r.bits += 8
	}

	code := uint16(r.acc & ((1 << width) - 1))
	r.acc >>= width
	r.bits -= width
	return code, nil
}
