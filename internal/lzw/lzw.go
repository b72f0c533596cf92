// Package lzw implements the variable-width LZW decompressor used for GIF
// image data: clear/end-of-information codes, the KwKwK special case, and
// code-width growth up to 12 bits.
//
// Dictionary entries are stored as a prefix code plus a suffix byte (see
// decoder.rs's LzwDictionary for the string-table ancestor of this design),
// rather than as materialized byte strings, so insertion is O(1) and total
// dictionary memory is O(number of entries) instead of O(sum of string
// lengths).
package lzw

import (
	"errors"
	"fmt"

	"github.com/corvidlabs/giflet/internal/bitreader"
)

const (
	maxCodeWidth = 12
	maxTableSize = 1 << maxCodeWidth
	noPrefix     = 0xFFFF
)

// ErrInvalidCodeSize is returned by NewDecoder when minCodeSize is outside
// [2,8].
var ErrInvalidCodeSize = errors.New("lzw: minimum code size must be in [2,8]")

// ErrInvalidCode is returned when a code exceeds the next unallocated
// dictionary slot.
var ErrInvalidCode = errors.New("lzw: code exceeds dictionary size")

// ErrNoPrevious is returned when the KwKwK code (equal to the next
// unallocated slot) is seen before any ordinary code following a clear.
var ErrNoPrevious = errors.New("lzw: repeat code seen with no previous code")

// ErrTruncated is returned when the sub-block chain (or bit stream) is
// exhausted before dst has been fully populated.
var ErrTruncated = errors.New("lzw: compressed stream ended before expected pixel count was reached")

// byteReader is the minimal interface the bit reader needs from the
// sub-block chain.
type byteReader interface {
	ReadByte() (byte, error)
}

// Decoder holds the LZW dictionary and bit-level reading state for a single
// image's compressed data. A fresh Decoder is created per image.
type Decoder struct {
	br *bitreader.Reader

	minCodeSize uint8
	clearCode   uint16
	endCode     uint16
	nextCode    uint16
	codeWidth   uint8

	prefix []uint16
	suffix []byte
	first  []byte

	prevCode     uint16
	havePrevious bool

	scratch []byte
}

// NewDecoder creates a Decoder reading codes from src with the given minimum
// LZW code size, as declared by the GIF image block.
func NewDecoder(src byteReader, minCodeSize uint8) (*Decoder, error) {
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, ErrInvalidCodeSize
	}

	d := &Decoder{
		br:          bitreader.New(src),
		minCodeSize: minCodeSize,
		clearCode:   1 << minCodeSize,
		prefix:      make([]uint16, maxTableSize),
		suffix:      make([]byte, maxTableSize),
		first:       make([]byte, maxTableSize),
		scratch:     make([]byte, 0, 64),
	}
	d.endCode = d.clearCode + 1
	d.resetDictionary()
	return d, nil
}

// resetDictionary restores the dictionary to its state immediately after a
// clear code: base entries 0..clearCode-1 map to themselves, nextCode is
// endCode+1, codeWidth is minCodeSize+1, and there is no previous code.
func (d *Decoder) resetDictionary() {
	base := int(d.clearCode)
	for c := 0; c < base; c++ {
		d.prefix[c] = noPrefix
		d.suffix[c] = byte(c)
		d.first[c] = byte(c)
	}
	d.nextCode = d.endCode + 1
	d.codeWidth = d.minCodeSize + 1
	d.havePrevious = false
}

// stringOf expands code's dictionary entry into d.scratch (reused across
// calls) by walking the prefix chain and reversing it, and returns it.
func (d *Decoder) stringOf(code uint16) []byte {
	d.scratch = d.scratch[:0]
	for {
		d.scratch = append(d.scratch, d.suffix[code])
		p := d.prefix[code]
		if p == noPrefix {
			break
		}
		code = p
	}
	for i, j := 0, len(d.scratch)-1; i < j; i, j = i+1, j-1 {
		d.scratch[i], d.scratch[j] = d.scratch[j], d.scratch[i]
	}
	return d.scratch
}

// insert adds a new dictionary entry built from prefixCode's string plus
// suffixByte, growing the code width once the dictionary would otherwise
// overflow it. Once the table is full (codeWidth == 12 and 4096 entries are
// in use) no further entries are inserted; the decoder keeps emitting using
// the saturated table until a clear code arrives.
func (d *Decoder) insert(prefixCode uint16, suffixByte byte) {
	if int(d.nextCode) >= maxTableSize {
		return
	}
	d.prefix[d.nextCode] = prefixCode
	d.suffix[d.nextCode] = suffixByte
	d.first[d.nextCode] = d.first[prefixCode]
	d.nextCode++

	if int(d.nextCode) == 1<<d.codeWidth && d.codeWidth < maxCodeWidth {
		d.codeWidth++
	}
}

// write copies s into dst starting at pos, clipped to dst's bounds, and
// reports whether any of s had to be dropped because dst was already full.
func write(dst []byte, pos int, s []byte) (newPos int, overflow bool) {
	room := len(dst) - pos
	if room <= 0 {
		return pos, len(s) > 0
	}
	n := len(s)
	if n > room {
		n = room
	}
	copy(dst[pos:pos+n], s[:n])
	return pos + n, n < len(s)
}

// Decode fills dst with exactly len(dst) decoded palette indices, reading
// compressed codes until an end-of-information code is seen or the
// sub-block chain runs out.
//
// excess is true if the stream produced more indices than len(dst) before
// an end code or stream end was reached. err is ErrTruncated if the stream
// ran out before dst was filled, ErrInvalidCode/ErrNoPrevious for a
// malformed code sequence, or nil on success (including the case where the
// stream ends right at the terminator with no explicit end code, which is
// tolerated).
func (d *Decoder) Decode(dst []byte) (excess bool, err error) {
	pos := 0

	for {
		code, err := d.br.ReadCode(d.codeWidth)
		if err != nil {
			if pos >= len(dst) {
				return false, nil
			}
			return false, ErrTruncated
		}

		switch {
		case code == d.clearCode:
			d.resetDictionary()
			continue

		case code == d.endCode:
			if pos < len(dst) {
				return false, ErrTruncated
			}
			return false, nil

		case code < d.nextCode:
			s := d.stringOf(code)
			var overflow bool
			pos, overflow = write(dst, pos, s)
			if overflow {
				return true, nil
			}

			if d.havePrevious {
				d.insert(d.prevCode, d.first[code])
			}
			d.prevCode = code
			d.havePrevious = true

		case code == d.nextCode:
			if !d.havePrevious {
				return false, ErrNoPrevious
			}
			suffixByte := d.first[d.prevCode]
			s := append(append([]byte{}, d.stringOf(d.prevCode)...), suffixByte)

			var overflow bool
			pos, overflow = write(dst, pos, s)
			if overflow {
				return true, nil
			}

			d.insert(d.prevCode, suffixByte)
			d.prevCode = code
			d.havePrevious = true

		default:
			return false, fmt.Errorf("%w: code %d >= next code %d", ErrInvalidCode, code, d.nextCode)
		}
	}
}
