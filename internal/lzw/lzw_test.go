package lzw_test

import (
	"bytes"
	"testing"

	"github.com/corvidlabs/giflet/internal/lzw"
	"github.com/corvidlabs/giflet/internal/subblock"
	"github.com/stretchr/testify/require"
)

// literalStream encodes, for minCodeSize=2 (clear=4, end=5): clear, 0, 1, 2,
// 3, end. The code width grows from 3 to 4 bits partway through, once the
// dictionary insert following code 2 pushes nextCode to 8.
func literalStream() []byte {
	return []byte{0x44, 0x34, 0x05}
}

func chain(data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(data)))
	buf.Write(data)
	buf.WriteByte(0)
	return buf.Bytes()
}

func TestDecode_Literal(t *testing.T) {
	src := subblock.New(bytes.NewReader(chain(literalStream())))
	dec, err := lzw.NewDecoder(src, 2)
	require.NoError(t, err)

	dst := make([]byte, 4)
	excess, err := dec.Decode(dst)
	require.NoError(t, err)
	require.False(t, excess)
	require.Equal(t, []byte{0, 1, 2, 3}, dst)
}

func TestDecode_ExcessData(t *testing.T) {
	src := subblock.New(bytes.NewReader(chain(literalStream())))
	dec, err := lzw.NewDecoder(src, 2)
	require.NoError(t, err)

	dst := make([]byte, 3)
	excess, err := dec.Decode(dst)
	require.NoError(t, err)
	require.True(t, excess)
	require.Equal(t, []byte{0, 1, 2}, dst)
}

func TestDecode_Truncated(t *testing.T) {
	// A single byte yields a clear code followed by one literal (0) from
	// its leftover bits, then the sub-block chain ends with no end code and
	// dst is still short.
	data := []byte{0x04}
	src := subblock.New(bytes.NewReader(chain(data)))
	dec, err := lzw.NewDecoder(src, 2)
	require.NoError(t, err)

	dst := make([]byte, 4)
	_, err = dec.Decode(dst)
	require.ErrorIs(t, err, lzw.ErrTruncated)
}

func TestDecode_UnexpectedEOF_TolerantWhenFilled(t *testing.T) {
	// Same bytes as the literal stream but missing the trailing end code
	// byte: decode should still succeed once dst is exactly filled.
	data := literalStream()[:2] // drop the final byte carrying the end code
	src := subblock.New(bytes.NewReader(chain(data)))
	dec, err := lzw.NewDecoder(src, 2)
	require.NoError(t, err)

	dst := make([]byte, 4)
	excess, err := dec.Decode(dst)
	require.NoError(t, err)
	require.False(t, excess)
	require.Equal(t, []byte{0, 1, 2, 3}, dst)
}

func TestNewDecoder_InvalidCodeSize(t *testing.T) {
	_, err := lzw.NewDecoder(bytes.NewReader(nil), 1)
	require.ErrorIs(t, err, lzw.ErrInvalidCodeSize)

	_, err = lzw.NewDecoder(bytes.NewReader(nil), 9)
	require.ErrorIs(t, err, lzw.ErrInvalidCodeSize)
}

func TestDecode_InvalidCode(t *testing.T) {
	// minCodeSize=2: clear=4, end=5, first valid non-base code is 6. Code 7
	// immediately after a clear is invalid since nothing has been inserted
	// yet.
	// codeWidth starts at 3 bits: clear(4)=100, then 7=111.
	var bitsBuf uint32
	var bitPos uint
	pushCode := func(v uint16, width uint) {
		bitsBuf |= uint32(v) << bitPos
		bitPos += width
	}
	pushCode(4, 3) // clear
	pushCode(7, 3) // invalid: >= nextCode (6)
	nBytes := (bitPos + 7) / 8
	raw := make([]byte, nBytes)
	for i := range raw {
		raw[i] = byte(bitsBuf >> (8 * uint(i)))
	}

	src := subblock.New(bytes.NewReader(chain(raw)))
	dec, err := lzw.NewDecoder(src, 2)
	require.NoError(t, err)

	dst := make([]byte, 4)
	_, err = dec.Decode(dst)
	require.ErrorIs(t, err, lzw.ErrInvalidCode)
}
