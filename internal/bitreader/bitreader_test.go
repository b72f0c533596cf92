package bitreader_test

import (
	"bytes"
	"testing"

	"github.com/corvidlabs/giflet/internal/bitreader"
	"github.com/stretchr/testify/require"
)

func TestReadCode_FixedWidth(t *testing.T) {
	// Byte 0x91 (1001_0001) holds three LSB-first codes: a 3-bit 001, a
	// 3-bit 010, and a 2-bit 10, in that read order.
	r := bitreader.New(bytes.NewReader([]byte{0x91}))

	code, err := r.ReadCode(3)
	require.NoError(t, err)
	require.Equal(t, uint16(0b001), code)

	code, err = r.ReadCode(3)
	require.NoError(t, err)
	require.Equal(t, uint16(0b010), code)

	code, err = r.ReadCode(2)
	require.NoError(t, err)
	require.Equal(t, uint16(0b10), code)
}

func TestReadCode_SpansByteBoundary(t *testing.T) {
	// A 12-bit code straddling two bytes.
	r := bitreader.New(bytes.NewReader([]byte{0xFF, 0x0F}))

	code, err := r.ReadCode(12)
	require.NoError(t, err)
	require.Equal(t, uint16(0xFFF), code)
}

func TestReadCode_VaryingWidths(t *testing.T) {
	r := bitreader.New(bytes.NewReader([]byte{0b11001101, 0b00000011}))

	code, err := r.ReadCode(4)
	require.NoError(t, err)
	require.Equal(t, uint16(0b1101), code)

	code, err = r.ReadCode(5)
	require.NoError(t, err)
	require.Equal(t, uint16(0b11100), code)

	code, err = r.ReadCode(3)
	require.NoError(t, err)
	require.Equal(t, uint16(0b001), code)
}

func TestReadCode_UnexpectedEOF(t *testing.T) {
	r := bitreader.New(bytes.NewReader([]byte{0x01}))

	_, err := r.ReadCode(4)
	require.NoError(t, err)

	_, err = r.ReadCode(8)
	require.ErrorIs(t, err, bitreader.ErrUnexpectedEOF)
}
