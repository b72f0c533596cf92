package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalGIF is a one-frame, 1x1 GIF encoded the same way as the gif
// package's own decode tests: minCodeSize=2, a single literal index, no
// Graphic Control Extension.
func minimalGIF() []byte {
	var b []byte
	b = append(b, []byte("GIF89a")...)
	b = append(b, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00) // LSD: 1x1, global table
	b = append(b, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF)       // 2-entry table: black, white
	b = append(b, 0x2C,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x01, 0x00,
		0x00,
		0x02,
		0x02, 0x4C, 0x01,
		0x00,
	)
	b = append(b, 0x3B)
	return b
}

func TestRunDecode_PrintsSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.gif")
	require.NoError(t, os.WriteFile(path, minimalGIF(), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--quiet", path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "1x1, 1 frame(s)")
}

func TestRunDecode_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--quiet", filepath.Join(t.TempDir(), "nope.gif")})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestFormatLoopCount(t *testing.T) {
	require.Equal(t, "none", formatLoopCount(-1))
	require.Equal(t, "infinite", formatLoopCount(0))
	require.Equal(t, "3", formatLoopCount(3))
}
