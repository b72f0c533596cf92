package source_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvidlabs/giflet/internal/source"
	"github.com/stretchr/testify/require"
)

func TestFromReader(t *testing.T) {
	f, err := source.FromReader(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []byte("hello world"), f.Bytes())
	require.NoError(t, f.Close())
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")
	want := bytes.Repeat([]byte("giflet"), 1000)
	require.NoError(t, os.WriteFile(path, want, 0o644))

	f, err := source.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, want, f.Bytes())
	require.NoError(t, f.Close())
	require.NoError(t, f.Close()) // idempotent
}

func TestOpenFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := source.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Empty(t, f.Bytes())
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := source.OpenFile(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}
