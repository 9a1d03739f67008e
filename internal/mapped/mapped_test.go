package mapped_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kopia/repbytes/internal/mapped"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte{1, 2, 3}, 100000)

	fname := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(fname, data, 0o600))

	f, err := mapped.Open(fname)
	require.NoError(t, err)
	require.Equal(t, data, f.Bytes())
	require.NoError(t, f.Close())
}

func TestOpen_Empty(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(fname, nil, 0o600))

	f, err := mapped.Open(fname)
	require.NoError(t, err)
	require.Empty(t, f.Bytes())
	require.NoError(t, f.Close())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := mapped.Open(filepath.Join(dir, "no-such-file"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = mapped.Open(dir)
	require.ErrorContains(t, err, "not a regular file")
}
