package artifact_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kopia/repbytes/internal/artifact"
	"github.com/kopia/repbytes/internal/compression"
	"github.com/kopia/repbytes/internal/testlogging"
)

func TestStore(t *testing.T) {
	ctx := testlogging.Context(t)
	data := bytes.Repeat([]byte("deduplicated "), 100)

	for _, name := range compression.SupportedNames() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			s, err := artifact.NewStore(dir, compression.Name(name))
			require.NoError(t, err)

			a, err := s.Put(ctx, data)
			require.NoError(t, err)
			require.Equal(t, artifact.ID(data), a.ID)
			require.Equal(t, len(data), a.Length)
			require.True(t, strings.HasPrefix(filepath.Base(a.Path), a.ID))

			got, err := artifact.Read(a.Path)
			require.NoError(t, err)
			require.Equal(t, data, got)

			// same content is stored once
			a2, err := s.Put(ctx, data)
			require.NoError(t, err)
			require.Equal(t, a, a2)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}

func TestNewStore_Invalid(t *testing.T) {
	_, err := artifact.NewStore("", compression.None)
	require.Error(t, err)

	_, err = artifact.NewStore(t.TempDir(), "bogus")
	require.ErrorContains(t, err, "unknown compression")
}

func TestID(t *testing.T) {
	require.Len(t, artifact.ID(nil), 64)
	require.NotEqual(t, artifact.ID([]byte("a")), artifact.ID([]byte("b")))
}
