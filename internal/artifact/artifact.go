// Package artifact stores deduplicated content extracted from repeating data.
package artifact

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/kopia/repbytes/internal/compression"
	"github.com/kopia/repbytes/logging"
)

const dirMode = 0o700

var log = logging.Module("repbytes/artifact")

// Store writes content-addressed artifacts into a directory.
type Store struct {
	dir        string
	compressor compression.Compressor
}

// Artifact describes stored content.
type Artifact struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Length int    `json:"length"`
}

// NewStore returns a store that writes to a given directory using the provided compression.
func NewStore(dir string, comp compression.Name) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact directory not provided")
	}

	c, err := compression.Get(comp)
	if err != nil {
		return nil, errors.Wrap(err, "invalid artifact compression")
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, errors.Wrap(err, "unable to create artifact directory")
	}

	return &Store{dir, c}, nil
}

// ID returns the identifier of the provided content.
func ID(data []byte) string {
	h := blake3.Sum256(data)

	return hex.EncodeToString(h[:])
}

// Put stores the provided data unless an artifact with the same content already exists.
func (s *Store) Put(ctx context.Context, data []byte) (Artifact, error) {
	id := ID(data)
	a := Artifact{
		ID:     id,
		Path:   filepath.Join(s.dir, id+s.compressor.Extension()),
		Length: len(data),
	}

	if _, err := os.Stat(a.Path); err == nil {
		log(ctx).Debugw("artifact already exists", "id", id)

		return a, nil
	}

	var buf bytes.Buffer

	if err := s.compressor.Compress(&buf, bytes.NewReader(data)); err != nil {
		return Artifact{}, errors.Wrap(err, "unable to compress artifact")
	}

	if err := atomic.WriteFile(a.Path, &buf); err != nil {
		return Artifact{}, errors.Wrapf(err, "unable to write artifact %v", a.Path)
	}

	log(ctx).Debugw("wrote artifact", "id", id, "length", len(data), "stored", buf.Len())

	return a, nil
}

// Read returns the decompressed contents of an artifact file, choosing the compression by file extension.
func Read(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "unable to open artifact")
	}
	defer f.Close() //nolint:errcheck

	c := compressorForPath(path)

	var buf bytes.Buffer
	if err := c.Decompress(&buf, f); err != nil {
		return nil, errors.Wrapf(err, "unable to read artifact %v", path)
	}

	return buf.Bytes(), nil
}

func compressorForPath(path string) compression.Compressor {
	ext := filepath.Ext(path)

	for _, name := range compression.SupportedNames() {
		c := compression.ByName[compression.Name(name)]
		if c.Extension() != "" && strings.EqualFold(c.Extension(), ext) {
			return c
		}
	}

	return compression.ByName[compression.None]
}
