// Package compression manages compression algorithms used for deduplicated content.
package compression

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// Name is the name of the compressor to use.
type Name string

// None stores content uncompressed.
const None Name = "none"

// Compressor implements compression and decompression of a stream.
type Compressor interface {
	// Extension is appended to names of files written with this compressor.
	Extension() string
	Compress(output io.Writer, input io.Reader) error
	Decompress(output io.Writer, input io.Reader) error
}

// ByName is a map of registered compressors by name.
//
//nolint:gochecknoglobals
var ByName = map[Name]Compressor{}

// RegisterCompressor registers the provided compressor implementation.
func RegisterCompressor(name Name, c Compressor) {
	if ByName[name] != nil {
		panic(fmt.Sprintf("compressor with name %q already registered", name))
	}

	ByName[name] = c
}

// Get returns the compressor with a given name.
func Get(name Name) (Compressor, error) {
	if name == "" {
		name = None
	}

	c := ByName[name]
	if c == nil {
		return nil, errors.Errorf("unknown compression %q, supported: %v", name, SupportedNames())
	}

	return c, nil
}

// SupportedNames returns sorted names of all registered compressors.
func SupportedNames() []string {
	var result []string

	for k := range ByName {
		result = append(result, string(k))
	}

	sort.Strings(result)

	return result
}

func init() {
	RegisterCompressor(None, noneCompressor{})
}

type noneCompressor struct{}

func (noneCompressor) Extension() string { return "" }

func (noneCompressor) Compress(output io.Writer, input io.Reader) error {
	_, err := io.Copy(output, input)

	return errors.Wrap(err, "copy error")
}

func (noneCompressor) Decompress(output io.Writer, input io.Reader) error {
	_, err := io.Copy(output, input)

	return errors.Wrap(err, "copy error")
}
