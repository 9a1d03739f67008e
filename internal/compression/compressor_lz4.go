package compression

import (
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

func init() {
	RegisterCompressor("lz4", lz4Compressor{})
}

type lz4Compressor struct{}

func (lz4Compressor) Extension() string {
	return ".lz4"
}

func (lz4Compressor) Compress(output io.Writer, input io.Reader) error {
	w := lz4.NewWriter(output)

	if _, err := io.Copy(w, input); err != nil {
		w.Close() //nolint:errcheck
		return errors.Wrap(err, "compression error")
	}

	return errors.Wrap(w.Close(), "compression close error")
}

func (lz4Compressor) Decompress(output io.Writer, input io.Reader) error {
	if _, err := io.Copy(output, lz4.NewReader(input)); err != nil {
		return errors.Wrap(err, "decompression error")
	}

	return nil
}
