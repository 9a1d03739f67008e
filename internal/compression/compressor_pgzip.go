package compression

import (
	"io"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

func init() {
	RegisterCompressor("pgzip", &pgzipCompressor{pgzip.DefaultCompression})
	RegisterCompressor("pgzip-best-speed", &pgzipCompressor{pgzip.BestSpeed})
	RegisterCompressor("pgzip-best-compression", &pgzipCompressor{pgzip.BestCompression})
}

type pgzipCompressor struct {
	level int
}

func (c *pgzipCompressor) Extension() string {
	return ".gz"
}

func (c *pgzipCompressor) Compress(output io.Writer, input io.Reader) error {
	w, err := pgzip.NewWriterLevel(output, c.level)
	if err != nil {
		return errors.Wrap(err, "unable to create compressor")
	}

	if _, err := io.Copy(w, input); err != nil {
		w.Close() //nolint:errcheck
		return errors.Wrap(err, "compression error")
	}

	return errors.Wrap(w.Close(), "compression close error")
}

func (c *pgzipCompressor) Decompress(output io.Writer, input io.Reader) error {
	r, err := pgzip.NewReader(input)
	if err != nil {
		return errors.Wrap(err, "unable to open gzip stream")
	}
	defer r.Close() //nolint:errcheck

	if _, err := io.Copy(output, r); err != nil {
		return errors.Wrap(err, "decompression error")
	}

	return nil
}
