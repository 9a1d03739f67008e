package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

func init() {
	RegisterCompressor("zstd", &zstdCompressor{zstd.SpeedDefault})
	RegisterCompressor("zstd-fastest", &zstdCompressor{zstd.SpeedFastest})
	RegisterCompressor("zstd-best-compression", &zstdCompressor{zstd.SpeedBestCompression})
}

type zstdCompressor struct {
	level zstd.EncoderLevel
}

func (c *zstdCompressor) Extension() string {
	return ".zst"
}

func (c *zstdCompressor) Compress(output io.Writer, input io.Reader) error {
	w, err := zstd.NewWriter(output, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return errors.Wrap(err, "unable to create compressor")
	}

	if _, err := io.Copy(w, input); err != nil {
		w.Close() //nolint:errcheck
		return errors.Wrap(err, "compression error")
	}

	return errors.Wrap(w.Close(), "compression close error")
}

func (c *zstdCompressor) Decompress(output io.Writer, input io.Reader) error {
	r, err := zstd.NewReader(input)
	if err != nil {
		return errors.Wrap(err, "unable to open zstd stream")
	}
	defer r.Close()

	if _, err := io.Copy(output, r); err != nil {
		return errors.Wrap(err, "decompression error")
	}

	return nil
}
