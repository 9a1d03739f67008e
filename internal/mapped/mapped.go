// Package mapped provides read-only access to file contents mapped into memory.
package mapped

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// File is a file whose contents are mapped into memory.
type File struct {
	f *os.File
	m mmap.MMap
}

// Open maps the contents of a regular file.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "unable to open file")
	}

	st, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, errors.Wrap(err, "unable to stat file")
	}

	if !st.Mode().IsRegular() {
		f.Close() //nolint:errcheck
		return nil, errors.Errorf("%v is not a regular file", path)
	}

	// zero-length files cannot be mapped.
	if st.Size() == 0 {
		return &File{f: f}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, errors.Wrap(err, "unable to map file")
	}

	return &File{f, m}, nil
}

// Bytes returns the contents of the file, valid until Close.
func (f *File) Bytes() []byte {
	return f.m
}

// Close unmaps the contents and closes the file.
func (f *File) Close() error {
	var err error

	if f.m != nil {
		err = f.m.Unmap()
	}

	if cerr := f.f.Close(); err == nil {
		err = cerr
	}

	return errors.Wrap(err, "unable to close mapped file")
}
