// Package archive reads packaged plugin archives (.pfds), which are plain zip
// containers holding a manifest.json and the plugin payload.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrOpen is returned when the archive cannot be opened or is not a zip container.
	ErrOpen = errors.New("cannot open archive")

	// ErrEntryNotFound is returned by ReadEntry when no entry has the requested name.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// Reader gives by-name access to the entries of an opened archive.
type Reader struct {
	zr *zip.ReadCloser
}

// Open opens the archive at path. The caller must Close it.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	return &Reader{zr: zr}, nil
}

// Has reports whether an entry with exactly this name exists.
func (r *Reader) Has(name string) bool {
	return r.find(name) != nil
}

// ReadEntry returns the full content of the entry with exactly this name.
func (r *Reader) ReadEntry(name string) (data []byte, err error) {
	f := r.find(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w", name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", name, err)
	}
	return data, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.zr.Close()
}

func (r *Reader) find(name string) *zip.File {
	for _, f := range r.zr.File {
		if f.Name == name && !f.FileInfo().IsDir() {
			return f
		}
	}
	return nil
}
