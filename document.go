package canvaspdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Document holds an assembled PDF and provides helpers for common output
// forms such as raw bytes, base64 encoding, and streaming readers.
//
// A Document is immutable; its methods may be called any number of times.
type Document struct {
	data  []byte
	pages int
}

// Bytes returns the raw PDF content.
func (d *Document) Bytes() []byte {
	return d.data
}

// Pages returns the number of pages in the document.
func (d *Document) Pages() int {
	return d.pages
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// WriteToFile writes the PDF to path. The content is written to a
// temporary file in the same directory, synced, and renamed into place,
// so path holds either the complete document or whatever it held before.
// Failures wrap [ErrWrite].
func (d *Document) WriteToFile(path string, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if _, err := d.WriteTo(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Len returns the size of the PDF in bytes.
func (d *Document) Len() int {
	return len(d.data)
}
