package canvaspdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Assemble encodes frames, in order, as the pages of one PDF. Each page
// takes the dimensions of its image. The page count of the result is
// checked against the number of frames.
//
// Assemble returns [ErrNoPages] when frames is empty.
func Assemble(frames []string) (*Document, error) {
	if len(frames) == 0 {
		return nil, ErrNoPages
	}

	imgs := make([]io.Reader, 0, len(frames))
	for _, path := range frames {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("canvaspdf: opening frame: %w", err)
		}
		imgs = append(imgs, &frameReader{path: path})
	}
	defer closeAll(imgs)

	// One page per image, sized to the image.
	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, imgs, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("canvaspdf: encoding pages: %w", err)
	}

	n, err := api.PageCount(bytes.NewReader(buf.Bytes()), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("canvaspdf: reading assembled document: %w", err)
	}
	if n != len(frames) {
		return nil, fmt.Errorf("canvaspdf: assembled %d pages from %d frames", n, len(frames))
	}
	return &Document{data: buf.Bytes(), pages: n}, nil
}

func closeAll(rs []io.Reader) {
	for _, r := range rs {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
	}
}

// frameReader opens its file on the first Read and closes it at EOF, so
// only the frame being encoded holds a descriptor.
type frameReader struct {
	path string
	f    *os.File
	done bool
}

func (r *frameReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if r.f == nil {
		f, err := os.Open(r.path)
		if err != nil {
			r.done = true
			return 0, fmt.Errorf("canvaspdf: opening frame: %w", err)
		}
		r.f = f
	}
	n, err := r.f.Read(p)
	if err == io.EOF {
		r.Close()
	}
	return n, err
}

func (r *frameReader) Close() error {
	r.done = true
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
