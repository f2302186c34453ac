package canvaspdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// workspace is the temporary directory holding the raw and cropped frames
// of one traversal. It is removed by Close.
type workspace struct {
	dir string
}

func newWorkspace(parent string) (*workspace, error) {
	dir, err := os.MkdirTemp(parent, "canvaspdf-*")
	if err != nil {
		return nil, fmt.Errorf("canvaspdf: creating workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

// RawPath is the untouched screenshot of page n.
func (w *workspace) RawPath(n int) string {
	return filepath.Join(w.dir, "raw_"+strconv.Itoa(n)+".png")
}

// CroppedPath is the border-trimmed copy of page n.
func (w *workspace) CroppedPath(n int) string {
	return filepath.Join(w.dir, strconv.Itoa(n)+".png")
}

// Close removes the workspace and everything in it.
func (w *workspace) Close() error {
	return os.RemoveAll(w.dir)
}
