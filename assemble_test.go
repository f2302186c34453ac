package canvaspdf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isPDF checks whether data starts with the PDF magic number.
func isPDF(data []byte) bool {
	return len(data) > 4 && string(data[:5]) == "%PDF-"
}

func writeFrames(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, strconv.Itoa(i+1)+".png")
		require.NoError(t, os.WriteFile(paths[i], framePNG(t, 40+i*10, 30, i+1), 0o644))
	}
	return paths
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble(nil)
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestAssemble_PageOrderAndCount(t *testing.T) {
	doc, err := Assemble(writeFrames(t, 3))
	require.NoError(t, err)

	assert.True(t, isPDF(doc.Bytes()))
	assert.Equal(t, 3, doc.Pages())

	dims, err := api.PageDims(doc.Reader(), nil)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	// Pages follow frame order; frames grow wider page by page.
	assert.Less(t, dims[0].Width, dims[1].Width)
	assert.Less(t, dims[1].Width, dims[2].Width)
}

func TestAssemble_MissingFrame(t *testing.T) {
	_, err := Assemble([]string{filepath.Join(t.TempDir(), "gone.png")})
	assert.Error(t, err)
}

func TestFrameReader_OpensLazilyAndClosesAtEOF(t *testing.T) {
	path := writeFrames(t, 1)[0]
	want, err := os.ReadFile(path)
	require.NoError(t, err)

	r := &frameReader{path: path}
	assert.Nil(t, r.f, "nothing opened before the first read")

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, r.f, "file closed at EOF")

	n, err := r.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestDocument_WriteToFile(t *testing.T) {
	d := &Document{data: []byte("%PDF-1.4 fake content for testing"), pages: 1}
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, d.WriteToFile(path, 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.Bytes(), data)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestDocument_WriteToFileFailure(t *testing.T) {
	d := &Document{data: []byte("%PDF-1.4")}
	err := d.WriteToFile(filepath.Join(t.TempDir(), "no", "such", "dir.pdf"), 0o644)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestDocument_Accessors(t *testing.T) {
	sample := []byte("%PDF-1.4 fake content for testing")
	d := &Document{data: sample, pages: 2}

	assert.Equal(t, len(sample), d.Len())
	assert.Equal(t, 2, d.Pages())
	assert.Equal(t, "JVBER", d.Base64()[:5])

	var buf bytes.Buffer
	n, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sample)), n)
	assert.Equal(t, sample, buf.Bytes())
	assert.Equal(t, len(sample), d.Reader().Len())
}
