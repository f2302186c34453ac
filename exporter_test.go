package canvaspdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

func TestExport_PagedFivePagesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "doc.pdf")
	work := t.TempDir()
	v := newFakeViewer(t, 600, 800)

	res, err := newTestExporter(WithWorkDir(work)).Export(context.Background(), v, 5, dst)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Pages)
	assert.Equal(t, Complete, res.Status)
	assert.NoError(t, res.ArtifactErr)
	assert.Equal(t, 5, pageCount(t, dst))

	assert.NoDirExists(t, RawImagesDir(dst))
	assert.NoDirExists(t, ImagesDir(dst))
	assert.NoFileExists(t, CollagePath(dst))

	// The workspace is gone.
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_IncompleteStillWritesDocument(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "doc.pdf")
	v := newFakeViewer(t, 600, 800)
	v.nextMissingAfter = 3

	res, err := newTestExporter().Export(context.Background(), v, 5, dst)
	require.NoError(t, err)
	assert.Equal(t, Incomplete, res.Status)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 3, pageCount(t, dst))
}

func TestExport_SurfaceLostWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "doc.pdf")
	work := t.TempDir()
	v := newFakeViewer(t, 1600, 900)
	v.loseCanvasAt = 2

	_, err := newTestExporter(
		WithWorkDir(work),
		WithArtifacts(ArtifactConfig{KeepRawImages: true, KeepCroppedImages: true, CreateCollage: true}),
	).Export(context.Background(), v, 3, dst)
	require.ErrorIs(t, err, ErrSurfaceLost)

	assert.NoFileExists(t, dst)
	assert.NoDirExists(t, RawImagesDir(dst))
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_WithAllArtifacts(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "slides.pdf")
	v := newFakeViewer(t, 1600, 900)

	res, err := newTestExporter(WithArtifacts(ArtifactConfig{
		KeepRawImages:     true,
		KeepCroppedImages: true,
		CreateCollage:     true,
	})).Export(context.Background(), v, 3, dst)
	require.NoError(t, err)
	require.NoError(t, res.ArtifactErr)

	assert.Equal(t, Continuous{StepPixels: 900}, res.Strategy)
	for _, name := range []string{"raw_1.png", "raw_2.png", "raw_3.png"} {
		assert.FileExists(t, filepath.Join(RawImagesDir(dst), name))
	}
	for _, name := range []string{"1.png", "2.png", "3.png"} {
		assert.FileExists(t, filepath.Join(ImagesDir(dst), name))
	}
	assert.FileExists(t, CollagePath(dst))
	assert.Equal(t, RawImagesDir(dst), res.Artifacts.RawDir)
	assert.Equal(t, ImagesDir(dst), res.Artifacts.ImagesDir)
	assert.Equal(t, CollagePath(dst), res.Artifacts.CollageImg)
}

func TestExport_UnwritableDestination(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "doc.pdf")
	v := newFakeViewer(t, 600, 800)

	_, err := newTestExporter().Export(context.Background(), v, 2, dst)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestExport_PackageLevelRejectsZeroPages(t *testing.T) {
	v := newFakeViewer(t, 600, 800)
	_, err := Export(context.Background(), v, 0, filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, ErrInvalidPageCount)
}
