package canvaspdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/porticus-lab/go-canvas-pdf/internal/imaging"
)

// ArtifactConfig selects the optional outputs written next to the PDF.
type ArtifactConfig struct {
	// KeepRawImages copies the untouched screenshots to <dst>_raw_images/.
	KeepRawImages bool `yaml:"keep_raw_images"`
	// KeepCroppedImages copies the trimmed frames to <dst>_images/.
	KeepCroppedImages bool `yaml:"keep_cropped_images"`
	// CreateCollage stacks the trimmed frames into <dst>_collage.png.
	CreateCollage bool `yaml:"create_collage"`
}

// Artifacts lists the side-artifacts that were written.
type Artifacts struct {
	RawDir     string
	ImagesDir  string
	CollageImg string
}

// RawImagesDir returns the directory receiving raw screenshots for dst.
func RawImagesDir(dst string) string { return dst + "_raw_images" }

// ImagesDir returns the directory receiving trimmed frames for dst.
func ImagesDir(dst string) string { return dst + "_images" }

// CollagePath returns the path of the preview collage for dst.
func CollagePath(dst string) string { return dst + "_collage.png" }

// PreserveSideArtifacts writes the side-artifacts selected by cfg for the
// document at dst. Call it only once the document itself is written.
// Each artifact is attempted independently; failures are joined.
func PreserveSideArtifacts(cfg ArtifactConfig, dst string, pages []Page) (Artifacts, error) {
	var (
		out  Artifacts
		errs []error
	)

	raw := make([]string, len(pages))
	cropped := make([]string, len(pages))
	for i, p := range pages {
		raw[i] = p.RawPath
		cropped[i] = p.CroppedPath
	}

	if cfg.KeepRawImages {
		dir := RawImagesDir(dst)
		if err := copyInto(dir, raw); err != nil {
			errs = append(errs, fmt.Errorf("canvaspdf: keeping raw images: %w", err))
		} else {
			out.RawDir = dir
		}
	}
	if cfg.KeepCroppedImages {
		dir := ImagesDir(dst)
		if err := copyInto(dir, cropped); err != nil {
			errs = append(errs, fmt.Errorf("canvaspdf: keeping images: %w", err))
		} else {
			out.ImagesDir = dir
		}
	}
	if cfg.CreateCollage {
		path := CollagePath(dst)
		if err := imaging.SaveCollage(cropped, path); err != nil {
			errs = append(errs, fmt.Errorf("canvaspdf: creating collage: %w", err))
		} else {
			out.CollageImg = path
		}
	}
	return out, errors.Join(errs...)
}

// copyInto copies files into dir, keeping their base names.
func copyInto(dir string, files []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, src := range files {
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
