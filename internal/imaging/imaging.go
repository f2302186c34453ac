// Package imaging trims blank borders from captured frames and stacks
// frames into a vertical preview collage.
//
// Frames are decoded with any registered format (PNG, JPEG, BMP and WebP
// are registered by this package) and always written back as PNG.
package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEmptyInput is returned by [Collage] when given no images.
var ErrEmptyInput = errors.New("imaging: no input images")

// Load decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imaging: decoding %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img as PNG at path. The file is written next to path first
// and renamed into place, so a failed write leaves any previous file intact.
func Save(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".imaging-*.png")
	if err != nil {
		return fmt.Errorf("imaging: %w", err)
	}
	name := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("imaging: encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("imaging: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("imaging: %w", err)
	}
	return nil
}
