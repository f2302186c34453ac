package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Collage loads the images at paths and stacks them vertically in order.
// The result is as wide as the widest input and as tall as all inputs
// combined. Narrower images are left aligned over a black background.
func Collage(paths []string) (image.Image, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyInput
	}
	imgs := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := Load(p)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return Stack(imgs)
}

// Stack composes imgs into one vertical strip. See [Collage].
func Stack(imgs []image.Image) (image.Image, error) {
	if len(imgs) == 0 {
		return nil, ErrEmptyInput
	}

	width, height := 0, 0
	for _, img := range imgs {
		b := img.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		r := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(dst, r, img, b.Min, draw.Src)
		y += b.Dy()
	}
	return dst, nil
}

// SaveCollage writes the [Collage] of paths to dst as PNG.
func SaveCollage(paths []string, dst string) error {
	img, err := Collage(paths)
	if err != nil {
		return err
	}
	return Save(dst, img)
}
