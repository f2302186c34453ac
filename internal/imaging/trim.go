package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// TrimMargin is the number of pixels kept around the detected content.
const TrimMargin = 2

// Trim crops the blank border of the image file at path and overwrites it.
//
// Trim reports whether the file was rewritten. A blank image is left as is
// and reported as not trimmed. On error the file is also left untouched;
// the error is informational and callers may continue with the original
// frame.
func Trim(path string) (bool, error) {
	img, err := Load(path)
	if err != nil {
		return false, err
	}
	cropped, ok := TrimImage(img)
	if !ok {
		return false, nil
	}
	if err := Save(path, cropped); err != nil {
		return false, err
	}
	return true, nil
}

// TrimImage returns img cropped to its non-white content expanded by
// [TrimMargin] pixels on every side and clamped to the image bounds.
// It returns false when the image has no non-white pixel.
func TrimImage(img image.Image) (image.Image, bool) {
	box, ok := ContentBounds(img)
	if !ok {
		return img, false
	}
	box = image.Rect(
		box.Min.X-TrimMargin, box.Min.Y-TrimMargin,
		box.Max.X+TrimMargin, box.Max.Y+TrimMargin,
	).Intersect(img.Bounds())

	dst := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(dst, dst.Bounds(), img, box.Min, draw.Src)
	return dst, true
}

// ContentBounds returns the smallest rectangle containing every pixel
// whose luminance is below pure white. Alpha is ignored. It returns false
// for a uniformly white image.
func ContentBounds(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if luminance(img.At(x, y)) == 0xff {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// luminance is the ITU-R 601 luma of the straight (non-premultiplied)
// color, so alpha does not darken a pixel.
func luminance(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	y := (19595*uint32(n.R) + 38470*uint32(n.G) + 7471*uint32(n.B) + 1<<15) >> 16
	return uint8(y)
}
