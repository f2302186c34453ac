package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, Save(path, img))
	return path
}

func TestTrim_BlankImageUnchanged(t *testing.T) {
	path := writePNG(t, solid(120, 80, color.White))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	trimmed, err := Trim(path)
	require.NoError(t, err)
	assert.False(t, trimmed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestTrim_CenteredRectangle(t *testing.T) {
	img := solid(200, 100, color.White)
	draw.Draw(img, image.Rect(50, 30, 150, 70), image.NewUniform(color.Black), image.Point{}, draw.Src)
	path := writePNG(t, img)

	trimmed, err := Trim(path)
	require.NoError(t, err)
	require.True(t, trimmed)

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100+2*TrimMargin, out.Bounds().Dx())
	assert.Equal(t, 40+2*TrimMargin, out.Bounds().Dy())

	box, ok := ContentBounds(out)
	require.True(t, ok)
	assert.Equal(t, image.Rect(TrimMargin, TrimMargin, 100+TrimMargin, 40+TrimMargin), box)
}

func TestTrimImage_ClampsAtEdges(t *testing.T) {
	img := solid(60, 40, color.White)
	draw.Draw(img, image.Rect(0, 0, 10, 10), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(55, 38, 60, 40), image.NewUniform(color.Black), image.Point{}, draw.Src)

	out, ok := TrimImage(img)
	require.True(t, ok)
	assert.Equal(t, img.Bounds().Size(), out.Bounds().Size())
}

func TestTrimImage_PreservesColor(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	img := solid(30, 30, color.White)
	draw.Draw(img, image.Rect(10, 10, 20, 20), image.NewUniform(red), image.Point{}, draw.Src)

	out, ok := TrimImage(img)
	require.True(t, ok)
	r, g, b, _ := out.At(TrimMargin+1, TrimMargin+1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestContentBounds_IgnoresAlpha(t *testing.T) {
	// Transparent white margins, as decoded from a PNG or WebP frame.
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		}
	}
	draw.Draw(img, image.Rect(20, 20, 30, 30), image.NewUniform(color.Black), image.Point{}, draw.Src)

	box, ok := ContentBounds(img)
	require.True(t, ok)
	assert.Equal(t, image.Rect(20, 20, 30, 30), box)
}

func TestLuminance(t *testing.T) {
	assert.Equal(t, uint8(255), luminance(color.White))
	assert.Equal(t, uint8(0), luminance(color.Black))
	assert.Equal(t, uint8(255), luminance(color.NRGBA{R: 255, G: 255, B: 255, A: 0}))
	assert.Equal(t, uint8(76), luminance(color.RGBA{R: 255, A: 255}))
}

func TestTrim_MissingFile(t *testing.T) {
	trimmed, err := Trim(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.False(t, trimmed)
}

func TestTrim_UndecodableFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	trimmed, err := Trim(path)
	assert.Error(t, err)
	assert.False(t, trimmed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not an image", string(data))
}

func TestStack_Geometry(t *testing.T) {
	colors := []color.Color{
		color.RGBA{R: 0xff, A: 0xff},
		color.RGBA{G: 0xff, A: 0xff},
		color.RGBA{B: 0xff, A: 0xff},
	}
	imgs := []image.Image{
		solid(80, 100, colors[0]),
		solid(120, 200, colors[1]),
		solid(50, 150, colors[2]),
	}

	out, err := Stack(imgs)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 450), out.Bounds())

	for i, y := range []int{0, 100, 300} {
		want := color.RGBAModel.Convert(colors[i])
		assert.Equal(t, want, color.RGBAModel.Convert(out.At(0, y)), "offset %d", y)
	}
	// Right of the narrow first frame is background.
	assert.Equal(t, color.RGBAModel.Convert(color.Black), color.RGBAModel.Convert(out.At(100, 10)))
}

func TestCollage_Empty(t *testing.T) {
	_, err := Collage(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	err = SaveCollage(nil, filepath.Join(t.TempDir(), "c.png"))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSaveCollage(t *testing.T) {
	a := writePNG(t, solid(10, 20, color.White))
	b := writePNG(t, solid(30, 5, color.Black))
	dst := filepath.Join(t.TempDir(), "collage.png")

	require.NoError(t, SaveCollage([]string{a, b}, dst))

	out, err := Load(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 25), out.Bounds())
}
