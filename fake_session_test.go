package canvaspdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/draw"
)

// fakeViewer is a scripted [Session] that records every interaction.
type fakeViewer struct {
	t *testing.T

	width, height float64 // rendered canvas size
	canvasHeight  int     // intrinsic canvas height
	noContainer   bool

	// loseCanvasAt makes the screenshot of that page fail (0 = never).
	loseCanvasAt int
	// nextMissingAfter removes the next-page control once that page is
	// shown (0 = always present).
	nextMissingAfter int
	clickErr         error
	toolbars         int
	// hideErr fails the toolbar script; scrollFails makes every scroll
	// report that no container was found.
	hideErr     error
	scrollFails bool

	page   int // currently shown page, 1-based
	events []string
}

func newFakeViewer(t *testing.T, width, height float64) *fakeViewer {
	return &fakeViewer{t: t, width: width, height: height, canvasHeight: int(height), toolbars: 1, page: 1}
}

func (f *fakeViewer) decode(v, out any) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeViewer) Eval(_ context.Context, fn string, out any) error {
	switch {
	case strings.Contains(fn, "getBoundingClientRect"):
		if f.width == 0 && f.height == 0 {
			return f.decode(nil, out)
		}
		return f.decode(surfaceSize{Width: f.width, Height: f.height}, out)
	case strings.Contains(fn, "canvasHeight"):
		if f.noContainer {
			return f.decode(nil, out)
		}
		return f.decode(Geometry{ScrollHeight: 10000, ClientHeight: 900, CanvasWidth: int(f.width), CanvasHeight: f.canvasHeight}, out)
	case strings.Contains(fn, "scrollTop = 0"):
		f.events = append(f.events, "reset")
		return f.decode(!f.noContainer, out)
	case strings.Contains(fn, "scrollTop +="):
		i := strings.Index(fn, "scrollTop +=")
		rest := strings.TrimSpace(fn[i+len("scrollTop +="):])
		if f.scrollFails {
			f.events = append(f.events, "scroll:failed")
			return f.decode(false, out)
		}
		f.events = append(f.events, "scroll:"+rest[:strings.IndexByte(rest, ';')])
		f.page++
		return f.decode(true, out)
	case strings.Contains(fn, "querySelectorAll"):
		if f.hideErr != nil {
			return f.hideErr
		}
		f.events = append(f.events, "hide")
		return f.decode(f.toolbars, out)
	}
	f.t.Fatalf("unexpected script: %s", fn)
	return nil
}

func (f *fakeViewer) Screenshot(_ context.Context, selector string) ([]byte, error) {
	if f.loseCanvasAt > 0 && f.page >= f.loseCanvasAt {
		return nil, ErrElementNotFound
	}
	f.events = append(f.events, "capture")
	return framePNG(f.t, 40, 30, f.page), nil
}

func (f *fakeViewer) Find(_ context.Context, xpath string) (Element, error) {
	if !strings.Contains(xpath, "aria-label") {
		f.t.Fatalf("unexpected xpath: %s", xpath)
	}
	if f.nextMissingAfter > 0 && f.page >= f.nextMissingAfter {
		return nil, ErrElementNotFound
	}
	return &fakeControl{viewer: f}, nil
}

type fakeControl struct {
	viewer *fakeViewer
}

func (c *fakeControl) ScrollIntoView(context.Context) error {
	c.viewer.events = append(c.viewer.events, "reveal")
	return nil
}

func (c *fakeControl) Click(context.Context) error {
	if c.viewer.clickErr != nil {
		return c.viewer.clickErr
	}
	c.viewer.events = append(c.viewer.events, "click")
	c.viewer.page++
	return nil
}

func (f *fakeViewer) count(event string) int {
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

var errClick = errors.New("click intercepted")

// framePNG renders a white frame with a dark block whose width encodes
// the page number, so frames differ from page to page.
func framePNG(t *testing.T, w, h, page int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	block := image.Rect(5, 5, min(w-5, 5+page), h-5)
	draw.Draw(img, block, image.NewUniform(color.Black), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
