package canvaspdf

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// SlideAspectRatio is the width/height ratio above which a canvas is
// treated as a slide deck and traversed by scrolling.
const SlideAspectRatio = 1.2

// Strategy is the way a traversal advances from one page to the next.
// It is either [Continuous] or [Paged].
type Strategy interface {
	strategy()
	String() string
}

// Continuous advances by scrolling the canvas container a fixed number of
// pixels per page.
type Continuous struct {
	StepPixels int
}

// Paged advances by activating the viewer's "next page" control.
type Paged struct{}

func (Continuous) strategy() {}
func (Paged) strategy()      {}

func (c Continuous) String() string { return "continuous(" + strconv.Itoa(c.StepPixels) + "px)" }
func (Paged) String() string        { return "paged" }

// Geometry describes the render canvas and its scrollable ancestor.
type Geometry struct {
	ScrollTop    float64 `json:"scrollTop"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
	CanvasWidth  int     `json:"canvasWidth"`
	CanvasHeight int     `json:"canvasHeight"`
}

// surfaceSize is the rendered size of the canvas in CSS pixels.
type surfaceSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// The canvas parent is not necessarily the element that scrolls, so every
// script walks up to the first ancestor whose content overflows.
const findContainerJS = `
	var container = canvas.parentElement;
	while (container && container.scrollHeight === container.clientHeight) {
		container = container.parentElement;
	}`

func surfaceSizeJS(sel string) string {
	return `() => {
	var canvas = document.querySelector(` + strconv.Quote(sel) + `);
	if (!canvas) return null;
	var r = canvas.getBoundingClientRect();
	return {width: r.width, height: r.height};
}`
}

func geometryJS(sel string) string {
	return `() => {
	var canvas = document.querySelector(` + strconv.Quote(sel) + `);
	if (!canvas) return null;` + findContainerJS + `
	if (!container) return null;
	return {
		scrollTop: container.scrollTop,
		scrollHeight: container.scrollHeight,
		clientHeight: container.clientHeight,
		canvasWidth: canvas.width,
		canvasHeight: canvas.height
	};
}`
}

// scrollJS returns a script that applies assign (e.g. "= 0", "+= 800") to
// the container's scrollTop and reports whether a container was found.
func scrollJS(sel, assign string) string {
	return `() => {
	var canvas = document.querySelector(` + strconv.Quote(sel) + `);
	if (!canvas) return false;` + findContainerJS + `
	if (!container) return false;
	container.scrollTop ` + assign + `;
	return true;
}`
}

func hideJS(selectors []string) string {
	list := "["
	for i, s := range selectors {
		if i > 0 {
			list += ","
		}
		list += strconv.Quote(s)
	}
	list += "]"
	return `() => {
	var n = 0;
	` + list + `.forEach(function(sel) {
		document.querySelectorAll(sel).forEach(function(el) {
			el.style.setProperty("display", "none", "important");
			n++;
		});
	});
	return n;
}`
}

// Classify inspects the canvas aspect ratio and picks a traversal
// strategy. Wide canvases are slides and return [Continuous] with a zero
// step, to be filled in by [MeasureScrollGeometry]. Anything else,
// including a missing canvas or a failed probe, returns [Paged].
func Classify(ctx context.Context, s Session, canvasSelector string) Strategy {
	var size *surfaceSize
	if err := s.Eval(ctx, surfaceSizeJS(canvasSelector), &size); err != nil || size == nil {
		return Paged{}
	}
	return classifySize(size.Width, size.Height)
}

func classifySize(width, height float64) Strategy {
	if height <= 0 || width/height <= SlideAspectRatio {
		return Paged{}
	}
	return Continuous{}
}

// MeasureScrollGeometry locates the canvas and its scrollable ancestor.
// It returns [ErrGeometryUnavailable] when either is missing.
func MeasureScrollGeometry(ctx context.Context, s Session, canvasSelector string) (Geometry, error) {
	var g *Geometry
	if err := s.Eval(ctx, geometryJS(canvasSelector), &g); err != nil {
		return Geometry{}, fmt.Errorf("%w: %w", ErrGeometryUnavailable, err)
	}
	if g == nil || g.CanvasHeight <= 0 {
		return Geometry{}, ErrGeometryUnavailable
	}
	return *g, nil
}

// ResetToTop scrolls the canvas container to offset 0 and waits settle.
// Failures are returned for logging; traversal does not depend on them.
func ResetToTop(ctx context.Context, s Session, canvasSelector string, settle time.Duration) error {
	return scroll(ctx, s, canvasSelector, "= 0", settle)
}

// ScrollBy advances the canvas container by px pixels and waits settle.
// Like [ResetToTop] it is best-effort.
func ScrollBy(ctx context.Context, s Session, canvasSelector string, px int, settle time.Duration) error {
	return scroll(ctx, s, canvasSelector, "+= "+strconv.Itoa(px), settle)
}

func scroll(ctx context.Context, s Session, sel, assign string, settle time.Duration) error {
	var ok bool
	err := s.Eval(ctx, scrollJS(sel, assign), &ok)
	if err == nil && !ok {
		err = fmt.Errorf("canvaspdf: no scrollable container for %q", sel)
	}
	if werr := sleep(ctx, settle); werr != nil {
		return werr
	}
	return err
}

// hideToolbar hides viewer chrome so it does not show up in captures and
// returns the number of hidden elements.
func hideToolbar(ctx context.Context, s Session, selectors []string) (int, error) {
	if len(selectors) == 0 {
		return 0, nil
	}
	var n int
	if err := s.Eval(ctx, hideJS(selectors), &n); err != nil {
		return 0, err
	}
	return n, nil
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
