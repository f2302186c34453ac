package canvaspdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Status reports whether a traversal reached the last requested page.
type Status int

const (
	// Complete means every requested page was captured.
	Complete Status = iota
	// Incomplete means navigation stopped early. The pages captured so
	// far are still assembled.
	Incomplete
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Page is the set of files captured for one document page.
type Page struct {
	// Index is the 1-based page number in capture order.
	Index int
	// RawPath is the untouched screenshot.
	RawPath string
	// CroppedPath is the screenshot with its blank border trimmed.
	CroppedPath string
}

// Traversal is the outcome of walking a document page by page.
type Traversal struct {
	Strategy  Strategy
	Pages     []Page
	Total     int // pages requested
	Attempted int // pages reached before stopping
	Status    Status
}

// CroppedPaths returns the trimmed frames in page order.
func (t *Traversal) CroppedPaths() []string {
	paths := make([]string, len(t.Pages))
	for i, p := range t.Pages {
		paths[i] = p.CroppedPath
	}
	return paths
}

// RawPaths returns the raw frames in page order.
func (t *Traversal) RawPaths() []string {
	paths := make([]string, len(t.Pages))
	for i, p := range t.Pages {
		paths[i] = p.RawPath
	}
	return paths
}

// Traverse captures up to totalPages pages of the document shown by s,
// writing frames into dir, which the caller owns.
//
// The returned Traversal holds every page captured so far, also when an
// error is returned. Errors are fatal: [ErrSurfaceLost] when the canvas
// disappears, [ErrGeometryUnavailable] when a continuous document cannot
// be measured, or the context error. A missing or unresponsive next-page
// control is not an error; the traversal ends with status [Incomplete].
func (e *Exporter) Traverse(ctx context.Context, s Session, totalPages int, dir string) (*Traversal, error) {
	if totalPages <= 0 {
		return nil, ErrInvalidPageCount
	}
	log := e.cfg.logger
	ws := &workspace{dir: dir}

	strategy := Classify(ctx, s, e.cfg.canvasSelector)
	tr := &Traversal{Strategy: strategy, Total: totalPages}

	if n, err := hideToolbar(ctx, s, e.cfg.toolbarSelectors); err != nil {
		log.Warn().Err(err).Msg("could not hide toolbar")
	} else if n == 0 {
		log.Warn().Msg("no toolbar found to hide")
	} else {
		log.Info().Int("elements", n).Msg("toolbar hidden for clean screenshots")
	}

	if _, ok := strategy.(Continuous); ok {
		if err := ResetToTop(ctx, s, e.cfg.canvasSelector, e.cfg.resetSettle); err != nil {
			if ctx.Err() != nil {
				return tr, ctx.Err()
			}
			log.Warn().Err(err).Msg("could not scroll to top")
		}
		g, err := MeasureScrollGeometry(ctx, s, e.cfg.canvasSelector)
		if err != nil {
			return tr, err
		}
		strategy = Continuous{StepPixels: g.CanvasHeight}
		tr.Strategy = strategy
		log.Info().Int("step_px", g.CanvasHeight).Msg("slide format detected, scrolling by canvas height")
	} else {
		log.Info().Msg("using page navigation")
	}

	for n := 1; n <= totalPages; n++ {
		if _, ok := strategy.(Paged); ok {
			if err := sleep(ctx, e.cfg.pageSettle); err != nil {
				return tr, err
			}
		}

		page, err := e.capture(ctx, s, ws, n)
		if err != nil {
			log.Error().Err(err).Int("page", n).Msg("capture failed")
			return tr, err
		}
		tr.Pages = append(tr.Pages, page)
		tr.Attempted = n
		log.Info().Int("page", n).Int("total", totalPages).Msg("page exported")
		if e.cfg.progress != nil {
			e.cfg.progress(n, totalPages)
		}

		if n == totalPages {
			break
		}

		switch st := strategy.(type) {
		case Continuous:
			if err := ScrollBy(ctx, s, e.cfg.canvasSelector, st.StepPixels, e.cfg.scrollSettle); err != nil {
				if ctx.Err() != nil {
					return tr, ctx.Err()
				}
				log.Warn().Err(err).Int("page", n).Msg("scroll failed")
			}
		case Paged:
			if !e.advance(ctx, s) {
				if ctx.Err() != nil {
					return tr, ctx.Err()
				}
				log.Error().Int("pages", n).Msg("cannot find next page button, saving pages obtained so far")
				tr.Status = Incomplete
				return tr, nil
			}
		}
	}

	tr.Status = Complete
	return tr, nil
}

// capture screenshots the canvas as page n and trims a working copy.
func (e *Exporter) capture(ctx context.Context, s Session, ws *workspace, n int) (Page, error) {
	buf, err := s.Screenshot(ctx, e.cfg.canvasSelector)
	if errors.Is(err, ErrElementNotFound) {
		return Page{}, fmt.Errorf("%w: page %d", ErrSurfaceLost, n)
	}
	if err != nil {
		return Page{}, fmt.Errorf("canvaspdf: page %d: %w", n, err)
	}

	page := Page{Index: n, RawPath: ws.RawPath(n), CroppedPath: ws.CroppedPath(n)}
	if err := os.WriteFile(page.RawPath, buf, 0o644); err != nil {
		return Page{}, fmt.Errorf("canvaspdf: saving page %d: %w", n, err)
	}
	if err := os.WriteFile(page.CroppedPath, buf, 0o644); err != nil {
		return Page{}, fmt.Errorf("canvaspdf: saving page %d: %w", n, err)
	}
	if _, err := e.trim(page.CroppedPath); err != nil {
		e.cfg.logger.Warn().Err(err).Int("page", n).Msg("keeping untrimmed frame")
	}
	return page, nil
}

// advance activates the next-page control. It returns false when the
// control is missing or does not respond.
func (e *Exporter) advance(ctx context.Context, s Session) bool {
	log := e.cfg.logger

	next, found := locateNext(ctx, s, e.cfg.nextPageLabels)
	if !found {
		return false
	}
	if err := next.ScrollIntoView(ctx); err != nil {
		log.Debug().Err(err).Msg("next page control")
		return false
	}
	if err := sleep(ctx, e.cfg.clickSettle); err != nil {
		return false
	}
	if err := next.Click(ctx); err != nil {
		log.Debug().Err(err).Msg("next page control")
		return false
	}
	return true
}

// locateNext finds the first element whose accessible label is one of
// labels.
func locateNext(ctx context.Context, s Session, labels []string) (Element, bool) {
	for _, label := range labels {
		el, err := s.Find(ctx, "//*[@aria-label="+xpathLiteral(label)+"]")
		if err == nil {
			return el, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, false
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, '"', `)
		}
		b.WriteString(`"` + p + `"`)
	}
	b.WriteString(")")
	return b.String()
}
