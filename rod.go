package canvaspdf

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// rodSession implements [Session] on a Rod page.
type rodSession struct {
	page *rod.Page
}

// NewRodSession returns a [Session] driving page. The page must already
// show the document.
func NewRodSession(page *rod.Page) Session {
	return &rodSession{page: page}
}

func (s *rodSession) Eval(ctx context.Context, fn string, out any) error {
	res, err := s.page.Context(ctx).Eval(fn)
	if err != nil {
		return fmt.Errorf("canvaspdf: evaluating script: %w", err)
	}
	if out == nil || res.Value.Nil() {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), out); err != nil {
		return fmt.Errorf("canvaspdf: decoding script result: %w", err)
	}
	return nil
}

func (s *rodSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("canvaspdf: querying %q: %w", selector, err)
	}
	if els.Empty() {
		return nil, ErrElementNotFound
	}
	buf, err := els.First().Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("canvaspdf: capturing %q: %w", selector, err)
	}
	return buf, nil
}

func (s *rodSession) Find(ctx context.Context, xpath string) (Element, error) {
	els, err := s.page.Context(ctx).ElementsX(xpath)
	if err != nil {
		return nil, fmt.Errorf("canvaspdf: querying %q: %w", xpath, err)
	}
	if els.Empty() {
		return nil, ErrElementNotFound
	}
	return &rodElement{el: els.First()}, nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) ScrollIntoView(ctx context.Context) error {
	if _, err := e.el.Context(ctx).Eval(scrollIntoViewFn); err != nil {
		return fmt.Errorf("canvaspdf: scrolling element into view: %w", err)
	}
	return nil
}

func (e *rodElement) Click(ctx context.Context) error {
	if _, err := e.el.Context(ctx).Eval(clickFn); err != nil {
		return fmt.Errorf("canvaspdf: clicking element: %w", err)
	}
	return nil
}
