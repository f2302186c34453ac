package canvaspdf

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// chromedpSession implements [Session] on a chromedp tab context.
type chromedpSession struct {
	tab context.Context
}

// NewChromedpSession returns a [Session] driving the chromedp tab bound to
// tabCtx, as created by [chromedp.NewContext]. The tab must already have
// been started by a [chromedp.Run] on tabCtx and show the document.
func NewChromedpSession(tabCtx context.Context) Session {
	return &chromedpSession{tab: tabCtx}
}

// run executes actions on the tab while honoring cancellation of ctx.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	tab, cancel := context.WithCancel(s.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tab, actions...)
}

func (s *chromedpSession) Eval(ctx context.Context, fn string, out any) error {
	var raw []byte
	if err := s.run(ctx, chromedp.Evaluate("("+fn+")()", &raw)); err != nil {
		return fmt.Errorf("canvaspdf: evaluating script: %w", err)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("canvaspdf: decoding script result: %w", err)
	}
	return nil
}

// first returns the node ID of the first match without waiting for the
// element to appear.
func (s *chromedpSession) first(ctx context.Context, sel string, by chromedp.QueryOption) (cdp.NodeID, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("canvaspdf: querying %q: %w", sel, err)
	}
	if len(nodes) == 0 {
		return 0, ErrElementNotFound
	}
	return nodes[0].NodeID, nil
}

func (s *chromedpSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	id, err := s.first(ctx, selector, chromedp.ByQuery)
	if err != nil {
		return nil, err
	}
	var buf []byte
	if err := s.run(ctx, chromedp.Screenshot([]cdp.NodeID{id}, &buf, chromedp.ByNodeID)); err != nil {
		return nil, fmt.Errorf("canvaspdf: capturing %q: %w", selector, err)
	}
	return buf, nil
}

func (s *chromedpSession) Find(ctx context.Context, xpath string) (Element, error) {
	id, err := s.first(ctx, xpath, chromedp.BySearch)
	if err != nil {
		return nil, err
	}
	return &chromedpElement{session: s, id: id}, nil
}

// chromedpElement calls functions on a resolved DOM node.
type chromedpElement struct {
	session *chromedpSession
	id      cdp.NodeID
}

func (e *chromedpElement) call(ctx context.Context, fn string) error {
	return e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.id).Do(ctx)
		if err != nil {
			return err
		}
		defer runtime.ReleaseObject(obj.ObjectID).Do(ctx)

		_, exc, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		return nil
	}))
}

func (e *chromedpElement) ScrollIntoView(ctx context.Context) error {
	if err := e.call(ctx, scrollIntoViewFn); err != nil {
		return fmt.Errorf("canvaspdf: scrolling element into view: %w", err)
	}
	return nil
}

func (e *chromedpElement) Click(ctx context.Context) error {
	if err := e.call(ctx, clickFn); err != nil {
		return fmt.Errorf("canvaspdf: clicking element: %w", err)
	}
	return nil
}
