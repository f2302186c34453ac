package canvaspdf

import "context"

// Session is a handle into a live browser tab that already shows the
// viewer's first page. It is the only way the library reads or mutates the
// render surface, and it is passed explicitly to every operation.
//
// Implementations report missing elements with [ErrElementNotFound] and
// must not block waiting for elements to appear.
type Session interface {
	// Eval runs a JavaScript function declaration, e.g. "() => 1", in the
	// page and decodes its JSON result into out. A nil out discards the
	// result.
	Eval(ctx context.Context, fn string, out any) error

	// Screenshot captures the first element matching the CSS selector
	// and returns it PNG encoded.
	Screenshot(ctx context.Context, selector string) ([]byte, error)

	// Find returns the first element matching the XPath expression.
	Find(ctx context.Context, xpath string) (Element, error)
}

// Element is a DOM element located through a [Session].
type Element interface {
	// ScrollIntoView aligns the element with the top of its scroll
	// container.
	ScrollIntoView(ctx context.Context) error

	// Click dispatches a script-level click on the element, which is not
	// intercepted by overlays the way a synthesized mouse event can be.
	Click(ctx context.Context) error
}

// Scripts shared by the session backends.
const (
	scrollIntoViewFn = `function() { this.scrollIntoView(true); }`
	clickFn          = `function() { this.click(); }`
)
