package canvaspdf

import (
	"time"

	"github.com/rs/zerolog"
)

// exportConfig holds internal configuration for an Exporter.
type exportConfig struct {
	logger zerolog.Logger

	canvasSelector   string
	toolbarSelectors []string
	nextPageLabels   []string

	// Fixed settle delays. Each one stands in for a render-complete poll.
	resetSettle  time.Duration
	scrollSettle time.Duration
	pageSettle   time.Duration
	clickSettle  time.Duration

	artifacts ArtifactConfig
	workDir   string
	progress  func(page, total int)
}

func defaultConfig() exportConfig {
	return exportConfig{
		logger:           zerolog.Nop(),
		canvasSelector:   "canvas",
		toolbarSelectors: []string{`[role="toolbar"]`, `[role="banner"]`},
		nextPageLabels: []string{
			"Go to next page",
			"Next page",
			"Next",
			"Page suivante",
			"Nächste Seite",
			"Página siguiente",
		},
		resetSettle:  500 * time.Millisecond,
		scrollSettle: 300 * time.Millisecond,
		pageSettle:   time.Second,
		clickSettle:  time.Second,
	}
}

// Option configures an [Exporter].
type Option func(*exportConfig)

// WithLogger sets the logger used for progress and best-effort failures.
// By default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(c *exportConfig) {
		c.logger = l
	}
}

// WithCanvasSelector sets the CSS selector of the render surface.
// Defaults to "canvas".
func WithCanvasSelector(sel string) Option {
	return func(c *exportConfig) {
		if sel != "" {
			c.canvasSelector = sel
		}
	}
}

// WithToolbarSelectors replaces the CSS selectors of viewer chrome hidden
// before capture.
func WithToolbarSelectors(sel ...string) Option {
	return func(c *exportConfig) {
		c.toolbarSelectors = sel
	}
}

// WithNextPageLabels replaces the accessible labels used to locate the
// viewer's "next page" control. Labels are tried in order.
func WithNextPageLabels(labels ...string) Option {
	return func(c *exportConfig) {
		if len(labels) > 0 {
			c.nextPageLabels = labels
		}
	}
}

// WithResetSettle sets the wait after scrolling back to the top of a
// continuous document. Defaults to 500ms.
func WithResetSettle(d time.Duration) Option {
	return func(c *exportConfig) {
		c.resetSettle = d
	}
}

// WithScrollSettle sets the wait after each scroll step in continuous
// mode. Defaults to 300ms.
func WithScrollSettle(d time.Duration) Option {
	return func(c *exportConfig) {
		c.scrollSettle = d
	}
}

// WithPageSettle sets the wait before each capture in paged mode.
// Defaults to 1s.
func WithPageSettle(d time.Duration) Option {
	return func(c *exportConfig) {
		c.pageSettle = d
	}
}

// WithClickSettle sets the wait between scrolling the next-page control
// into view and clicking it. Defaults to 1s.
func WithClickSettle(d time.Duration) Option {
	return func(c *exportConfig) {
		c.clickSettle = d
	}
}

// WithoutSettle disables every settle delay. Intended for tests and for
// viewers that render synchronously.
func WithoutSettle() Option {
	return func(c *exportConfig) {
		c.resetSettle = 0
		c.scrollSettle = 0
		c.pageSettle = 0
		c.clickSettle = 0
	}
}

// WithArtifacts selects the side-artifacts written next to the document.
func WithArtifacts(a ArtifactConfig) Option {
	return func(c *exportConfig) {
		c.artifacts = a
	}
}

// WithWorkDir sets the parent directory of the temporary workspace.
// Defaults to [os.TempDir].
func WithWorkDir(dir string) Option {
	return func(c *exportConfig) {
		c.workDir = dir
	}
}

// WithProgress registers a callback invoked after each captured page.
func WithProgress(fn func(page, total int)) Option {
	return func(c *exportConfig) {
		c.progress = fn
	}
}
