package canvaspdf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Driver selects the browser automation library behind a [Browser].
type Driver string

const (
	// DriverChromedp drives Chrome through chromedp. It is the default.
	DriverChromedp Driver = "chromedp"
	// DriverRod drives Chrome through Rod.
	DriverRod Driver = "rod"
)

// launchConfig holds internal configuration for Launch.
type launchConfig struct {
	driver       Driver
	chromePath   string
	autoDownload bool
	noSandbox    bool
	headless     bool
	stealth      bool
	userDataDir  string
	loadTimeout  time.Duration
}

func defaultLaunchConfig() launchConfig {
	return launchConfig{
		driver:      DriverChromedp,
		headless:    true,
		loadTimeout: 60 * time.Second,
	}
}

// LaunchOption configures [Launch].
type LaunchOption func(*launchConfig)

// WithDriver selects the automation library. Defaults to [DriverChromedp].
func WithDriver(d Driver) LaunchOption {
	return func(c *launchConfig) {
		if d != "" {
			c.driver = d
		}
	}
}

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default standard locations are searched.
func WithChromePath(path string) LaunchOption {
	return func(c *launchConfig) {
		c.chromePath = path
	}
}

// WithAutoDownload fetches a compatible Chromium build when no executable
// path is configured.
func WithAutoDownload() LaunchOption {
	return func(c *launchConfig) {
		c.autoDownload = true
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() LaunchOption {
	return func(c *launchConfig) {
		c.noSandbox = true
	}
}

// WithHeadless controls whether the browser window is hidden. A visible
// window lets a user sign in before the export starts. Defaults to true.
func WithHeadless(headless bool) LaunchOption {
	return func(c *launchConfig) {
		c.headless = headless
	}
}

// WithStealth masks common automation fingerprints. Only the Rod driver
// supports it.
func WithStealth() LaunchOption {
	return func(c *launchConfig) {
		c.stealth = true
	}
}

// WithUserDataDir reuses a Chrome profile directory, keeping cookies from
// an earlier sign-in.
func WithUserDataDir(dir string) LaunchOption {
	return func(c *launchConfig) {
		c.userDataDir = dir
	}
}

// WithLoadTimeout bounds the wait for the viewer canvas in [Browser.Open].
// Defaults to 60 seconds; zero disables the bound.
func WithLoadTimeout(d time.Duration) LaunchOption {
	return func(c *launchConfig) {
		c.loadTimeout = d
	}
}

// Browser is a launched Chrome process that opens viewer tabs.
// Call [Browser.Close] to release it. Close is idempotent.
type Browser struct {
	cfg   launchConfig
	open  func(ctx context.Context, url, canvas string) (Session, error)
	close func()

	mu     sync.Mutex
	closed bool
}

// Launch starts a browser with the given options.
func Launch(ctx context.Context, opts ...LaunchOption) (*Browser, error) {
	cfg := defaultLaunchConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	b := &Browser{cfg: cfg}
	var err error
	switch cfg.driver {
	case DriverChromedp:
		err = b.launchChromedp(ctx)
	case DriverRod:
		err = b.launchRod(ctx)
	default:
		err = fmt.Errorf("canvaspdf: unknown driver %q", cfg.driver)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Open navigates a new tab to url, waits until an element matching
// canvasSelector is visible, and returns a [Session] on it.
func (b *Browser) Open(ctx context.Context, url, canvasSelector string) (Session, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if canvasSelector == "" {
		canvasSelector = "canvas"
	}
	if b.cfg.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.loadTimeout)
		defer cancel()
	}
	return b.open(ctx, url, canvasSelector)
}

// Close releases the browser process.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.close()
	return nil
}

func (b *Browser) launchChromedp(ctx context.Context) error {
	cfg := b.cfg
	if cfg.stealth {
		return fmt.Errorf("canvaspdf: stealth requires the %s driver", DriverRod)
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if cfg.userDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(cfg.userDataDir))
	}

	// The browser outlives ctx; only Close stops it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at launch time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("canvaspdf: starting browser: %w", err)
	}

	var tabs []context.CancelFunc
	b.open = func(ctx context.Context, url, canvas string) (Session, error) {
		tabCtx, tabCancel := chromedp.NewContext(browserCtx)
		// The first Run binds the tab to tabCtx; it must not be a
		// short-lived child context.
		if err := chromedp.Run(tabCtx); err != nil {
			tabCancel()
			return nil, fmt.Errorf("canvaspdf: creating tab: %w", err)
		}
		s := NewChromedpSession(tabCtx).(*chromedpSession)
		if err := s.run(ctx,
			chromedp.Navigate(url),
			chromedp.WaitVisible(canvas, chromedp.ByQuery),
		); err != nil {
			tabCancel()
			return nil, fmt.Errorf("canvaspdf: opening %s: %w", url, err)
		}
		b.mu.Lock()
		tabs = append(tabs, tabCancel)
		b.mu.Unlock()
		return s, nil
	}
	b.close = func() {
		for _, cancel := range tabs {
			cancel()
		}
		browserCancel()
		allocCancel()
	}
	return nil
}

func (b *Browser) launchRod(ctx context.Context) error {
	cfg := b.cfg

	l := launcher.New().Headless(cfg.headless).NoSandbox(cfg.noSandbox)
	if cfg.chromePath != "" {
		l = l.Bin(cfg.chromePath)
	}
	if cfg.userDataDir != "" {
		l = l.UserDataDir(cfg.userDataDir)
	}
	u, err := l.Context(context.WithoutCancel(ctx)).Launch()
	if err != nil {
		return fmt.Errorf("canvaspdf: starting browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("canvaspdf: connecting to browser: %w", err)
	}

	b.open = func(ctx context.Context, url, canvas string) (Session, error) {
		var (
			page *rod.Page
			err  error
		)
		if cfg.stealth {
			page, err = stealth.Page(browser)
		} else {
			page, err = browser.Page(proto.TargetCreateTarget{})
		}
		if err != nil {
			return nil, fmt.Errorf("canvaspdf: creating tab: %w", err)
		}
		p := page.Context(ctx)
		if err := p.Navigate(url); err != nil {
			page.Close()
			return nil, fmt.Errorf("canvaspdf: opening %s: %w", url, err)
		}
		el, err := p.Element(canvas)
		if err == nil {
			err = el.WaitVisible()
		}
		if err != nil {
			page.Close()
			return nil, fmt.Errorf("canvaspdf: opening %s: %w", url, err)
		}
		return NewRodSession(page), nil
	}
	b.close = func() {
		browser.Close()
		l.Kill()
	}
	return nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("canvaspdf: downloading browser: %w", err)
	}
	return path, nil
}
