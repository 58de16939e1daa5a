package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/wikidex/models"
	"github.com/ysmood/gson"
	"golang.org/x/sync/semaphore"
)

// BrowserOptions configures BrowserSurfaces.
type BrowserOptions struct {
	Headless  bool
	NoSandbox bool
	Bin       string
	Proxy     string

	// MaxPages caps concurrently open tabs.
	MaxPages int

	// Stealth injects go-rod/stealth before every navigation.
	Stealth bool

	// BlockedResourceTypes lists resource types the hijack router fails,
	// e.g. "Font", "Media".
	BlockedResourceTypes []string

	// Headers are sent with every request a tab makes.
	Headers map[string]string
}

// BrowserSurfaces hands out one fresh Chromium tab per Acquire.
// It is safe for concurrent use.
type BrowserSurfaces struct {
	opts BrowserOptions
	sem  *semaphore.Weighted

	mu      sync.RWMutex
	browser *rod.Browser
	health  health // reset in place on relaunch, never replaced

	active   atomic.Int32
	acquired atomic.Int64
}

// NewBrowserSurfaces launches a headless browser.
func NewBrowserSurfaces(opts BrowserOptions) (*BrowserSurfaces, error) {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}

	browser, err := launchBrowser(opts)
	if err != nil {
		return nil, err
	}

	return &BrowserSurfaces{
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.MaxPages)),
		browser: browser,
	}, nil
}

func launchBrowser(opts BrowserOptions) (*rod.Browser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	return browser, nil
}

// Acquire opens a new tab. It blocks while MaxPages tabs are open.
//
// Stealth and the hijack router are installed here, before the first
// navigation, because both only take effect for navigations that follow.
func (b *BrowserSurfaces) Acquire(ctx context.Context) (Surface, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	page, err := b.newPage()
	if err != nil {
		b.sem.Release(1)
		return nil, err
	}

	if b.opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	applyHeaders(b.opts.Headers, func(req proto.NetworkSetExtraHTTPHeaders) error {
		return req.Call(page)
	})
	router := setupHijack(page, b.opts.BlockedResourceTypes)

	b.active.Add(1)
	b.acquired.Add(1)
	return &browserSurface{owner: b, page: page, router: router}, nil
}

// newPage creates a tab, relaunching the browser once the health score says
// the current process is gone.
func (b *BrowserSurfaces) newPage() (*rod.Page, error) {
	b.mu.RLock()
	browser := b.browser
	b.mu.RUnlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err == nil {
		b.health.RecordSuccess()
		return page, nil
	}

	b.health.RecordFailure()
	if !b.health.ShouldRestart() {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to open tab", err)
	}

	slog.Warn("browser unhealthy, relaunching", "error", err)
	if rerr := b.relaunch(browser); rerr != nil {
		return nil, rerr
	}

	b.mu.RLock()
	browser = b.browser
	b.mu.RUnlock()
	page, err = browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.health.RecordFailure()
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, "failed to open tab after relaunch", err)
	}
	b.health.RecordSuccess()
	return page, nil
}

// relaunch replaces old with a new browser process unless another caller
// already did.
func (b *BrowserSurfaces) relaunch(old *rod.Browser) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != old {
		return nil
	}

	_ = old.Close()
	browser, err := launchBrowser(b.opts)
	if err != nil {
		return err
	}
	b.browser = browser
	b.health.reset()
	return nil
}

// Stats returns a snapshot of the provider's current state.
func (b *BrowserSurfaces) Stats() models.SurfaceStats {
	return models.SurfaceStats{
		Kind:           "browser",
		MaxSurfaces:    b.opts.MaxPages,
		ActiveSurfaces: int(b.active.Load()),
		TotalAcquired:  b.acquired.Load(),
	}
}

// Close kills the browser process. Call this on graceful shutdown to
// prevent zombie Chrome processes.
func (b *BrowserSurfaces) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	slog.Info("closing browser")
	return b.browser.Close()
}

// browserSurface is one tab.
type browserSurface struct {
	owner  *BrowserSurfaces
	page   *rod.Page
	router *rod.HijackRouter
	once   sync.Once
}

// Navigate loads address and waits for the load event.
func (s *browserSurface) Navigate(ctx context.Context, address string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(address); err != nil {
		return err
	}
	return p.WaitLoad()
}

// HTML returns the outer HTML of the document element.
func (s *browserSurface) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Close stops the hijack router, closes the tab and frees its slot.
// It uses the page without the fetch context so cleanup still runs after
// the fetch deadline has passed.
func (s *browserSurface) Close() error {
	var err error
	s.once.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		err = s.page.Close()
		s.owner.active.Add(-1)
		s.owner.sem.Release(1)
	})
	return err
}

// applyHeaders sends headers through call. A failure is logged and the tab
// is used without them.
func applyHeaders(headers map[string]string, call func(proto.NetworkSetExtraHTTPHeaders) error) {
	if len(headers) == 0 {
		return
	}
	if err := call(proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}); err != nil {
		slog.Warn("setting extra headers failed, proceeding without them", "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
