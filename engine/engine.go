package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/cache"
	"github.com/use-agent/wikidex/models"
)

// Stability configures the DOM stability poll that follows the settle delay.
type Stability struct {
	// Interval between two DOM samples. Zero disables the poll.
	Interval time.Duration

	// Threshold is the maximum simhash distance between two samples that
	// still counts as unchanged.
	Threshold int

	// MaxWait bounds the poll. When it elapses the current DOM is used.
	MaxWait time.Duration
}

// Options configures an Engine.
type Options struct {
	// SettleDelay is waited after the surface reports the page loaded.
	SettleDelay time.Duration

	// NavigationTimeout bounds Navigate alone. Zero means no separate bound.
	NavigationTimeout time.Duration

	// RenderTimeout bounds a whole cache-miss fetch. Zero means unbounded.
	RenderTimeout time.Duration

	Stability Stability

	// CacheOptions are passed to the engine's cache.
	CacheOptions []cache.Option

	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SettleDelay:       3 * time.Second,
		NavigationTimeout: 30 * time.Second,
		RenderTimeout:     45 * time.Second,
		Stability: Stability{
			Interval:  500 * time.Millisecond,
			Threshold: 3,
			MaxWait:   10 * time.Second,
		},
	}
}

// Result is a value delivered by Fetch or Go.
type Result[T any] struct {
	Value     T
	FetchedAt time.Time
	Cached    bool

	// RenderTime is how long the render and extraction took. Zero on a hit.
	RenderTime time.Duration
}

// Engine fetches addresses through a SurfaceProvider, extracts a T from the
// rendered document and caches it per address.
//
// An Engine is safe for concurrent use. Every call to Fetch acquires its own
// surface, so concurrent fetches never share in-flight state.
type Engine[T any] struct {
	name     string
	provider SurfaceProvider
	strategy Strategy[T]
	cache    *cache.Cache[T]
	opts     Options
	log      *slog.Logger
}

// New creates an Engine. name identifies it in logs.
func New[T any](name string, provider SurfaceProvider, strategy Strategy[T], opts Options) *Engine[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[T]{
		name:     name,
		provider: provider,
		strategy: strategy,
		cache:    cache.New[T](opts.CacheOptions...),
		opts:     opts,
		log:      logger.With("engine", name),
	}
}

// Name returns the identifier given to New.
func (e *Engine[T]) Name() string { return e.name }

// Fetch returns the record for address. Unless bypassCache is set, a cached
// record is returned without touching a surface. On a miss or bypass the
// page is rendered, settled, serialized and extracted, and the result is
// cached before it is returned. Failures leave the cache untouched.
func (e *Engine[T]) Fetch(ctx context.Context, address string, bypassCache bool) (Result[T], error) {
	if err := ValidateAddress(address); err != nil {
		return Result[T]{}, err
	}

	if !bypassCache {
		if entry, ok := e.cache.Get(address); ok {
			e.log.Debug("cache hit", "url", address)
			return Result[T]{Value: entry.Value, FetchedAt: entry.FetchedAt, Cached: true}, nil
		}
	}

	if e.opts.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RenderTimeout)
		defer cancel()
	}

	start := time.Now()
	value, err := e.render(ctx, address)
	if err == nil {
		// A fetch canceled after extraction still must not be cached.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = categorize(ctxErr, models.ErrCodeCanceled, "fetch canceled")
		}
	}
	if err != nil {
		e.log.Warn("fetch failed",
			"url", address,
			"code", models.CodeOf(err),
			"error", err,
		)
		return Result[T]{}, err
	}

	entry := e.cache.Put(address, value)
	elapsed := time.Since(start)
	e.log.Info("fetch complete",
		"url", address,
		"bypass", bypassCache,
		"duration_ms", elapsed.Milliseconds(),
	)
	return Result[T]{Value: entry.Value, FetchedAt: entry.FetchedAt, RenderTime: elapsed}, nil
}

// Go runs Fetch in the background. onResult is called exactly once if the
// fetch succeeds, and never if it fails or is canceled; the failure is
// available from the returned Task.
func (e *Engine[T]) Go(ctx context.Context, address string, bypassCache bool, onResult func(Result[T])) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := newTask(cancel)

	go func() {
		defer cancel()
		res, err := e.Fetch(ctx, address, bypassCache)
		if err == nil && ctx.Err() != nil {
			err = categorize(ctx.Err(), models.ErrCodeCanceled, "fetch canceled")
		}
		if err == nil && onResult != nil {
			onResult(res)
		}
		t.finish(err)
	}()

	return t
}

// ClearCache removes every cached record.
func (e *Engine[T]) ClearCache() {
	e.cache.Clear()
	e.log.Info("cache cleared")
}

// ClearCacheFor removes the cached record for address, if any.
func (e *Engine[T]) ClearCacheFor(address string) {
	e.cache.Delete(address)
	e.log.Info("cache entry removed", "url", address)
}

// CacheSnapshot returns a copy of the cache metadata.
func (e *Engine[T]) CacheSnapshot() cache.Snapshot {
	return e.cache.Snapshot()
}

// render performs one cache-miss fetch on a freshly acquired surface.
//
// Lifecycle:
//
//  1. Acquire surface      – blocks on the provider's capacity, honours ctx
//  2. DEFER: release       – runs on every path, including panics in the strategy
//  3. Navigate             – bounded by NavigationTimeout
//  4. Settle               – fixed delay, then DOM stability poll
//  5. Serialize            – outer HTML of the document
//  6. Parse and extract    – goquery document handed to the strategy
func (e *Engine[T]) render(ctx context.Context, address string) (T, error) {
	var zero T

	// ── 1. Acquire ───────────────────────────────────────────────────
	surface, err := e.provider.Acquire(ctx)
	if err != nil {
		return zero, categorize(err, models.ErrCodeBrowserCrash, "failed to acquire rendering surface")
	}

	// ── 2. Release ───────────────────────────────────────────────────
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			e.log.Warn("surface close failed", "url", address, "error", cerr)
		}
	}()

	// ── 3. Navigate ──────────────────────────────────────────────────
	e.log.Debug("navigating", "url", address, "stage", "navigate")
	navCtx := ctx
	if e.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, e.opts.NavigationTimeout)
		defer cancel()
	}
	if err := surface.Navigate(navCtx, address); err != nil {
		return zero, categorize(err, models.ErrCodeNavigation, "navigation failed")
	}

	// ── 4. Settle ────────────────────────────────────────────────────
	e.log.Debug("settling", "url", address, "stage", "settle")
	if err := e.settle(ctx, surface, address); err != nil {
		return zero, err
	}

	// ── 5. Serialize ─────────────────────────────────────────────────
	e.log.Debug("serializing", "url", address, "stage", "serialize")
	markup, err := surface.HTML(ctx)
	if err != nil {
		return zero, categorize(err, models.ErrCodeSerialization, "failed to serialize document")
	}
	if strings.TrimSpace(markup) == "" {
		return zero, models.NewFetchError(models.ErrCodeSerialization, "surface returned an empty document", nil)
	}

	// ── 6. Parse and extract ─────────────────────────────────────────
	e.log.Debug("extracting", "url", address, "stage", "extract")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return zero, models.NewFetchError(models.ErrCodeExtraction, "failed to parse document", err)
	}
	doc.Url, _ = url.Parse(address)
	return e.extract(doc)
}

// extract runs the strategy, turning errors and panics into EXTRACTION_FAILED.
func (e *Engine[T]) extract(doc *goquery.Document) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = models.NewFetchError(models.ErrCodeExtraction, "extraction strategy panicked", fmt.Errorf("%v", r))
		}
	}()

	value, err = e.strategy(doc)
	if err != nil {
		var zero T
		return zero, models.NewFetchError(models.ErrCodeExtraction, "extraction failed", err)
	}
	return value, nil
}

// ValidateAddress checks that address is an absolute http(s) URL.
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return models.NewFetchError(models.ErrCodeInvalidInput, "address is empty", nil)
	}
	u, err := url.Parse(address)
	if err != nil {
		return models.NewFetchError(models.ErrCodeInvalidInput, "address is not a valid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewFetchError(models.ErrCodeInvalidInput, "address must use http or https", nil)
	}
	if u.Host == "" {
		return models.NewFetchError(models.ErrCodeInvalidInput, "address has no host", nil)
	}
	return nil
}

// categorize wraps raw errors into typed FetchErrors so the API layer can
// map them to HTTP status codes. Context errors win over the given code.
func categorize(err error, code, msg string) *models.FetchError {
	var fe *models.FetchError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, "render timed out", err)
	case errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeCanceled, "fetch canceled", err)
	case errors.As(err, &fe):
		return fe
	default:
		return models.NewFetchError(code, msg, err)
	}
}
