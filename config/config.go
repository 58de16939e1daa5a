package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/wikidex/cache"
	"github.com/use-agent/wikidex/engine"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Surface   SurfaceConfig
	Browser   BrowserConfig
	Render    RenderConfig
	Cache     CacheConfig
	Favorites FavoritesConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Log       LogConfig
	Wiki      WikiConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// Surface kinds.
const (
	SurfaceBrowser = "browser"
	SurfaceHTTP    = "http"
)

// SurfaceConfig selects how pages are rendered.
type SurfaceConfig struct {
	// Kind is "browser" (headless Chromium) or "http" (no scripts).
	Kind string // default: "browser"

	// MaxConcurrent caps concurrent surfaces for the http kind.
	MaxConcurrent int // default: 8
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages caps concurrently open tabs.
	MaxPages int // default: 4

	// Proxy is used for every request the browser makes.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Stealth injects anti-detection scripts into every tab.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types to block.
	// default: ["Font", "Media"]
	BlockedResourceTypes []string

	// AcceptLanguage is sent with every request.
	AcceptLanguage string // default: "zh-CN,zh;q=0.9"
}

// RenderConfig controls the fetch lifecycle.
type RenderConfig struct {
	// SettleDelay is waited after the page reports loaded.
	SettleDelay time.Duration // default: 3s

	// NavigationTimeout bounds page navigation alone.
	NavigationTimeout time.Duration // default: 30s

	// RenderTimeout bounds a whole cache-miss fetch.
	RenderTimeout time.Duration // default: 45s

	// StableInterval is the DOM stability sampling interval; 0 disables the poll.
	StableInterval time.Duration // default: 500ms

	// StableThreshold is the simhash distance still considered unchanged.
	StableThreshold int // default: 3

	// StableMaxWait bounds the stability poll.
	StableMaxWait time.Duration // default: 10s
}

// CacheConfig controls the per-engine fetch caches.
type CacheConfig struct {
	// MaxEntries caps each engine's cache. 0 means unbounded.
	MaxEntries int // default: 0

	// TTL expires entries after a fixed age. 0 means entries live until
	// they are cleared.
	TTL time.Duration // default: 0
}

// FavoritesConfig controls the local favourites store.
type FavoritesConfig struct {
	// Path is the bbolt database file.
	Path string // default: "wikidex.db"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client.
	Burst int // default: 10
}

// WebhookConfig controls background-work notifications.
type WebhookConfig struct {
	// URL receives a POST when a warm-up finishes. Empty disables it.
	URL string

	// Secret signs each body with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// WikiConfig points at the wiki being browsed.
type WikiConfig struct {
	BaseURL string // default: "https://wiki.kurobbs.com"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("WIKIDEX_HOST", "127.0.0.1"),
			Port: envIntOr("WIKIDEX_PORT", 8080),
			Mode: envOr("WIKIDEX_MODE", "release"),
		},
		Surface: SurfaceConfig{
			Kind:          strings.ToLower(envOr("WIKIDEX_SURFACE", SurfaceBrowser)),
			MaxConcurrent: envIntOr("WIKIDEX_HTTP_MAX_CONCURRENT", 8),
		},
		Browser: BrowserConfig{
			Headless:             envBoolOr("WIKIDEX_HEADLESS", true),
			MaxPages:             envIntOr("WIKIDEX_MAX_PAGES", 4),
			Proxy:                os.Getenv("WIKIDEX_PROXY"),
			NoSandbox:            envBoolOr("WIKIDEX_NO_SANDBOX", false),
			Bin:                  os.Getenv("WIKIDEX_BROWSER_BIN"),
			Stealth:              envBoolOr("WIKIDEX_STEALTH", true),
			BlockedResourceTypes: envSliceOr("WIKIDEX_BLOCKED_RESOURCES", []string{"Font", "Media"}),
			AcceptLanguage:       envOr("WIKIDEX_ACCEPT_LANGUAGE", "zh-CN,zh;q=0.9"),
		},
		Render: RenderConfig{
			SettleDelay:       envDurationOr("WIKIDEX_SETTLE_DELAY", 3*time.Second),
			NavigationTimeout: envDurationOr("WIKIDEX_NAV_TIMEOUT", 30*time.Second),
			RenderTimeout:     envDurationOr("WIKIDEX_RENDER_TIMEOUT", 45*time.Second),
			StableInterval:    envDurationOr("WIKIDEX_STABLE_INTERVAL", 500*time.Millisecond),
			StableThreshold:   envIntOr("WIKIDEX_STABLE_THRESHOLD", 3),
			StableMaxWait:     envDurationOr("WIKIDEX_STABLE_MAX_WAIT", 10*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("WIKIDEX_CACHE_MAX_ENTRIES", 0),
			TTL:        envDurationOr("WIKIDEX_CACHE_TTL", 0),
		},
		Favorites: FavoritesConfig{
			Path: envOr("WIKIDEX_FAVORITES_PATH", "wikidex.db"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("WIKIDEX_AUTH_ENABLED", false),
			APIKeys: envSliceOr("WIKIDEX_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WIKIDEX_RATE_RPS", 5.0),
			Burst:             envIntOr("WIKIDEX_RATE_BURST", 10),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("WIKIDEX_WEBHOOK_URL"),
			Secret: os.Getenv("WIKIDEX_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("WIKIDEX_LOG_LEVEL", "info"),
			Format: envOr("WIKIDEX_LOG_FORMAT", "text"),
		},
		Wiki: WikiConfig{
			BaseURL: strings.TrimRight(envOr("WIKIDEX_BASE_URL", "https://wiki.kurobbs.com"), "/"),
		},
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Surface.Kind {
	case SurfaceBrowser, SurfaceHTTP:
	default:
		return fmt.Errorf("config: WIKIDEX_SURFACE must be %q or %q, got %q", SurfaceBrowser, SurfaceHTTP, c.Surface.Kind)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("config: auth is enabled but WIKIDEX_API_KEYS is empty")
	}
	if c.Render.RenderTimeout > 0 && c.Render.SettleDelay >= c.Render.RenderTimeout {
		return fmt.Errorf("config: settle delay %s leaves no time within render timeout %s",
			c.Render.SettleDelay, c.Render.RenderTimeout)
	}
	return nil
}

// EngineOptions maps the render and cache sections onto engine.Options.
func (c *Config) EngineOptions(logger *slog.Logger) engine.Options {
	var cacheOpts []cache.Option
	if c.Cache.MaxEntries > 0 {
		cacheOpts = append(cacheOpts, cache.WithMaxEntries(c.Cache.MaxEntries))
	}
	if c.Cache.TTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithTTL(c.Cache.TTL))
	}
	return engine.Options{
		SettleDelay:       c.Render.SettleDelay,
		NavigationTimeout: c.Render.NavigationTimeout,
		RenderTimeout:     c.Render.RenderTimeout,
		Stability: engine.Stability{
			Interval:  c.Render.StableInterval,
			Threshold: c.Render.StableThreshold,
			MaxWait:   c.Render.StableMaxWait,
		},
		CacheOptions: cacheOpts,
		Logger:       logger,
	}
}

// BrowserOptions maps the browser section onto engine.BrowserOptions.
func (c *Config) BrowserOptions() engine.BrowserOptions {
	return engine.BrowserOptions{
		Headless:             c.Browser.Headless,
		NoSandbox:            c.Browser.NoSandbox,
		Bin:                  c.Browser.Bin,
		Proxy:                c.Browser.Proxy,
		MaxPages:             c.Browser.MaxPages,
		Stealth:              c.Browser.Stealth,
		BlockedResourceTypes: c.Browser.BlockedResourceTypes,
		Headers:              c.headers(),
	}
}

// StaticOptions maps the surface and browser sections onto
// engine.StaticOptions.
func (c *Config) StaticOptions() engine.StaticOptions {
	return engine.StaticOptions{
		MaxSurfaces: c.Surface.MaxConcurrent,
		Proxy:       c.Browser.Proxy,
		Headers:     c.headers(),
	}
}

func (c *Config) headers() map[string]string {
	if c.Browser.AcceptLanguage == "" {
		return nil
	}
	return map[string]string{"Accept-Language": c.Browser.AcceptLanguage}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
