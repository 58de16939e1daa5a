package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SurfaceBrowser, cfg.Surface.Kind)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"Font", "Media"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, 3*time.Second, cfg.Render.SettleDelay)
	assert.Equal(t, 45*time.Second, cfg.Render.RenderTimeout)
	assert.Zero(t, cfg.Cache.MaxEntries)
	assert.Zero(t, cfg.Cache.TTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "https://wiki.kurobbs.com", cfg.Wiki.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WIKIDEX_PORT", "9191")
	t.Setenv("WIKIDEX_SURFACE", "HTTP")
	t.Setenv("WIKIDEX_SETTLE_DELAY", "750ms")
	t.Setenv("WIKIDEX_CACHE_MAX_ENTRIES", "200")
	t.Setenv("WIKIDEX_CACHE_TTL", "1h")
	t.Setenv("WIKIDEX_BLOCKED_RESOURCES", "Image, Font ,,Media")
	t.Setenv("WIKIDEX_BASE_URL", "http://localhost:9000/")
	t.Setenv("WIKIDEX_HEADLESS", "not-a-bool")
	t.Setenv("WIKIDEX_WEBHOOK_URL", "http://localhost:9999/hook")

	cfg := Load()

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, SurfaceHTTP, cfg.Surface.Kind)
	assert.Equal(t, 750*time.Millisecond, cfg.Render.SettleDelay)
	assert.Equal(t, 200, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"Image", "Font", "Media"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, "http://localhost:9000", cfg.Wiki.BaseURL)
	assert.True(t, cfg.Browser.Headless, "unparsable values keep the default")
	assert.Equal(t, "http://localhost:9999/hook", cfg.Webhook.URL)
	assert.Empty(t, cfg.Webhook.Secret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown surface", func(c *Config) { c.Surface.Kind = "webkit" }},
		{"auth without keys", func(c *Config) { c.Auth.Enabled = true }},
		{"settle longer than render", func(c *Config) { c.Render.SettleDelay = time.Minute }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Load()
	cfg.Cache.MaxEntries = 10
	cfg.Cache.TTL = time.Minute

	opts := cfg.EngineOptions(nil)
	assert.Equal(t, cfg.Render.SettleDelay, opts.SettleDelay)
	assert.Equal(t, cfg.Render.NavigationTimeout, opts.NavigationTimeout)
	assert.Equal(t, cfg.Render.RenderTimeout, opts.RenderTimeout)
	assert.Equal(t, cfg.Render.StableInterval, opts.Stability.Interval)
	assert.Equal(t, cfg.Render.StableThreshold, opts.Stability.Threshold)
	assert.Len(t, opts.CacheOptions, 2)

	cfg.Cache = CacheConfig{}
	assert.Empty(t, cfg.EngineOptions(nil).CacheOptions)
}

func TestSurfaceOptionsCarryHeaders(t *testing.T) {
	cfg := Load()
	cfg.Browser.Proxy = "http://proxy:3128"

	b := cfg.BrowserOptions()
	assert.Equal(t, "zh-CN,zh;q=0.9", b.Headers["Accept-Language"])
	assert.Equal(t, "http://proxy:3128", b.Proxy)

	s := cfg.StaticOptions()
	assert.Equal(t, 8, s.MaxSurfaces)
	assert.Equal(t, b.Headers, s.Headers)

	cfg.Browser.AcceptLanguage = ""
	assert.Nil(t, cfg.StaticOptions().Headers)
}
