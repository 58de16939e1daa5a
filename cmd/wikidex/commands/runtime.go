package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/use-agent/wikidex/config"
	"github.com/use-agent/wikidex/engine"
	"github.com/use-agent/wikidex/wiki"
)

// initLogger configures slog based on the LogConfig.
func initLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// newProvider starts the configured surface provider. The caller closes it.
func newProvider(c *config.Config) (engine.SurfaceProvider, error) {
	switch c.Surface.Kind {
	case config.SurfaceHTTP:
		return engine.NewStaticSurfaces(c.StaticOptions()), nil
	case config.SurfaceBrowser:
		return engine.NewBrowserSurfaces(c.BrowserOptions())
	default:
		return nil, fmt.Errorf("unknown surface %q", c.Surface.Kind)
	}
}

// newService wires a wiki.Service to a fresh provider.
func newService(c *config.Config, logger *slog.Logger) (*wiki.Service, engine.SurfaceProvider, error) {
	provider, err := newProvider(c)
	if err != nil {
		return nil, nil, err
	}
	svc := wiki.New(provider, wiki.Options{
		BaseURL: c.Wiki.BaseURL,
		Engine:  c.EngineOptions(logger),
	})
	return svc, provider, nil
}
