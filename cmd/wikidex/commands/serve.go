package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/wikidex/api"
	"github.com/use-agent/wikidex/engine"
	"github.com/use-agent/wikidex/favorites"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/webhook"
)

var warmFlag bool

func init() {
	serveCmd.Flags().BoolVar(&warmFlag, "warm", false, "render every catalogue category in the background at startup")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--warm]",
	Short: "Serves the local JSON API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// ── 1. Logging ──────────────────────────────────────────────────
		logger := initLogger(cfg.Log, os.Stdout)
		logger.Info("wikidex starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"surface", cfg.Surface.Kind,
		)

		// ── 2. Surfaces and engines ─────────────────────────────────────
		svc, provider, err := newService(cfg, logger)
		if err != nil {
			return fmt.Errorf("start %s surfaces: %w", cfg.Surface.Kind, err)
		}
		defer provider.Close()

		// ── 3. Favourites ───────────────────────────────────────────────
		favs, err := favorites.Open(cfg.Favorites.Path)
		if err != nil {
			return err
		}
		defer favs.Close()

		if warmFlag {
			start := time.Now()
			tasks := svc.Warm(ctx)
			if cfg.Webhook.URL != "" {
				notifier := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret, logger)
				go func() {
					summary := awaitWarm(tasks, start)
					event := webhook.NewEvent(webhook.EventWarmCompleted, summary)
					_ = notifier.DeliverRetry(ctx, event)
				}()
			}
		}

		// ── 4. HTTP server ──────────────────────────────────────────────
		router := api.NewRouter(ctx, svc, favs, cfg, time.Now())
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		// ── 5. Graceful shutdown ────────────────────────────────────────
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("HTTP server: %w", err)
			}
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		}

		// Give in-flight requests 5 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}

		// provider.Close() runs via defer and kills Chrome.
		slog.Info("wikidex stopped")
		return nil
	},
}

// awaitWarm waits for the tasks returned by Service.Warm, which follow the
// order of models.Categories, and summarises them.
func awaitWarm(tasks []*engine.Task, start time.Time) webhook.WarmSummary {
	summary := webhook.WarmSummary{Total: len(tasks)}
	for i, t := range tasks {
		if err := t.Wait(); err != nil {
			if summary.Failed == nil {
				summary.Failed = make(map[string]string)
			}
			summary.Failed[models.Categories[i].Slug] = err.Error()
			continue
		}
		summary.Succeeded++
	}
	summary.ElapsedMS = time.Since(start).Milliseconds()
	return summary
}
