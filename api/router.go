package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/api/handler"
	"github.com/use-agent/wikidex/api/middleware"
	"github.com/use-agent/wikidex/config"
	"github.com/use-agent/wikidex/favorites"
	"github.com/use-agent/wikidex/wiki"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
// ctx bounds the rate limiter's background cleanup.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
// Favourite routes are only mounted when favs is non-nil.
func NewRouter(ctx context.Context, svc *wiki.Service, favs *favorites.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(svc, startTime))

	// Protected group: auth and rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Collections
	protected.GET("/categories", handler.Categories())
	protected.GET("/catalogue/:category", handler.Catalogue(svc))
	protected.GET("/media/:type", handler.Media(svc))
	protected.GET("/guides", handler.Guides(svc))

	// Item pages
	protected.GET("/items/:kind/:id", handler.Item(svc))

	// Fetch cache
	protected.GET("/cache", handler.CacheSnapshot(svc))
	protected.DELETE("/cache", handler.ClearCache(svc))

	// Favourites
	if favs != nil {
		protected.GET("/favorites", handler.ListFavorites(favs))
		protected.POST("/favorites", handler.AddFavorite(favs))
		protected.DELETE("/favorites/:id", handler.RemoveFavorite(favs))
	}

	return r
}
