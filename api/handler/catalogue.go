package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/engine"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

// Categories returns a handler for GET /api/v1/categories listing the
// catalogue categories and media collections.
func Categories() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, http.StatusOK, gin.H{
			"catalogue": models.Categories,
			"media":     models.MediaTypes,
		})
	}
}

// Catalogue returns a handler for GET /api/v1/catalogue/:category.
func Catalogue(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		refresh, ok := refreshParam(c)
		if !ok {
			return
		}
		res, err := svc.Catalogue(c.Request.Context(), c.Param("category"), refresh)
		respondList(c, res, err, start)
	}
}

// Media returns a handler for GET /api/v1/media/:type.
func Media(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		refresh, ok := refreshParam(c)
		if !ok {
			return
		}
		res, err := svc.Media(c.Request.Context(), c.Param("type"), refresh)
		respondList(c, res, err, start)
	}
}

// Guides returns a handler for GET /api/v1/guides.
func Guides(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		refresh, ok := refreshParam(c)
		if !ok {
			return
		}
		res, err := svc.Guides(c.Request.Context(), refresh)
		respondList(c, res, err, start)
	}
}

func respondList[T any](c *gin.Context, res engine.Result[T], err error, start time.Time) {
	if err != nil {
		respondError(c, err)
		return
	}
	respondFetched(c, wiki.Fetched{
		Value:      res.Value,
		FetchedAt:  res.FetchedAt,
		Cached:     res.Cached,
		RenderTime: res.RenderTime,
	}, start)
}
