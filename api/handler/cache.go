package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/wiki"
)

// CacheSnapshot returns a handler for GET /api/v1/cache.
func CacheSnapshot(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, http.StatusOK, svc.CacheSnapshot())
	}
}

// ClearCache returns a handler for DELETE /api/v1/cache.
//
//	DELETE /cache                       every engine
//	DELETE /cache?kind=weapon           one engine
//	DELETE /cache?kind=weapon&address=  one entry
func ClearCache(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.Query("kind")
		address := c.Query("address")

		switch {
		case kind == "" && address != "":
			abortInvalid(c, "address requires kind")
			return
		case kind == "":
			svc.ClearCache()
		default:
			if err := svc.ClearCacheFor(kind, address); err != nil {
				respondError(c, err)
				return
			}
		}
		respondOK(c, http.StatusOK, svc.CacheCounts())
	}
}
