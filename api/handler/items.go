package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/wiki"
)

// Item returns a handler for GET /api/v1/items/:kind/:id.
func Item(svc *wiki.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		refresh, ok := refreshParam(c)
		if !ok {
			return
		}
		f, err := svc.Item(c.Request.Context(), c.Param("kind"), c.Param("id"), refresh)
		if err != nil {
			respondError(c, err)
			return
		}
		respondFetched(c, f, start)
	}
}
