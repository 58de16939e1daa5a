package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Reports surface utilisation and degrades status when > 80% of surfaces are
// in use.
func Health(svc *wiki.Service, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := svc.Stats()

		status := "healthy"
		if stats.MaxSurfaces > 0 && stats.ActiveSurfaces > int(float64(stats.MaxSurfaces)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			SurfaceStats: stats,
			CacheCounts:  svc.CacheCounts(),
			Version:      Version,
		})
	}
}
