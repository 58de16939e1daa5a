package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

// statusClientClosedRequest is the de-facto status for a request the client
// abandoned before the fetch finished.
const statusClientClosedRequest = 499

// respondFetched writes a successful fetch with its cache status and timing.
func respondFetched(c *gin.Context, f wiki.Fetched, start time.Time) {
	status := "miss"
	if f.Cached {
		status = "hit"
	}
	fetchedAt := f.FetchedAt
	c.JSON(http.StatusOK, models.APIResponse{
		Success:     true,
		Data:        f.Value,
		CacheStatus: status,
		FetchedAt:   &fetchedAt,
		Timing: &models.TimingInfo{
			TotalMs:  time.Since(start).Milliseconds(),
			RenderMs: f.RenderTime.Milliseconds(),
		},
	})
}

// respondOK writes a successful response for endpoints that do not fetch.
func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, models.APIResponse{Success: true, Data: data})
}

// respondError converts err to a FetchError and writes it with the matching
// HTTP status.
func respondError(c *gin.Context, err error) {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		fe = models.NewFetchError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(fe), models.APIResponse{
		Success: false,
		Error:   fe.ToDetail(),
	})
}

// abortInvalid writes a 400 for a malformed request.
func abortInvalid(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.APIResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: msg,
		},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.FetchError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeSerialization, models.ErrCodeExtraction:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeCanceled:
		return statusClientClosedRequest
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}

// refreshParam reads the optional ?refresh= flag. ok is false after a 400
// has been written.
func refreshParam(c *gin.Context) (refresh, ok bool) {
	v := c.Query("refresh")
	if v == "" {
		return false, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		abortInvalid(c, "refresh must be a boolean, got "+strconv.Quote(v))
		return false, false
	}
	return b, true
}
