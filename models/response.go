package models

import "time"

// APIResponse is the envelope of every /api/v1 response.
type APIResponse struct {
	// Success indicates whether the request completed without errors.
	Success bool `json:"success"`

	// Data is the extracted record, list or snapshot.
	Data any `json:"data,omitempty"`

	// CacheStatus indicates whether the record came from the fetch cache.
	// Values: "hit", "miss", or empty for endpoints that do not fetch.
	CacheStatus string `json:"cache_status,omitempty"`

	// FetchedAt is when the record was extracted from a rendered page.
	FetchedAt *time.Time `json:"fetched_at,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing *TimingInfo `json:"timing,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent serving a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// RenderMs is the time spent rendering and extracting. Zero on a cache hit.
	RenderMs int64 `json:"render_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string         `json:"status"` // "healthy" or "degraded"
	Uptime       string         `json:"uptime"`
	SurfaceStats SurfaceStats   `json:"surface_stats"`
	CacheCounts  map[string]int `json:"cache_counts"`
	Version      string         `json:"version"`
}

// SurfaceStats reports the state of a rendering surface provider.
type SurfaceStats struct {
	Kind           string `json:"kind"` // "browser" or "http"
	MaxSurfaces    int    `json:"max_surfaces"`
	ActiveSurfaces int    `json:"active_surfaces"`
	TotalAcquired  int64  `json:"total_acquired"`
}

// Favorite is a catalogue entry bookmarked by the user.
type Favorite struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	ItemID    string    `json:"item_id"`
	TabType   string    `json:"tab_type"`
	SubType   string    `json:"sub_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteRequest is the body for POST /api/v1/favorites.
type FavoriteRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
	ItemID   string `json:"item_id" binding:"required"`
	TabType  string `json:"tab_type" binding:"required"`
	SubType  string `json:"sub_type"`
}
