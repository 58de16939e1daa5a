package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/wikidex/config"
	"github.com/use-agent/wikidex/engine"
	"github.com/use-agent/wikidex/favorites"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

const listPage = `<html><body><main>
<div class="entry-wrapper"><a href="/mc/item/1001"><div class="card-footer-inner">今汐</div><div class="card-footer">今汐</div></a></div>
</main></body></html>`

const videoPage = `<html><body><h1>版本PV</h1><video src="https://cdn.example.com/pv.mp4" poster="https://cdn.example.com/pv.jpg"></video></body></html>`

func newWiki(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /mc/catalogue/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listPage)
	})
	mux.HandleFunc("GET /mc/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.PathValue("id") == "7" {
			fmt.Fprint(w, videoPage)
			return
		}
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	handler http.Handler
	svc     *wiki.Service
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	srv := newWiki(t)

	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	provider := engine.NewStaticSurfaces(engine.StaticOptions{Client: srv.Client()})
	t.Cleanup(func() { provider.Close() })
	svc := wiki.New(provider, wiki.Options{
		BaseURL: srv.URL,
		Engine:  engine.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	})

	favs, err := favorites.Open(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { favs.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &harness{
		handler: NewRouter(ctx, svc, favs, cfg, time.Now()),
		svc:     svc,
	}
}

type envelope struct {
	Success     bool                `json:"success"`
	Data        json.RawMessage     `json:"data"`
	CacheStatus string              `json:"cache_status"`
	FetchedAt   *time.Time          `json:"fetched_at"`
	Timing      *models.TimingInfo  `json:"timing"`
	Error       *models.ErrorDetail `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "http", health.SurfaceStats.Kind)
	assert.Contains(t, health.CacheCounts, wiki.KindCatalogue)
}

func TestCatalogueMissThenHit(t *testing.T) {
	h := newHarness(t, nil)

	w, env := h.do(t, http.MethodGet, "/api/v1/catalogue/characters", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "miss", env.CacheStatus)
	require.NotNil(t, env.FetchedAt)

	var entries []models.CatalogueEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1001", entries[0].ItemID)

	_, again := h.do(t, http.MethodGet, "/api/v1/catalogue/characters", "")
	assert.Equal(t, "hit", again.CacheStatus)
	assert.True(t, env.FetchedAt.Equal(*again.FetchedAt))
	assert.Zero(t, again.Timing.RenderMs)

	_, refreshed := h.do(t, http.MethodGet, "/api/v1/catalogue/characters?refresh=true", "")
	assert.Equal(t, "miss", refreshed.CacheStatus)
}

func TestCollectionsErrors(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/catalogue/vehicles", http.StatusNotFound, models.ErrCodeNotFound},
		{"/api/v1/media/podcasts", http.StatusNotFound, models.ErrCodeNotFound},
		{"/api/v1/catalogue/characters?refresh=maybe", http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"/api/v1/items/weapon/abc", http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"/api/v1/items/mount/1", http.StatusNotFound, models.ErrCodeNotFound},
		{"/api/v1/items/character/5", http.StatusBadGateway, models.ErrCodeExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, env := h.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestMediaAndGuides(t *testing.T) {
	h := newHarness(t, nil)

	for _, path := range []string{"/api/v1/media/version-pv", "/api/v1/guides"} {
		w, env := h.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var entries []models.MediaEntry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "今汐", entries[0].Title)
	}

	w, env := h.do(t, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"characters"`)
	assert.Contains(t, string(env.Data), `"wallpapers"`)
}

func TestItem(t *testing.T) {
	h := newHarness(t, nil)

	w, env := h.do(t, http.MethodGet, "/api/v1/items/video/7", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var v models.VideoDetails
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "版本PV", v.Title)
	assert.Equal(t, "https://cdn.example.com/pv.mp4", v.VideoURL)
	assert.Equal(t, "miss", env.CacheStatus)
}

func TestCacheEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	h.do(t, http.MethodGet, "/api/v1/catalogue/characters", "")
	h.do(t, http.MethodGet, "/api/v1/items/video/7", "")

	w, env := h.do(t, http.MethodGet, "/api/v1/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snaps map[string]struct {
		Count     int      `json:"count"`
		Addresses []string `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snaps))
	assert.Equal(t, 1, snaps[wiki.KindCatalogue].Count)
	assert.Equal(t, 1, snaps[wiki.KindVideo].Count)

	w, _ = h.do(t, http.MethodDelete, "/api/v1/cache?address=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(t, http.MethodDelete, "/api/v1/cache?kind=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	address := snaps[wiki.KindVideo].Addresses[0]
	w, _ = h.do(t, http.MethodDelete, "/api/v1/cache?kind=video&address="+url.QueryEscape(address), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, h.svc.CacheCounts()[wiki.KindVideo])
	assert.Equal(t, 1, h.svc.CacheCounts()[wiki.KindCatalogue])

	w, _ = h.do(t, http.MethodDelete, "/api/v1/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, h.svc.CacheCounts()[wiki.KindCatalogue])
}

func TestFavorites(t *testing.T) {
	h := newHarness(t, nil)

	w, _ := h.do(t, http.MethodPost, "/api/v1/favorites", `{"name":"今汐"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := h.do(t, http.MethodPost, "/api/v1/favorites",
		`{"name":"今汐","item_id":"1001","tab_type":"characters","image_url":"https://cdn.example.com/a.png"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var f models.Favorite
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.NotEmpty(t, f.ID)

	_, env = h.do(t, http.MethodGet, "/api/v1/favorites?tab_type=characters", "")
	var list []models.Favorite
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)

	w, _ = h.do(t, http.MethodDelete, "/api/v1/favorites/"+f.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = h.do(t, http.MethodDelete, "/api/v1/favorites/"+f.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrCodeNotFound, env.Error.Code)
}

func TestAuth(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Auth.Enabled = true
		c.Auth.APIKeys = []string{"secret"}
	})

	w, env := h.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrCodeUnauthorized, env.Error.Code)

	w, _ = h.do(t, http.MethodGet, "/api/v1/categories", "", "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/v1/categories", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health stays open")
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimit.RequestsPerSecond = 0.001
		c.RateLimit.Burst = 1
	})

	w, _ := h.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrCodeRateLimited, env.Error.Code)
}
