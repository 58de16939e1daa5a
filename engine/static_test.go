package engine

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/wikidex/models"
)

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mc/item/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page(r.Header.Get("X-Test-Name")))
	})
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/huge", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Rover"))
		w.Write(bytes.Repeat([]byte("a"), maxBody))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStaticSurfaces_EndToEnd(t *testing.T) {
	srv := newWikiServer(t)
	provider := NewStaticSurfaces(StaticOptions{
		MaxSurfaces: 2,
		Headers:     map[string]string{"X-Test-Name": "Rover"},
		Client:      srv.Client(),
	})
	defer provider.Close()

	e := New[named]("static", provider, nameStrategy, testOptions())
	res, err := e.Fetch(context.Background(), srv.URL+"/mc/item/1", false)
	require.NoError(t, err)
	assert.Equal(t, "Rover", res.Value.Name)

	stats := provider.Stats()
	assert.Equal(t, "http", stats.Kind)
	assert.Equal(t, 2, stats.MaxSurfaces)
	assert.Equal(t, 0, stats.ActiveSurfaces)
	assert.Equal(t, int64(1), stats.TotalAcquired)
}

func TestStaticSurfaces_Failures(t *testing.T) {
	srv := newWikiServer(t)
	provider := NewStaticSurfaces(StaticOptions{Client: srv.Client()})
	e := New[named]("static", provider, nameStrategy, testOptions())

	tests := []struct {
		name string
		path string
		want string
	}{
		{"not found", "/mc/item/404", models.ErrCodeNavigation},
		{"not html", "/image.png", models.ErrCodeNavigation},
		{"oversized", "/huge", models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Fetch(context.Background(), srv.URL+tt.path, false)
			require.Error(t, err)
			assert.Equal(t, tt.want, codeOf(t, err))
		})
	}
	assert.Equal(t, 0, provider.Stats().ActiveSurfaces)
	assert.Equal(t, 0, e.CacheSnapshot().Count, "failures are never cached")
}

func TestStaticSurfaces_NavigationTimeout(t *testing.T) {
	srv := newWikiServer(t)
	provider := NewStaticSurfaces(StaticOptions{Client: srv.Client()})
	opts := testOptions()
	opts.NavigationTimeout = 30 * time.Millisecond
	e := New[named]("static", provider, nameStrategy, opts)

	_, err := e.Fetch(context.Background(), srv.URL+"/slow", false)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeTimeout, codeOf(t, err))
}

func TestStaticSurfaces_AcquireHonoursContext(t *testing.T) {
	provider := NewStaticSurfaces(StaticOptions{MaxSurfaces: 1, Client: http.DefaultClient})

	held, err := provider.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = provider.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Close())
	require.NoError(t, held.Close(), "Close is idempotent")

	s, err := provider.Acquire(context.Background())
	require.NoError(t, err)
	_, err = s.HTML(context.Background())
	assert.Error(t, err, "HTML before Navigate")
	s.Close()
}
