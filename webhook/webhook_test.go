package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietNotifier(url, secret string) *Notifier {
	n := New(url, secret, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.Retries = []time.Duration{0, 0}
	return n
}

func TestDeliverSignsBody(t *testing.T) {
	var (
		gotSig  string
		gotBody []byte
		gotType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := quietNotifier(srv.URL, "s3cret")
	event := NewEvent(EventWarmCompleted, WarmSummary{Total: 2, Succeeded: 2})
	require.NoError(t, n.Deliver(context.Background(), event))

	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, Sign("s3cret", gotBody), gotSig)

	var decoded struct {
		Type string      `json:"type"`
		Data WarmSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventWarmCompleted, decoded.Type)
	assert.Equal(t, 2, decoded.Data.Succeeded)
}

func TestDeliverWithoutSecretIsUnsigned(t *testing.T) {
	var signed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signed.Store(r.Header.Get(SignatureHeader) != "")
	}))
	defer srv.Close()

	require.NoError(t, quietNotifier(srv.URL, "").Deliver(context.Background(), NewEvent(EventWarmCompleted, nil)))
	assert.False(t, signed.Load())
}

func TestDeliverRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := quietNotifier(srv.URL, "").Deliver(context.Background(), NewEvent(EventWarmCompleted, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDeliverRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	require.NoError(t, quietNotifier(srv.URL, "").DeliverRetry(context.Background(), NewEvent(EventWarmCompleted, nil)))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := quietNotifier(srv.URL, "").DeliverRetry(context.Background(), NewEvent(EventWarmCompleted, nil))
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := quietNotifier(srv.URL, "")
	n.Retries = []time.Duration{time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := n.DeliverRetry(ctx, NewEvent(EventWarmCompleted, nil))
	assert.ErrorIs(t, err, context.Canceled)
}
