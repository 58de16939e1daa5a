package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestHealth_RestartAfterRepeatedFailures(t *testing.T) {
	h := newHealth()
	h.RecordFailure()
	h.RecordFailure()
	if h.ShouldRestart() {
		t.Fatal("two failures should not trigger a restart")
	}
	h.RecordFailure()
	if !h.ShouldRestart() {
		t.Fatal("three failures in a row should trigger a restart")
	}
}

func TestHealth_SuccessRecovers(t *testing.T) {
	h := newHealth()
	h.RecordFailure()
	h.RecordFailure()
	h.RecordSuccess()
	h.RecordSuccess()
	h.RecordFailure()
	if h.ShouldRestart() {
		t.Errorf("score %.1f should be below the restart threshold", h.errScore)
	}

	for i := 0; i < 10; i++ {
		h.RecordSuccess()
	}
	if h.errScore != 0 {
		t.Errorf("score should bottom out at 0, got %.1f", h.errScore)
	}
}

func TestBlockedSet(t *testing.T) {
	got := blockedSet([]string{"Font", "Media", "Bogus"})
	if len(got) != 2 {
		t.Fatalf("expected 2 blocked types, got %d", len(got))
	}
	if _, ok := got[proto.NetworkResourceTypeFont]; !ok {
		t.Error("Font should be blocked")
	}
	if _, ok := got[proto.NetworkResourceTypeImage]; ok {
		t.Error("Image should not be blocked")
	}
}

func TestHealth_ResetConcurrentWithRecords(t *testing.T) {
	var h health
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.RecordFailure()
			h.RecordSuccess()
			_ = h.ShouldRestart()
		}()
		go func() {
			defer wg.Done()
			h.reset()
		}()
	}
	wg.Wait()

	h.reset()
	if h.ShouldRestart() {
		t.Error("a reset score should not trigger a restart")
	}
}

func TestApplyHeaders(t *testing.T) {
	var logs bytes.Buffer
	saved := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(saved) })

	var sent proto.NetworkHeaders
	applyHeaders(map[string]string{"Accept-Language": "zh-CN"}, func(req proto.NetworkSetExtraHTTPHeaders) error {
		sent = req.Headers
		return nil
	})
	if got := sent["Accept-Language"].Str(); got != "zh-CN" {
		t.Errorf("Accept-Language = %q, want zh-CN", got)
	}
	if logs.Len() != 0 {
		t.Errorf("success should not log, got %q", logs.String())
	}

	applyHeaders(map[string]string{"Accept-Language": "zh-CN"}, func(proto.NetworkSetExtraHTTPHeaders) error {
		return errors.New("target closed")
	})
	if !strings.Contains(logs.String(), "setting extra headers failed") || !strings.Contains(logs.String(), "target closed") {
		t.Errorf("failure should be logged, got %q", logs.String())
	}

	called := false
	applyHeaders(nil, func(proto.NetworkSetExtraHTTPHeaders) error {
		called = true
		return nil
	})
	if called {
		t.Error("no headers should mean no call")
	}
}
