package engine

import (
	"math"
	"sync"
)

// health scores a browser process by recent tab-creation outcomes.
//
// Scoring rules:
//   - Success: errScore -= 0.5 (min 0)
//   - Failure: errScore += 1.0
//
// Restart triggers once errScore reaches 3.0, i.e. after three failures in a
// row, or more spread out between successes.
type health struct {
	mu       sync.Mutex
	errScore float64
}

const restartScore = 3.0

func newHealth() *health {
	return &health{}
}

// RecordSuccess decreases the error score (min 0).
func (h *health) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errScore = math.Max(0, h.errScore-0.5)
}

// RecordFailure increases the error score.
func (h *health) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errScore += 1.0
}

// ShouldRestart reports whether the browser should be relaunched.
func (h *health) ShouldRestart() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errScore >= restartScore
}

// reset clears the score after the browser has been relaunched.
func (h *health) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errScore = 0
}
