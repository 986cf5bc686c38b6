package cart

import (
	"sync"
	"time"
)

const (
	// DefaultAddLimit is the number of add-to-cart operations allowed
	// per session within DefaultAddWindow. A soft guard against
	// UI-driven retry storms, not a security boundary.
	DefaultAddLimit = 30
	// DefaultAddWindow is the rolling window the add limit applies to.
	DefaultAddWindow = time.Minute
)

// AttemptLimiter decides whether a session may perform another cart
// mutation right now. Implementations must be safe for concurrent use.
type AttemptLimiter interface {
	Allow(sessionID string, now time.Time) bool
}

// MemoryLimiter is a per-process rolling-window limiter. Rejected
// attempts are not recorded, so a throttled session recovers as soon
// as the window slides.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewMemoryLimiter creates an in-memory rolling-window limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(sessionID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	recent := l.attempts[sessionID][:0]
	for _, t := range l.attempts[sessionID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.limit {
		l.attempts[sessionID] = recent
		return false
	}
	l.attempts[sessionID] = append(recent, now)
	return true
}
