package registry

import (
	"sync"
	"time"
)

// rateLimiter implements per-connection sliding window rate limiting.
// Each connection keeps the timestamps of its recent messages; entries older
// than the window are pruned on every check.
type rateLimiter struct {
	mu     sync.Mutex
	cap    int
	window time.Duration
	hits   map[string][]time.Time
}

func newRateLimiter(cap int, window time.Duration) *rateLimiter {
	if cap <= 0 {
		cap = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &rateLimiter{
		cap:    cap,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

func (l *rateLimiter) allow(connID string) bool {
	return l.allowAt(connID, time.Now())
}

// allowAt prunes expired entries and records the attempt unless the window
// is already full. Rejected attempts are not recorded.
func (l *rateLimiter) allowAt(connID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := now.Add(-l.window)
	recent := l.hits[connID][:0]
	for _, t := range l.hits[connID] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.cap {
		l.hits[connID] = recent
		return false
	}

	l.hits[connID] = append(recent, now)
	return true
}

// forget drops all state for a connection. Called on disconnect so that a
// reconnect with a fresh connection id starts with an empty window.
func (l *rateLimiter) forget(connID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, connID)
}
