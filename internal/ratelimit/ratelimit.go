// Package ratelimit implements the fixed-window request counters guarding
// profile creation and profile reads.
package ratelimit

import (
	"sync"
	"time"
)

// entry holds the counter state for one caller key.
type entry struct {
	count int
	reset time.Time
}

// FixedWindow is a fixed-window rate limiter keyed by caller identity
// (in practice the client IP). The whole counter resets when the window
// boundary passes, so bursts across a boundary are allowed by design.
// State is in-memory, process-local, unbounded in the number of keys and
// lost on restart.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewFixedWindow creates a limiter allowing 'limit' requests per 'window'
// for each key.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow records a request for the key and reports whether it is within the
// limit. The count is incremented before the check, so exactly 'limit'
// requests pass per window and the next one is rejected.
func (l *FixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{reset: now.Add(l.window)}
		l.entries[key] = e
	}
	if now.After(e.reset) {
		e.count = 0
		e.reset = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit
}
