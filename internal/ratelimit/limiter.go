// Package ratelimit implements a sliding-window request limiter keyed by client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CleanupInterval is how often Run prunes idle clients.
const CleanupInterval = 5 * time.Minute

// Limiter counts requests per client key within a sliding time window.
// State lives in process memory; each instance of the service limits
// independently.
type Limiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time

	now func() time.Time
}

// NewLimiter creates a limiter allowing limit requests per window for each key
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether key may make another request, recording it when allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false
	}

	l.hits[key] = append(kept, now)
	return true
}

// RetryAfter returns the window length in whole seconds, for 429 responses
func (l *Limiter) RetryAfter() int {
	return int(l.window / time.Second)
}

// Run prunes idle clients every interval until ctx is cancelled
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

// prune drops entries idle for twice the window so abandoned clients do not
// accumulate in the map.
func (l *Limiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.window)
	for key, stamps := range l.hits {
		kept := stamps[:0]
		for _, ts := range stamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = kept
		}
	}
}
