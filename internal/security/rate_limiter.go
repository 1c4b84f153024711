// Package security holds the process-local abuse controls: the fixed-window
// rate limiter and the security event monitor.
package security

import (
	"sync"
	"time"
)

// rateLimitRecord is the per-key counter for one fixed window. Ephemeral and
// process-local; never persisted.
type rateLimitRecord struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window per-key attempt counter. Bursts straddling a
// window boundary can momentarily allow up to 2x maxAttempts requests, which
// is acceptable for abuse deterrence but not for hard quota enforcement.
type RateLimiter struct {
	mu      sync.Mutex
	records map[string]*rateLimitRecord
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter using the wall clock.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		records: make(map[string]*rateLimitRecord),
		now:     time.Now,
	}
}

// NewRateLimiterWithClock creates a RateLimiter with an injected clock so
// window expiry is testable without sleeping.
func NewRateLimiterWithClock(now func() time.Time) *RateLimiter {
	return &RateLimiter{
		records: make(map[string]*rateLimitRecord),
		now:     now,
	}
}

// Check consumes one attempt for key and reports whether it is allowed and
// how many attempts remain in the current window. A denied attempt does not
// increment the counter.
func (l *RateLimiter) Check(key string, maxAttempts int, window time.Duration) (allowed bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.records[key]

	if !exists || now.After(record.resetAt) {
		l.records[key] = &rateLimitRecord{count: 1, resetAt: now.Add(window)}
		return true, maxAttempts - 1
	}

	if record.count >= maxAttempts {
		return false, 0
	}

	record.count++
	return true, maxAttempts - record.count
}

// Prune drops records whose window has expired and returns how many were
// removed. Called periodically by the background janitor so idle keys do not
// accumulate.
func (l *RateLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, record := range l.records {
		if now.After(record.resetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys, expired or not.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
