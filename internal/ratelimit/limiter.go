// Package ratelimit provides an in-memory per-key request limiter and the
// named throttle policies applied to the auth endpoints. Counters are
// process-local; multi-instance deployments rate limit per instance.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per key over a sliding window.
type Limiter struct {
	window    time.Duration
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewLimiter returns a limiter with a one-minute window, matching the
// per-minute policy limits.
func NewLimiter() *Limiter {
	return &Limiter{
		window:    time.Minute,
		hits:      make(map[string][]time.Time),
		lastSweep: time.Now(),
	}
}

// Allow records a hit for key and reports whether it stays within limit.
// When rejected, retryAfter is how long until the oldest counted hit leaves
// the window. A limit of zero or less disables the check.
func (l *Limiter) Allow(key string, limit int) (ok bool, retryAfter time.Duration) {
	if limit <= 0 {
		return true, 0
	}
	now := time.Now()
	cutoff := now.Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}
	entries := l.hits[key]
	keep := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	if len(keep) >= limit {
		l.hits[key] = keep
		return false, l.window - now.Sub(keep[0])
	}
	keep = append(keep, now)
	l.hits[key] = keep
	return true, 0
}

// sweep drops keys whose hits have all left the window so idle keys do not
// accumulate across distinct clients. Caller holds the lock. Timestamps per
// key are appended in order, so the last entry is the newest.
func (l *Limiter) sweep(cutoff time.Time) {
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}
