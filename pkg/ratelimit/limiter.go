// Package ratelimit is an in-memory sliding window limiter keyed by client.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultLimit   = 10
	DefaultWindow  = time.Minute
	DefaultMaxKeys = 10000
)

// Clock is the time source, replaceable in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Config sets the window. Zero fields take the package defaults.
type Config struct {
	// Limit is the number of requests allowed per key within Window.
	Limit   int
	Window  time.Duration
	MaxKeys int
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = DefaultMaxKeys
	}
	return c
}

// Limiter allows at most Limit requests per key in any Window-long span.
type Limiter struct {
	cfg     Config
	name    string
	store   *MemoryStore
	clock   Clock
	metrics Metrics

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithMetrics records decisions and evictions.
func WithMetrics(m Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

// New returns a Limiter. name labels its metrics and logs.
func New(name string, cfg Config, opts ...Option) *Limiter {
	cfg = cfg.withDefaults()
	l := &Limiter{
		cfg:      cfg,
		name:     name,
		store:    NewMemoryStore(cfg.MaxKeys),
		clock:    SystemClock{},
		metrics:  NoopMetrics{},
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.store.evicted = func(n int) { l.metrics.RecordEvictions(l.name, n) }
	return l
}

// Allow records a request for key when the window has room.
func (l *Limiter) Allow(key string) *Decision {
	now := l.now(key)
	cutoff := now.Add(-l.cfg.Window)

	allowed, count := l.store.CheckAndAdd(key, now, cutoff, l.cfg.Limit)
	d := &Decision{Key: key, Allowed: allowed, Limit: l.cfg.Limit, ResetAt: now.Add(l.cfg.Window)}
	if allowed {
		d.Remaining = l.cfg.Limit - count
	} else if oldest, ok := l.store.Oldest(key, cutoff); ok {
		d.ResetAt = oldest.Add(l.cfg.Window)
		d.RetryAfter = d.ResetAt.Sub(now)
	}

	l.metrics.RecordDecision(l.name, allowed)
	if !allowed {
		slog.Debug("rate limit exceeded",
			slog.String("limiter", l.name),
			slog.String("key", key),
			slog.Duration("retry_after", d.RetryAfter))
	}
	return d
}

// Cleanup forgets keys with no requests in the current window.
func (l *Limiter) Cleanup() int {
	now := l.clock.Now()
	removed := l.store.Cleanup(now.Add(-l.cfg.Window))

	l.mu.Lock()
	for key, ts := range l.lastSeen {
		if ts.Before(now.Add(-l.cfg.Window)) {
			delete(l.lastSeen, key)
		}
	}
	l.mu.Unlock()

	l.metrics.SetActiveKeys(l.name, l.store.Len())
	return removed
}

// RunCleanup calls Cleanup every interval until ctx ends.
func (l *Limiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Cleanup(); n > 0 {
				slog.Debug("rate limiter cleanup", slog.String("limiter", l.name), slog.Int("removed", n))
			}
		}
	}
}

// now never moves backwards for a key, so a clock step back cannot reopen
// a full window.
func (l *Limiter) now(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.lastSeen[key]; ok && now.Before(last) {
		slog.Warn("clock skew detected, using last timestamp",
			slog.String("limiter", l.name),
			slog.Duration("skew", last.Sub(now)))
		return last
	}
	l.lastSeen[key] = now
	return now
}
