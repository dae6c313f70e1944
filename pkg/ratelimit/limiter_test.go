package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(t time.Time) *mockClock { return &mockClock{now: t} }

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *mockClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

type recordingMetrics struct {
	allowed, denied, evicted, active int
}

func (m *recordingMetrics) RecordDecision(_ string, allowed bool) {
	if allowed {
		m.allowed++
	} else {
		m.denied++
	}
}
func (m *recordingMetrics) RecordEvictions(_ string, n int) { m.evicted += n }
func (m *recordingMetrics) SetActiveKeys(_ string, n int)   { m.active = n }

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLimiter_SlidingWindow(t *testing.T) {
	clock := newMockClock(t0)
	l := New("fetch", Config{Limit: 2, Window: time.Minute}, WithClock(clock))

	d := l.Allow("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	clock.Advance(10 * time.Second)
	d = l.Allow("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	clock.Advance(10 * time.Second)
	d = l.Allow("10.0.0.1")
	require.False(t, d.Allowed)
	assert.Equal(t, 40*time.Second, d.RetryAfter)
	assert.Equal(t, int64(40), d.RetryAfterSeconds())
	assert.Equal(t, t0.Add(time.Minute), d.ResetAt)

	// The first request has left the window; the second is still in it.
	clock.Set(t0.Add(61 * time.Second))
	d = l.Allow("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.False(t, l.Allow("10.0.0.1").Allowed)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New("summarize", Config{Limit: 1, Window: time.Minute}, WithClock(newMockClock(t0)))

	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
}

func TestLimiter_ClockSkew(t *testing.T) {
	clock := newMockClock(t0)
	l := New("fetch", Config{Limit: 1, Window: time.Minute}, WithClock(clock))

	require.True(t, l.Allow("a").Allowed)

	clock.Set(t0.Add(-2 * time.Minute))
	assert.False(t, l.Allow("a").Allowed, "stepping the clock back must not reopen the window")
}

func TestLimiter_Cleanup(t *testing.T) {
	clock := newMockClock(t0)
	m := &recordingMetrics{}
	l := New("fetch", Config{Limit: 5, Window: time.Minute}, WithClock(clock), WithMetrics(m))

	l.Allow("a")
	clock.Advance(30 * time.Second)
	l.Allow("b")

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 1, l.store.Len())
	assert.Equal(t, 1, m.active)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 0, l.store.Len())
	assert.Empty(t, l.lastSeen)
}

func TestLimiter_EvictsLeastRecentlyUsed(t *testing.T) {
	m := &recordingMetrics{}
	l := New("fetch", Config{Limit: 1, Window: time.Minute, MaxKeys: 10}, WithClock(newMockClock(t0)), WithMetrics(m))

	for i := range 10 {
		l.Allow(fmt.Sprintf("k%d", i))
	}
	// Touch k0 so k1 becomes the oldest.
	l.Allow("k0")
	l.Allow("k10")

	assert.Equal(t, 10, l.store.Len())
	assert.Equal(t, 1, m.evicted)
	_, ok := l.store.Oldest("k1", t0.Add(-time.Minute))
	assert.False(t, ok)
	_, ok = l.store.Oldest("k0", t0.Add(-time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 12, m.allowed+m.denied)
}

func TestConfig_Defaults(t *testing.T) {
	l := New("x", Config{})
	assert.Equal(t, DefaultLimit, l.cfg.Limit)
	assert.Equal(t, DefaultWindow, l.cfg.Window)
	assert.Equal(t, DefaultMaxKeys, l.cfg.MaxKeys)
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{59*time.Second + time.Millisecond, 60},
	}
	for _, tt := range tests {
		d := &Decision{RetryAfter: tt.in}
		assert.Equal(t, tt.want, d.RetryAfterSeconds(), tt.in.String())
	}
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	l := New("fetch", Config{Limit: 1, Window: time.Minute}, WithClock(newMockClock(t0)), WithMetrics(m))

	l.Allow("a")
	l.Allow("a")
	l.Allow("a")
	l.Cleanup()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("fetch", "allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("fetch", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeKeys.WithLabelValues("fetch")))
}
