package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"astro-news/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())
	require.NotNil(t, cb)
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestDo(t *testing.T) {
	cb := New(testConfig())

	got, err := Do(cb, func() (string, error) { return "feed", nil })
	require.NoError(t, err)
	assert.Equal(t, "feed", got)

	testErr := errors.New("boom")
	n, err := Do(cb, func() (int, error) { return 0, testErr })
	assert.ErrorIs(t, err, testErr)
	assert.Zero(t, n)

	p, err := Do(cb, func() (*int, error) { return nil, testErr })
	assert.ErrorIs(t, err, testErr)
	assert.Nil(t, p)
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("test error")

	// 4 failures and 1 success stay under MinRequests on the last failure check.
	for i := 0; i < 4; i++ {
		_, err := Do(cb, func() (any, error) { return nil, testErr })
		assert.ErrorIs(t, err, testErr)
	}
	_, err := Do(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)

	_, err = Do(cb, func() (any, error) { return nil, testErr })
	assert.ErrorIs(t, err, testErr)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err = Do(cb, func() (string, error) {
		t.Error("function should not be called when circuit is open")
		return "", nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("test error")
	for i := 0; i < 6; i++ {
		_, _ = Do(cb, func() (any, error) { return nil, testErr })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)

	_, err := Do(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.NotEqual(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreaker_ExportsState(t *testing.T) {
	cfg := testConfig()
	cfg.Name = "metrics-test-circuit"
	cb := New(cfg)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(cfg.Name)))

	for i := 0; i < 5; i++ {
		_, _ = Do(cb, func() (any, error) { return nil, errors.New("down") })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(cfg.Name)))
}

func TestConfig_Tripped(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name   string
		counts gobreaker.Counts
		want   bool
	}{
		{name: "no requests", counts: gobreaker.Counts{}, want: false},
		{name: "below minimum", counts: gobreaker.Counts{Requests: 4, TotalFailures: 4}, want: false},
		{name: "at threshold", counts: gobreaker.Counts{Requests: 5, TotalFailures: 3}, want: true},
		{name: "under threshold", counts: gobreaker.Counts{Requests: 10, TotalFailures: 5}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.tripped(tt.counts))
		})
	}
}

func TestConfigs(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig("x"), FeedFetchConfig(), ArticleFetchConfig()} {
		assert.NotEmpty(t, cfg.Name)
		assert.Positive(t, cfg.MaxRequests)
		assert.Greater(t, cfg.FailureThreshold, 0.0)
		assert.LessOrEqual(t, cfg.FailureThreshold, 1.0)
	}
}
