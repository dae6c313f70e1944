// Package circuitbreaker wraps github.com/sony/gobreaker so repeated failures
// against one upstream stop costing a full timeout per call.
package circuitbreaker

import (
	"log/slog"
	"time"

	"astro-news/internal/observability/metrics"

	"github.com/sony/gobreaker"
)

// Config sets when a breaker opens and how it recovers.
type Config struct {
	Name string
	// MaxRequests may pass while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts.
	Interval time.Duration
	// Timeout is the time spent open before probing.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker, once at
	// least MinRequests have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig opens at 60% failures over at least five requests.
func DefaultConfig(name string) Config {
	return Config{Name: name, MaxRequests: 3, Interval: 30 * time.Second, Timeout: time.Minute, FailureThreshold: 0.6, MinRequests: 5}
}

// FeedFetchConfig guards the RSS downloads of one feed host.
func FeedFetchConfig() Config {
	return Config{Name: "feed-fetch", MaxRequests: 2, Interval: time.Minute, Timeout: 2 * time.Minute, FailureThreshold: 0.7, MinRequests: 4}
}

// ArticleFetchConfig guards article page downloads from one host. Article
// pages fail more often than feeds.
func ArticleFetchConfig() Config {
	return Config{Name: "article-fetch", MaxRequests: 3, Interval: time.Minute, Timeout: 5 * time.Minute, FailureThreshold: 0.8, MinRequests: 5}
}

// tripped reports whether counts exceed the configured failure ratio.
func (c Config) tripped(counts gobreaker.Counts) bool {
	if counts.Requests == 0 || counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
}

// stateLevel maps a state onto the astro_circuit_breaker_state gauge.
func stateLevel(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// CircuitBreaker is a named gobreaker whose transitions are logged and
// exported as metrics.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(cfg Config) *CircuitBreaker {
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.tripped,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordCircuitState(name, to.String(), stateLevel(to))
		},
	})}
}

// Do runs fn through cb. While open it returns gobreaker.ErrOpenState
// without calling fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.cb.Execute(func() (any, error) { return fn() })
	v, _ := out.(T)
	return v, err
}

func (cb *CircuitBreaker) Name() string           { return cb.cb.Name() }
func (cb *CircuitBreaker) State() gobreaker.State { return cb.cb.State() }
