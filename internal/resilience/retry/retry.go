// Package retry provides bounded retry loops for transient failures.
//
// WithBackoff is a plain attempt loop keyed on error retryability. Policy is a
// small state machine keyed on the classified outcome of each attempt, with a
// distinct wait per outcome class.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config drives WithBackoff. The wait before retry n (1-based) is
// InitialDelay * Multiplier^(n-1), capped at MaxDelay, plus up to
// JitterFraction of itself at random.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultConfig is three attempts doubling from one second.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// FeedFetchConfig retries feed downloads at a fixed one second interval.
func FeedFetchConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1, JitterFraction: 0.1}
}

// ArticleFetchConfig allows a single retry of an article page.
func ArticleFetchConfig() Config {
	return Config{MaxAttempts: 2, InitialDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// delay returns the wait before retry n, jitter included.
func (c Config) delay(n int) time.Duration {
	mult := c.Multiplier
	if mult <= 0 {
		mult = 1
	}
	d := time.Duration(float64(c.InitialDelay) * math.Pow(mult, float64(n-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return addJitter(d, c.JitterFraction)
}

// WithBackoff calls fn until it succeeds, fails with an error IsRetryable
// rejects, or MaxAttempts calls have been made. No wait follows the last
// attempt. Exhaustion wraps the last error.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var err error
	for n := 1; ; n++ {
		if err = fn(); err == nil {
			if n > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", n))
			}
			return nil
		}
		if !IsRetryable(err) {
			slog.Debug("non-retryable error", slog.Int("attempt", n), slog.Any("error", err))
			return err
		}
		if n == attempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		wait := cfg.delay(n)
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", n),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))
		if serr := Sleep(ctx, wait); serr != nil {
			return fmt.Errorf("retry aborted: %w", serr)
		}
	}
}

// Sleep waits for d or until ctx is done. A non-positive d only reports
// ctx.Err().
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transientErrnos are connection failures worth another try.
var transientErrnos = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ETIMEDOUT,
	syscall.ENETUNREACH,
}

// IsRetryable reports whether err looks transient: network timeouts,
// refused or reset connections, and HTTPErrors with a temporary status.
// Context cancellation never is.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// HTTPError carries a non-success response status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the status may clear on its own: 5xx, 408, 429.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600 ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests
}

// addJitter adds up to frac*d at random. frac is clamped to [0, 1].
func addJitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 || d <= 0 {
		return d
	}
	frac = min(frac, 1)
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*frac*float64(d))
}
