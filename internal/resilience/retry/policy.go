package retry

import (
	"context"
	"log/slog"
	"time"
)

// Outcome classifies the result of a single attempt.
type Outcome int

const (
	// OutcomeSuccess is a success status with usable output.
	OutcomeSuccess Outcome = iota
	// OutcomeEmpty is a success status whose body carried no usable output.
	OutcomeEmpty
	// OutcomeRateLimited is HTTP 429.
	OutcomeRateLimited
	// OutcomeBusy is HTTP 503.
	OutcomeBusy
	// OutcomeFailed is any other non-success status.
	OutcomeFailed
	// OutcomeTransport is a timeout or connection failure.
	OutcomeTransport
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeBusy:
		return "busy"
	case OutcomeFailed:
		return "failed"
	case OutcomeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// State is a node of the retry state machine.
type State int

const (
	StateAttempting State = iota
	StateBackoffShort
	StateBackoffRateLimited
	StateBackoffBusy
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateBackoffShort:
		return "backoff_short"
	case StateBackoffRateLimited:
		return "backoff_rate_limited"
	case StateBackoffBusy:
		return "backoff_busy"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further attempt follows s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

// Policy is an outcome-driven retry loop. Every backoff state waits for its
// own delay and then returns to StateAttempting; the short delay is never
// stacked on top of the rate-limit or busy delay, and nothing is waited after
// the final attempt.
type Policy struct {
	MaxAttempts    int
	ShortDelay     time.Duration
	RateLimitDelay time.Duration
	BusyDelay      time.Duration

	// Sleep waits between attempts. Nil uses the package Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the hosted-backend policy: 3 attempts, 2s after soft
// failures, 10s after 429 and 5s after 503.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		ShortDelay:     2 * time.Second,
		RateLimitDelay: 10 * time.Second,
		BusyDelay:      5 * time.Second,
	}
}

// Transition returns the state entered after attempt (1-based) finished with
// outcome, and how long that state waits before the next attempt.
func (p Policy) Transition(attempt int, outcome Outcome) (State, time.Duration) {
	if outcome == OutcomeSuccess {
		return StateSucceeded, 0
	}
	if attempt >= p.MaxAttempts {
		return StateExhausted, 0
	}
	switch outcome {
	case OutcomeRateLimited:
		return StateBackoffRateLimited, p.RateLimitDelay
	case OutcomeBusy:
		return StateBackoffBusy, p.BusyDelay
	default:
		return StateBackoffShort, p.ShortDelay
	}
}

// Result summarizes a finished Run.
type Result struct {
	State    State
	Attempts int
	Last     Outcome
	Waited   time.Duration
}

// Run calls fn until it reports OutcomeSuccess or the attempts are used up.
// The returned error is non-nil only when ctx ends during a wait or before an
// attempt.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context, attempt int) Outcome) (Result, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	res := Result{State: StateAttempting}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempts = attempt
		res.Last = fn(ctx, attempt)

		next, wait := p.Transition(attempt, res.Last)
		res.State = next
		if next.Terminal() {
			return res, nil
		}

		slog.Warn("attempt failed, backing off",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.MaxAttempts),
			slog.String("outcome", res.Last.String()),
			slog.String("state", next.String()),
			slog.Duration("delay", wait))

		if err := sleep(ctx, wait); err != nil {
			return res, err
		}
		res.Waited += wait
		res.State = StateAttempting
	}
}
