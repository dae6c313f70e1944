package ratelimit

import (
	"fmt"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Key       string
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is zero for allowed requests.
	RetryAfter time.Duration
}

func (d *Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("Decision{Allowed: true, Key: %s, Remaining: %d/%d}", d.Key, d.Remaining, d.Limit)
	}
	return fmt.Sprintf("Decision{Allowed: false, Key: %s, Limit: %d, RetryAfter: %s}", d.Key, d.Limit, d.RetryAfter)
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, for Retry-After
// headers and user messages.
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int64(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}
