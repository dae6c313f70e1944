package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order when decoding. The last two accept
// ISO-8601 values without a zone offset, which older article files contain.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is an ISO-8601 instant that tolerates zone-less input.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t. The wall clock is truncated to microseconds to keep
// the serialized form stable across round trips.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.Truncate(time.Microsecond)}
}

// Now returns the current instant as a Timestamp.
func Now() *Timestamp {
	return NewTimestamp(time.Now())
}

// MarshalJSON encodes the instant as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 and zone-less ISO-8601 strings.
// null and "" leave the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return &ValidationError{Field: "timestamp", Message: fmt.Sprintf("unrecognized time %q", raw)}
}

func (t *Timestamp) clone() *Timestamp {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
