// Package config provides environment variable accessors and value validators
// shared by the application and worker configuration.
//
// Getters never fail: an unset variable yields the default, and an unparsable
// one yields the default plus a warning log line.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the variable's value, or defaultValue when unset or empty.
func GetEnvString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt parses the variable as a base-10 integer.
//
// Example:
//
//	limit := GetEnvInt("FEED_ENTRY_LIMIT", 2)
func GetEnvInt(key string, defaultValue int) int {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		warnFallback(key, raw, strconv.Itoa(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvFloat parses the variable as a 64-bit float.
func GetEnvFloat(key string, defaultValue float64) float64 {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		warnFallback(key, raw, strconv.FormatFloat(defaultValue, 'g', -1, 64), err)
		return defaultValue
	}
	return value
}

// GetEnvBool parses the variable with strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		warnFallback(key, raw, strconv.FormatBool(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvDuration parses the variable with time.ParseDuration ("10s", "2m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		warnFallback(key, raw, defaultValue.String(), err)
		return defaultValue
	}
	return value
}

// GetEnvStringList splits a comma-separated variable, trimming each element
// and dropping empty ones.
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func warnFallback(key, value, fallback string, err error) {
	slog.Warn("invalid environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", fallback),
		slog.String("error", err.Error()))
}
