// Package worker runs the fetch and summarize pipeline on a cron schedule and
// serves liveness, readiness and metrics endpoints while it does.
package worker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"astro-news/internal/config"
	pkgconfig "astro-news/pkg/config"
)

// Config holds the scheduling settings.
type Config struct {
	// CronSchedule is a standard 5-field expression or a descriptor such as "@every 6h".
	CronSchedule string
	// Timezone is an IANA name used to interpret CronSchedule.
	Timezone string
	// RunTimeout bounds a single pipeline run.
	RunTimeout time.Duration
	// HealthAddr is where the health and metrics server listens.
	HealthAddr string
	// RunOnStart triggers one run immediately instead of waiting for the first tick.
	RunOnStart bool
}

// DefaultConfig matches the application defaults.
func DefaultConfig() Config {
	return ConfigFromApp(config.Default())
}

// ConfigFromApp extracts the worker settings from the application config.
func ConfigFromApp(app *config.AppConfig) Config {
	return Config{
		CronSchedule: app.CronSchedule,
		Timezone:     app.Timezone,
		RunTimeout:   app.RunTimeout,
		HealthAddr:   app.WorkerHealthAddr,
		RunOnStart:   app.RunOnStart,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidateDurationRange(c.RunTimeout, time.Minute, 6*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if strings.TrimSpace(c.HealthAddr) == "" {
		errs = append(errs, errors.New("health addr: cannot be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("worker config: %w", errors.Join(errs...))
	}
	return nil
}

// Location loads Timezone, falling back to UTC for an empty name.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
