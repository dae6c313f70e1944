package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"astro-news/internal/handler/http/respond"
	"astro-news/internal/usecase/pipeline"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Runner triggers Job on the cron schedule. A tick that arrives while the
// previous run is still going is skipped.
type Runner struct {
	cfg     Config
	job     Job
	metrics *Metrics
	health  *HealthServer
	logger  *slog.Logger
}

// NewRunner validates cfg and returns a Runner. health may be nil.
func NewRunner(cfg Config, job Job, metrics *Metrics, health *HealthServer, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, job: job, metrics: metrics, health: health, logger: logger}, nil
}

// Start schedules the job and blocks until ctx ends. It waits for a running
// job to finish before returning.
func (r *Runner) Start(ctx context.Context) error {
	loc, err := r.cfg.Location()
	if err != nil {
		return fmt.Errorf("worker timezone: %w", err)
	}

	cronLog := cron.PrintfLogger(slog.NewLogLogger(r.logger.Handler(), slog.LevelDebug))
	c := cron.New(cron.WithLocation(loc), cron.WithLogger(cronLog))

	// The start-up run and the scheduled ticks share one wrapped job so they
	// never overlap.
	job := cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)).
		Then(cron.FuncJob(func() { r.RunOnce(ctx) }))
	if _, err := c.AddJob(r.cfg.CronSchedule, job); err != nil {
		return fmt.Errorf("schedule %q: %w", r.cfg.CronSchedule, err)
	}

	c.Start()
	if r.health != nil {
		r.health.SetReady(true)
	}
	r.logger.Info("worker started",
		slog.String("schedule", r.cfg.CronSchedule),
		slog.String("timezone", loc.String()))

	var startup sync.WaitGroup
	if r.cfg.RunOnStart {
		startup.Go(job.Run)
	}

	<-ctx.Done()
	if r.health != nil {
		r.health.SetReady(false)
	}
	r.logger.Info("worker stopping, waiting for running job")
	<-c.Stop().Done()
	startup.Wait()
	return nil
}

// RunOnce executes the job with the configured timeout and records the outcome.
func (r *Runner) RunOnce(ctx context.Context) {
	start := time.Now()
	r.metrics.recordRun("started")
	r.logger.Info("scheduled run started")

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	report, err := r.job.Run(runCtx)
	elapsed := time.Since(start)
	r.metrics.RunDuration.Observe(elapsed.Seconds())

	status := RunStatus{StartedAt: start, FinishedAt: time.Now()}
	switch {
	case err != nil:
		status.Status = "failure"
		status.Error = respond.SanitizeError(err)
		r.logger.Error("scheduled run failed",
			slog.String("error", status.Error),
			slog.Duration("duration", elapsed))
	case report == nil || report.Fetched == 0:
		status.Status = "empty"
		r.logger.Warn("scheduled run found no articles", slog.Duration("duration", elapsed))
	default:
		status.Status = "success"
		status.Saved = report.Saved
		r.metrics.ArticlesSaved.Add(float64(report.Saved))
		r.metrics.LastSuccessUnixTime.SetToCurrentTime()
		r.logger.Info("scheduled run completed",
			slog.Int("fetched", report.Fetched),
			slog.Int("summarized", report.Summarized),
			slog.Int("failed", report.Failed),
			slog.Int("skipped", report.Skipped),
			slog.Int("saved", report.Saved),
			slog.Duration("duration", elapsed))
	}

	r.metrics.recordRun(status.Status)
	if r.health != nil {
		r.health.RecordRun(status)
	}
}
