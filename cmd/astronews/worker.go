package main

import (
	"context"
	"log/slog"

	"astro-news/internal/config"
	"astro-news/internal/infra/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func workerCmd(opts *rootOptions) *cobra.Command {
	var schedule string
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Fetch, summarize and save on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, func(c *config.AppConfig) {
				if schedule != "" {
					c.CronSchedule = schedule
				}
				if cmd.Flags().Changed("run-on-start") {
					c.RunOnStart = runOnStart
				}
			})
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.pipeline(a.cfg.ArticlesFile, a.cfg.SummariesFile, a.cfg.RSSFile)
			if err != nil {
				return err
			}

			health := worker.NewHealthServer(a.cfg.WorkerHealthAddr, a.logger)
			runner, err := worker.NewRunner(
				worker.ConfigFromApp(a.cfg),
				p,
				worker.NewMetrics(prometheus.DefaultRegisterer),
				health,
				a.logger,
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := health.Start(ctx); err != nil {
					a.logger.Error("health server exited", slog.Any("error", err))
					cancel()
				}
			}()

			return runner.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression (default CRON_SCHEDULE)")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run once immediately after starting")
	return cmd
}
