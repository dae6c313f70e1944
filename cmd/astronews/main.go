// Command astronews fetches astronomy news, summarizes it and serves the
// results in a small web UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"astro-news/internal/infra/summarizer"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "astronews",
		Short:         "Astronomy news fetcher and summarizer",
		Long:          "Fetches astronomy articles from RSS feeds, summarizes them with a hosted or local model, and serves the results.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override LOG_FORMAT (json, text)")

	root.AddCommand(
		fetchCmd(opts),
		summarizeCmd(opts),
		serveCmd(opts),
		workerCmd(opts),
		feedsCmd(opts),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("command failed", slog.Any("error", err))
		if errors.Is(err, summarizer.ErrMissingCredential) {
			fmt.Fprintln(os.Stderr, "set the API key for the selected backend, or choose another with --backend / SUMMARIZER_TYPE")
		}
		os.Exit(1)
	}
}
