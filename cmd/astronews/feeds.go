package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"astro-news/internal/config"
	"astro-news/internal/domain/entity"
	"astro-news/internal/infra/scraper"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func feedsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	var repairOut string
	var timeout, pause time.Duration
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Check that every configured feed is reachable and parses",
		Long: "Requests each configured feed once and reports its status, item count and latest entry.\n" +
			"With --repair-out a feeds file is written that keeps the healthy feeds and follows redirects.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			d := scraper.NewDiagnoser(&http.Client{}, a.cfg.UserAgent, timeout)
			diags := d.DiagnoseAll(cmd.Context(), a.cfg.Feeds, pause, func(i int, f entity.Feed) {
				a.logger.Info("diagnosing feed",
					slog.Int("index", i+1),
					slog.Int("total", len(a.cfg.Feeds)),
					slog.String("feed", f.DisplayName()))
			})

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(diags); err != nil {
					return err
				}
			} else {
				printDiagnoses(w, diags)
			}

			if repairOut != "" {
				repaired := scraper.RepairedFeeds(a.cfg.Feeds, diags)
				if len(repaired) == 0 {
					return fmt.Errorf("no healthy feeds, %s not written", repairOut)
				}
				if err := config.SaveFeedsFile(repairOut, repaired); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d feeds to %s\n", len(repaired), repairOut)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&repairOut, "repair-out", "", "write healthy feeds, with redirects followed, to this YAML file")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-feed request timeout")
	cmd.Flags().DurationVar(&pause, "pause", 500*time.Millisecond, "pause between feeds")
	return cmd
}

func printDiagnoses(w io.Writer, diags []scraper.Diagnosis) {
	healthy := 0
	for _, d := range diags {
		if d.Healthy() {
			healthy++
		}
	}
	fmt.Fprintf(w, "Feeds: %d working, %d broken\n\n", healthy, len(diags)-healthy)

	for _, d := range diags {
		mark := "ok  "
		if !d.Healthy() {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %s\n", mark, runewidth.Truncate(d.Name, titleColumns, "..."))
		fmt.Fprintf(w, "       %s\n", d.URL)
		fmt.Fprintf(w, "       %s | HTTP %d | %dms", d.Status, d.HTTPCode, d.ResponseTimeMS)
		if d.Healthy() {
			fmt.Fprintf(w, " | %s, %d items, latest %s", d.FeedType, d.ItemCount, orUnknown(d.Latest))
		}
		fmt.Fprintln(w)
		if d.RedirectURL != "" {
			fmt.Fprintf(w, "       redirected to %s\n", d.RedirectURL)
		}
		if d.Error != "" {
			fmt.Fprintf(w, "       %s\n", d.Error)
		}
	}
}
