package main

import (
	"fmt"
	"strings"

	"astro-news/internal/config"
	"astro-news/internal/infra/adapter/persistence/jsonfile"

	"github.com/spf13/cobra"
)

func summarizeCmd(opts *rootOptions) *cobra.Command {
	var in, out, backend, rss string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize saved articles, fetching first when none are saved",
		Long: "Summarizes the articles in --in. When that file is missing or empty the feeds are fetched first.\n" +
			"Successful summaries are written to --out with a plain-text digest next to it.\n" +
			"Backends: " + strings.Join(config.Backends, ", ") + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, func(c *config.AppConfig) {
				if in != "" {
					c.ArticlesFile = in
				}
				if out != "" {
					c.SummariesFile = out
				}
				if backend != "" {
					c.Summarizer.Type = strings.ToLower(backend)
				}
				if rss != "" {
					c.RSSFile = rss
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

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			articles, err := jsonfile.NewStore(a.cfg.ArticlesFile).Load(ctx)
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Fprintf(w, "No saved articles in %s, fetching...\n", a.cfg.ArticlesFile)
				if articles, _, err = p.Fetch(ctx); err != nil {
					return err
				}
			}
			if len(articles) == 0 {
				fmt.Fprintln(w, "No articles found.")
				return nil
			}

			fmt.Fprintf(w, "Summarizing %d articles with the %s backend...\n", len(articles), a.cfg.Summarizer.Type)
			report, err := p.Summarize(ctx, articles)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Summarized %d, failed %d, skipped %d in %s\n",
				report.Summarized, report.Failed, report.Skipped, report.Duration.Round(msRound))
			if report.Saved == 0 {
				fmt.Fprintf(w, "No successful summaries; %s left unchanged.\n", a.cfg.SummariesFile)
				return nil
			}
			fmt.Fprintf(w, "Saved %d summaries to %s (digest %s)\n", report.Saved, a.cfg.SummariesFile, report.DigestPath)
			if report.RSSPath != "" {
				fmt.Fprintf(w, "RSS written to %s\n", report.RSSPath)
			}

			saved, err := jsonfile.NewStore(a.cfg.SummariesFile).Load(ctx)
			if err != nil {
				return err
			}
			printArticles(w, saved, true)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "articles file to summarize (default ARTICLES_FILE)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "summaries file (default SUMMARIES_FILE)")
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "summarizer backend (default SUMMARIZER_TYPE)")
	cmd.Flags().StringVar(&rss, "rss", "", "also write an RSS feed of the summaries to this file")
	return cmd
}
