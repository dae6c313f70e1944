package main

import (
	"fmt"

	"astro-news/internal/config"
	"astro-news/internal/infra/adapter/persistence/jsonfile"
	"astro-news/internal/usecase/pipeline"

	"github.com/spf13/cobra"
)

func fetchCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch articles from the configured feeds and save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, func(c *config.AppConfig) {
				if out != "" {
					c.ArticlesFile = out
				}
			})
			if err != nil {
				return err
			}
			defer a.close()

			p := &pipeline.Pipeline{
				Feeds:    a.cfg.Feeds,
				Fetcher:  a.fetchService(),
				Articles: jsonfile.NewStore(a.cfg.ArticlesFile),
				Logger:   a.logger,
			}
			articles, stats, err := p.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(articles) == 0 {
				fmt.Fprintln(w, "No articles found.")
				return nil
			}
			fmt.Fprintf(w, "Fetched %d articles from %d feeds (%d feed errors, %d entry errors) in %s\n",
				len(articles), stats.Feeds, stats.FeedErrors, stats.EntryErrors, stats.Duration.Round(msRound))
			fmt.Fprintf(w, "Saved to %s\n", a.cfg.ArticlesFile)
			printArticles(w, articles, false)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "articles file (default ARTICLES_FILE)")
	return cmd
}
