package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/console"
	"github.com/pagesift/pagesift/internal/sitemap"
)

var (
	sitemapURL   string
	sitemapDepth int
	sitemapOut   string
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Crawl a site's internal links and write them to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		startURL, err := resolveURL(console.New(), sitemapURL)
		if err != nil {
			return err
		}

		crawler := sitemap.New(
			time.Duration(cfg.Crawl.TimeoutSecs)*time.Second,
			cfg.Crawl.RequestsPerSecond,
			cfg.Crawl.MaxPages,
		)
		urls, err := crawler.Crawl(cmd.Context(), startURL, sitemapDepth)
		if err != nil {
			return err
		}
		if err := sitemap.Save(urls, sitemapOut); err != nil {
			return err
		}

		zap.L().Info("sitemap saved",
			zap.String("file", sitemapOut),
			zap.Int("urls", len(urls)),
		)
		return nil
	},
}

func init() {
	sitemapCmd.Flags().StringVar(&sitemapURL, "url", "", "starting URL")
	sitemapCmd.Flags().IntVar(&sitemapDepth, "depth", 1, "maximum crawl depth")
	sitemapCmd.Flags().StringVar(&sitemapOut, "out", "sitemap.json", "output file")
	rootCmd.AddCommand(sitemapCmd)
}
