package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/console"
	"github.com/pagesift/pagesift/internal/download"
)

var (
	downloadURL string
	downloadDir string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download documents linked from a page",
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL, err := resolveURL(console.New(), downloadURL)
		if err != nil {
			return err
		}

		dir := downloadDir
		if dir == "" {
			dir = cfg.Download.Dir
		}

		dl := download.New(
			time.Duration(cfg.Download.TimeoutSecs)*time.Second,
			cfg.Download.Concurrency,
		)
		links, err := dl.FindLinks(cmd.Context(), pageURL)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			zap.L().Info("no downloadable links found", zap.String("url", pageURL))
			return nil
		}

		stats, err := dl.FetchAll(cmd.Context(), links, dir)
		if err != nil {
			return err
		}
		zap.L().Info("downloads finished",
			zap.Int("succeeded", stats.Succeeded),
			zap.Int("failed", stats.Failed),
			zap.String("dir", dir),
		)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadURL, "url", "", "page to scan for downloadable links")
	downloadCmd.Flags().StringVar(&downloadDir, "out-dir", "", "destination directory (default from config)")
	rootCmd.AddCommand(downloadCmd)
}
