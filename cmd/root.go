package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pagesift",
	Short: "Scrape a web page and extract information with an AI model",
	Long:  "Fetches a web page with a headless browser, cleans it to markdown, sends it to an AI provider (Gemini, Groq, Ollama, OpenAI, or Claude), and prints the extracted answer.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
