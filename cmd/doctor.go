package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/internal/creds"
	"github.com/pagesift/pagesift/internal/extract"
	"github.com/pagesift/pagesift/internal/scrape"
	"github.com/pagesift/pagesift/pkg/ollama"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check runtime dependencies and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		healthy := true

		if bin, ok := scrape.FindBrowser(cfg.Scrape.Browser); ok {
			fmt.Fprintf(out, "browser:   ok (%s)\n", bin)
		} else {
			healthy = false
			fmt.Fprintln(out, "browser:   missing")
			fmt.Fprintln(os.Stderr, scrape.RemediationMessage)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		oc := ollama.NewClient(ollama.WithBaseURL(cfg.Ollama.BaseURL))
		if err := oc.Ping(ctx); err != nil {
			fmt.Fprintf(out, "ollama:    unreachable at %s\n", cfg.Ollama.BaseURL)
		} else {
			fmt.Fprintf(out, "ollama:    ok (%s)\n", cfg.Ollama.BaseURL)
		}

		path, err := creds.DefaultPath()
		if err != nil {
			return err
		}
		store := creds.NewStore(path)
		for _, p := range extract.Providers {
			if !extract.NeedsKey(p) {
				continue
			}
			if os.Getenv(creds.EnvKey(p)) != "" {
				fmt.Fprintf(out, "%-10s key from %s\n", p+":", creds.EnvKey(p))
				continue
			}
			if _, ok, gerr := store.Get(p); gerr == nil && ok {
				fmt.Fprintf(out, "%-10s key stored\n", p+":")
			} else {
				fmt.Fprintf(out, "%-10s no key\n", p+":")
			}
		}

		if !healthy {
			return scrape.ErrBrowserNotFound
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
