package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/cache"
	"github.com/pagesift/pagesift/internal/console"
	"github.com/pagesift/pagesift/internal/creds"
	"github.com/pagesift/pagesift/internal/download"
	"github.com/pagesift/pagesift/internal/extract"
	"github.com/pagesift/pagesift/internal/scrape"
	"github.com/pagesift/pagesift/internal/sitemap"
)

var (
	extractAPI          string
	extractURL          string
	extractPrompt       string
	extractModel        string
	extractEngine       string
	extractSitemapDepth int
	extractDownloads    bool
	extractNoCache      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scrape a page and extract information with an AI model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cons := console.New()

		provider, err := resolveProvider(cons, extractAPI)
		if err != nil {
			return err
		}
		targetURL, err := resolveURL(cons, extractURL)
		if err != nil {
			return err
		}

		credPath, err := creds.DefaultPath()
		if err != nil {
			return err
		}
		key, err := resolveKey(cons, creds.NewStore(credPath), provider)
		if err != nil {
			return err
		}

		scraper, err := buildScraper()
		if err != nil {
			return err
		}

		zap.L().Info("scraping page",
			zap.String("provider", provider),
			zap.String("url", targetURL),
		)
		page, err := scrapePage(ctx, scraper, targetURL)
		if err != nil {
			return eris.Wrap(err, "scrape page")
		}
		zap.L().Info("scrape complete",
			zap.String("engine", page.Engine),
			zap.String("title", page.Title),
			zap.Int("content_chars", len(page.Markdown)),
		)

		p, err := extract.New(ctx, provider, cfg, key)
		if err != nil {
			return err
		}
		result, err := p.Extract(ctx, extract.Request{
			Prompt:  extractPrompt,
			Content: page.Markdown,
			Model:   extractModel,
		})
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		zap.L().Info("extraction complete",
			zap.String("provider", result.Provider),
			zap.String("model", result.Model),
			zap.Int64("input_tokens", result.Usage.InputTokens),
			zap.Int64("output_tokens", result.Usage.OutputTokens),
		)

		// The extraction itself is the program's output.
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)

		if extractSitemapDepth > 0 {
			crawler := sitemap.New(
				time.Duration(cfg.Crawl.TimeoutSecs)*time.Second,
				cfg.Crawl.RequestsPerSecond,
				cfg.Crawl.MaxPages,
			)
			urls, serr := crawler.Crawl(ctx, targetURL, extractSitemapDepth)
			if serr != nil {
				zap.L().Warn("sitemap generation failed", zap.Error(serr))
			} else if serr := sitemap.Save(urls, "sitemap.json"); serr != nil {
				zap.L().Warn("sitemap save failed", zap.Error(serr))
			} else {
				zap.L().Info("sitemap saved", zap.String("file", "sitemap.json"), zap.Int("urls", len(urls)))
			}
		}

		if extractDownloads {
			dl := download.New(time.Duration(cfg.Download.TimeoutSecs)*time.Second, cfg.Download.Concurrency)
			links, derr := dl.FindLinks(ctx, targetURL)
			if derr != nil {
				zap.L().Warn("download link scan failed", zap.Error(derr))
			} else if len(links) > 0 {
				stats, derr := dl.FetchAll(ctx, links, cfg.Download.Dir)
				if derr != nil {
					zap.L().Warn("downloads failed", zap.Error(derr))
				} else {
					zap.L().Info("downloads finished",
						zap.Int("succeeded", stats.Succeeded),
						zap.Int("failed", stats.Failed),
						zap.String("dir", cfg.Download.Dir),
					)
				}
			}
		}

		return nil
	},
}

// buildScraper assembles the scraper for the requested engine. The browser
// engine verifies the runtime dependency up front so a missing browser is a
// guided abort, not a mid-run crash.
func buildScraper() (scrape.Scraper, error) {
	engine := extractEngine
	if engine == "" {
		engine = cfg.Scrape.Engine
	}

	cleaner := scrape.NewCleaner()
	timeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second

	switch engine {
	case "browser":
		if _, ok := scrape.FindBrowser(cfg.Scrape.Browser); !ok {
			fmt.Fprintln(os.Stderr, scrape.RemediationMessage)
			return nil, scrape.ErrBrowserNotFound
		}
		return scrape.NewChain(
			scrape.NewBrowserScraper(cfg.Scrape.Browser, timeout, cleaner),
			scrape.NewHTTPScraper(timeout, cleaner),
		), nil
	case "http":
		return scrape.NewHTTPScraper(timeout, cleaner), nil
	default:
		return nil, eris.Errorf("unknown engine %q (valid: browser, http)", engine)
	}
}

// scrapePage consults the cache when enabled, scraping and storing on miss.
func scrapePage(ctx context.Context, scraper scrape.Scraper, targetURL string) (*scrape.Page, error) {
	if !cfg.Cache.Enabled || extractNoCache {
		return scraper.Scrape(ctx, targetURL)
	}

	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		zap.L().Warn("cache unavailable, scraping directly", zap.Error(err))
		return scraper.Scrape(ctx, targetURL)
	}
	defer func() { _ = c.Close() }()

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	if pruned, perr := c.Prune(ctx, ttl); perr != nil {
		zap.L().Warn("cache prune failed", zap.Error(perr))
	} else if pruned > 0 {
		zap.L().Debug("pruned expired cache entries", zap.Int64("count", pruned))
	}

	if page, hit, cerr := c.Get(ctx, targetURL, ttl); cerr == nil && hit {
		zap.L().Info("cache hit", zap.String("url", targetURL))
		return page, nil
	}

	page, err := scraper.Scrape(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if cerr := c.Put(ctx, page); cerr != nil {
		zap.L().Warn("cache store failed", zap.Error(cerr))
	}
	return page, nil
}

func init() {
	extractCmd.Flags().StringVar(&extractAPI, "api", "", "AI provider: gemini, groq, ollama, openai, or claude")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "URL to scrape")
	extractCmd.Flags().StringVar(&extractPrompt, "prompt", extract.DefaultPrompt, "extraction instruction for the AI")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model name (provider default when empty)")
	extractCmd.Flags().StringVar(&extractEngine, "engine", "", "scrape engine: browser or http (default from config)")
	extractCmd.Flags().IntVar(&extractSitemapDepth, "sitemap-depth", 0, "also crawl internal links to this depth and write sitemap.json")
	extractCmd.Flags().BoolVar(&extractDownloads, "downloads", false, "also download linked documents (pdf, office, images, archives)")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "bypass the page cache")
	rootCmd.AddCommand(extractCmd)
}
