package scrape

import (
	"context"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/config"
)

// ErrBrowserNotFound is returned when no Chrome/Chromium binary is
// available for the browser engine.
var ErrBrowserNotFound = eris.New("browser runtime not found")

// RemediationMessage tells the user how to get the browser engine working.
const RemediationMessage = `No Chrome or Chromium browser was found on this system.

The browser engine needs one to render pages. To fix this, either:

  - install Google Chrome or Chromium with your package manager, or
  - point pagesift at an existing binary via the PAGESIFT_SCRAPE_BROWSER_BIN
    environment variable (or scrape.browser.bin in config.yaml), or
  - re-run with --engine http to fetch without a browser (no JavaScript).

Then re-run this tool.`

// FindBrowser locates the browser binary. An explicit bin setting wins;
// otherwise known install locations are searched.
func FindBrowser(cfg config.BrowserConfig) (string, bool) {
	if cfg.Bin != "" {
		if _, err := os.Stat(cfg.Bin); err == nil {
			return cfg.Bin, true
		}
		return "", false
	}
	return launcher.LookPath()
}

// BrowserScraper renders pages in a headless browser, so JavaScript-heavy
// sites produce real content.
type BrowserScraper struct {
	cfg     config.BrowserConfig
	timeout time.Duration
	cleaner *Cleaner
}

// NewBrowserScraper creates a BrowserScraper. The browser process is
// launched per scrape and torn down afterwards; a one-shot CLI has no pool
// to amortize it over.
func NewBrowserScraper(cfg config.BrowserConfig, timeout time.Duration, cleaner *Cleaner) *BrowserScraper {
	return &BrowserScraper{cfg: cfg, timeout: timeout, cleaner: cleaner}
}

func (s *BrowserScraper) Name() string { return "browser" }

// Scrape launches the browser, navigates to the URL, waits for the page to
// load, and cleans the HTML to markdown.
func (s *BrowserScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	bin, ok := FindBrowser(s.cfg)
	if !ok {
		return nil, ErrBrowserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	l := launcher.New().
		Bin(bin).
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch")
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			zap.L().Debug("browser: close failed", zap.Error(cerr))
		}
	}()

	// Stealth must be injected before navigation to take effect.
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, eris.Wrap(err, "browser: create page")
	}
	page = page.Context(ctx)

	if err := page.Navigate(targetURL); err != nil {
		return nil, eris.Wrap(err, "browser: navigate")
	}
	if err := page.WaitLoad(); err != nil {
		return nil, eris.Wrap(err, "browser: wait for load")
	}

	html, err := page.HTML()
	if err != nil {
		return nil, eris.Wrap(err, "browser: read page html")
	}

	var pageTitle string
	if info, ierr := page.Info(); ierr == nil {
		pageTitle = info.Title
	}

	title, markdown, err := s.cleaner.Clean(html, targetURL)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = pageTitle
	}

	return &Page{
		URL:      targetURL,
		Title:    title,
		Markdown: markdown,
		Engine:   s.Name(),
	}, nil
}
