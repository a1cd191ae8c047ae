// Package sitemap crawls a site's internal links to a bounded depth and
// produces a sorted URL list.
package sitemap

import (
	"context"
	"encoding/json"
	"net/http"
	nurl "net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxConcurrent bounds in-flight fetches per crawl level.
const maxConcurrent = 8

// Crawler walks internal links breadth-first.
type Crawler struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxPages int
}

// New creates a Crawler. rps throttles requests site-wide; maxPages caps the
// total number of fetched pages regardless of depth.
func New(timeout time.Duration, rps float64, maxPages int) *Crawler {
	return &Crawler{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		maxPages: maxPages,
	}
}

// Crawl returns the sorted set of same-host URLs reachable from startURL
// within maxDepth link hops. Depth 0 is just the start page. Fetch failures
// on individual pages are logged and skipped; only an unusable start URL is
// an error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxDepth int) ([]string, error) {
	start, err := nurl.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, eris.Errorf("sitemap: invalid start url %q", startURL)
	}

	var (
		mu      sync.Mutex
		visited = map[string]bool{}
	)
	frontier := []string{normalize(start)}
	visited[frontier[0]] = true

	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		var (
			nextMu sync.Mutex
			next   []string
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrent)

		for _, pageURL := range frontier {
			// The last level is collected, not expanded.
			if depth == maxDepth {
				break
			}
			g.Go(func() error {
				links, ferr := c.fetchLinks(gctx, pageURL, start.Host)
				if ferr != nil {
					zap.L().Debug("sitemap: page skipped",
						zap.String("url", pageURL), zap.Error(ferr))
					return nil
				}
				for _, link := range links {
					mu.Lock()
					seen := visited[link]
					full := len(visited) >= c.maxPages
					if !seen && !full {
						visited[link] = true
					}
					mu.Unlock()
					if !seen && !full {
						nextMu.Lock()
						next = append(next, link)
						nextMu.Unlock()
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "sitemap: crawl")
		}
		frontier = next
	}

	urls := make([]string, 0, len(visited))
	for u := range visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	zap.L().Info("sitemap: crawl complete",
		zap.String("start", startURL),
		zap.Int("depth", maxDepth),
		zap.Int("urls", len(urls)),
	)
	return urls, nil
}

// fetchLinks fetches one HTML page and returns its normalized same-host
// links.
func (c *Crawler) fetchLinks(ctx context.Context, pageURL, host string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pagesift/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, eris.Errorf("not html: %s", ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "parse html")
	}

	base, err := nurl.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "parse page url")
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs, perr := base.Parse(href)
		if perr != nil {
			return
		}
		if abs.Host != host || (abs.Scheme != "http" && abs.Scheme != "https") {
			return
		}
		links = append(links, normalize(abs))
	})
	return links, nil
}

// normalize strips query and fragment so the same document is not visited
// once per tracking parameter.
func normalize(u *nurl.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// Save writes the URL list to path as an indented JSON array.
func Save(urls []string, path string) error {
	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return eris.Wrap(err, "sitemap: marshal")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrap(err, "sitemap: write file")
	}
	return nil
}
