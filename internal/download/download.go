// Package download finds document links on a page and fetches them.
package download

import (
	"context"
	"io"
	"mime"
	"net/http"
	nurl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// targetExtensions is the set of link extensions treated as downloadable
// documents.
var targetExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".zip": true, ".rar": true,
}

// Downloader scans pages for document links and fetches them.
type Downloader struct {
	client      *http.Client
	concurrency int
}

// New creates a Downloader.
func New(timeout time.Duration, concurrency int) *Downloader {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Downloader{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
	}
}

// FindLinks fetches pageURL and returns the absolute http(s) URLs of linked
// documents.
func (d *Downloader) FindLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "download: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pagesift/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "download: fetch page")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("download: page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "download: parse page")
	}

	base, err := nurl.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "download: parse page url")
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs, perr := base.Parse(href)
		if perr != nil {
			return
		}
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !targetExtensions[strings.ToLower(path.Ext(abs.Path))] {
			return
		}
		u := abs.String()
		if !seen[u] {
			seen[u] = true
			links = append(links, u)
		}
	})
	return links, nil
}

// Stats summarizes a batch of downloads.
type Stats struct {
	Succeeded int
	Failed    int
}

// FetchAll downloads all URLs into dir with bounded concurrency. Individual
// failures are logged and counted, not fatal.
func (d *Downloader) FetchAll(ctx context.Context, urls []string, dir string) (Stats, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stats{}, eris.Wrap(err, "download: create dir")
	}

	results := make([]bool, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			name, err := d.fetchOne(gctx, u, dir)
			if err != nil {
				zap.L().Warn("download: failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			zap.L().Info("download: saved", zap.String("url", u), zap.String("file", name))
			results[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, eris.Wrap(err, "download: fetch all")
	}

	var stats Stats
	for _, ok := range results {
		if ok {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

// fetchOne downloads a single file and returns the saved filename.
func (d *Downloader) fetchOne(ctx context.Context, fileURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "create request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("status %d", resp.StatusCode)
	}

	name := filename(fileURL, resp.Header.Get("Content-Disposition"))
	dest := filepath.Join(dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "create file")
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(dest)
		return "", eris.Wrap(err, "write file")
	}
	return name, nil
}

// filename picks a safe local name: Content-Disposition first, then the URL
// path, then a generated name keeping the extension.
func filename(fileURL, contentDisposition string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := sanitize(params["filename"]); name != "" {
				return name
			}
		}
	}

	if u, err := nurl.Parse(fileURL); err == nil {
		if name := sanitize(path.Base(u.Path)); name != "" && name != "." && name != "/" {
			return name
		}
		return "download_" + uuid.NewString()[:8] + path.Ext(u.Path)
	}
	return "download_" + uuid.NewString()[:8]
}

// sanitize strips path separators so a hostile header cannot escape dir.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return strings.Trim(name, ". ")
}
