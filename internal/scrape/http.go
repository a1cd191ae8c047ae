package scrape

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// maxBodyBytes caps how much of a page is read. Beyond this the content is
// useless for a single LLM prompt anyway.
const maxBodyBytes = 2 * 1024 * 1024

// HTTPScraper fetches HTML via net/http. No JavaScript execution; pages
// behind anti-bot walls or client-side rendering need the browser engine.
type HTTPScraper struct {
	client  *http.Client
	cleaner *Cleaner
}

// NewHTTPScraper creates an HTTPScraper with the given total timeout.
func NewHTTPScraper(timeout time.Duration, cleaner *Cleaner) *HTTPScraper {
	return &HTTPScraper{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		cleaner: cleaner,
	}
}

func (s *HTTPScraper) Name() string { return "http" }

// Scrape fetches a URL, detects blocks, and cleans the HTML to markdown.
func (s *HTTPScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pagesift/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("http: blocked (%s)", blockType)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("http: status %d", resp.StatusCode)
	}

	html, err := decodeCharset(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	title, markdown, err := s.cleaner.Clean(html, targetURL)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = htmlTitle(html)
	}

	return &Page{
		URL:        targetURL,
		Title:      title,
		Markdown:   markdown,
		StatusCode: resp.StatusCode,
		Engine:     s.Name(),
	}, nil
}

// decodeCharset converts a response body to UTF-8 based on the Content-Type
// charset parameter. UTF-8 and unknown charsets pass through unchanged.
func decodeCharset(body []byte, contentType string) (string, error) {
	if contentType == "" {
		return string(body), nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body), nil
	}
	name := strings.ToLower(params["charset"])
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(body), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		// Unknown label; better the raw bytes than a hard failure.
		return string(body), nil
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", eris.Wrap(err, "http: decode charset "+name)
	}
	return string(decoded), nil
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// htmlTitle pulls the <title> from HTML.
func htmlTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
