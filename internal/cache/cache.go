// Package cache persists scraped pages in a local SQLite database so
// repeated runs against the same URL skip the network.
package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pagesift/pagesift/internal/scrape"
)

// Cache is a TTL page cache backed by SQLite.
type Cache struct {
	db *sql.DB
}

const migration = `
CREATE TABLE IF NOT EXISTS pages (
	url         TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	markdown    TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	engine      TEXT NOT NULL DEFAULT '',
	fetched_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, eris.Wrap(err, "cache: create dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached page for url when it is younger than ttl.
func (c *Cache) Get(ctx context.Context, url string, ttl time.Duration) (*scrape.Page, bool, error) {
	if ttl <= 0 {
		return nil, false, nil
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT title, markdown, status_code, engine, fetched_at FROM pages WHERE url = ?`, url)

	var page scrape.Page
	var fetchedAt time.Time
	page.URL = url
	if err := row.Scan(&page.Title, &page.Markdown, &page.StatusCode, &page.Engine, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "cache: get")
	}

	if time.Since(fetchedAt) > ttl {
		return nil, false, nil
	}
	return &page, true, nil
}

// Put stores or refreshes the page.
func (c *Cache) Put(ctx context.Context, page *scrape.Page) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pages (url, title, markdown, status_code, engine, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			markdown = excluded.markdown,
			status_code = excluded.status_code,
			engine = excluded.engine,
			fetched_at = excluded.fetched_at`,
		page.URL, page.Title, page.Markdown, page.StatusCode, page.Engine, time.Now().UTC())
	return eris.Wrap(err, "cache: put")
}

// Prune deletes entries older than ttl.
func (c *Cache) Prune(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM pages WHERE fetched_at < ?`, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, eris.Wrap(err, "cache: prune")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
