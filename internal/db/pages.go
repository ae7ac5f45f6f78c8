package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageCacheTTL is how long a crawled source page stays fresh.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// Fetch status values for crawled pages.
const (
	FetchStatusSuccess   = "success"
	FetchStatusFailed    = "failed"
	FetchStatusPermanent = "permanent_failure"
)

// maxFetchAttempts is the failure count after which a URL is treated
// as permanently broken and no longer retried.
const maxFetchAttempts = 3

// CrawledPage represents a cached source page row.
type CrawledPage struct {
	ID            uuid.UUID
	URL           string
	Source        *string
	RawHTML       *string
	ParsedText    *string
	HTTPStatus    *int
	FetchStatus   string
	FetchAttempts int
	LastError     *string
	FetchedAt     time.Time
	ExpiresAt     *time.Time
}

const crawledPageColumns = `id, url, COALESCE(source, ''), raw_html, parsed_text,
	http_status, fetch_status, fetch_attempts, last_error, fetched_at, expires_at`

func scanCrawledPage(row pgx.Row) (*CrawledPage, error) {
	var p CrawledPage
	var source string
	err := row.Scan(&p.ID, &p.URL, &source, &p.RawHTML, &p.ParsedText,
		&p.HTTPStatus, &p.FetchStatus, &p.FetchAttempts, &p.LastError, &p.FetchedAt, &p.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan crawled page: %w", err)
	}
	if source != "" {
		p.Source = &source
	}
	return &p, nil
}

// GetCrawledPageByURL returns the cached page for a URL, or nil if absent.
func (db *DB) GetCrawledPageByURL(ctx context.Context, url string) (*CrawledPage, error) {
	query := fmt.Sprintf(`SELECT %s FROM crawled_pages WHERE url = $1`, crawledPageColumns)
	return scanCrawledPage(db.pool.QueryRow(ctx, query, url))
}

// GetFreshCrawledPage returns the cached page for a URL only if it was
// fetched successfully within the TTL and has not been invalidated.
func (db *DB) GetFreshCrawledPage(ctx context.Context, url string, ttl time.Duration) (*CrawledPage, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM crawled_pages
		WHERE url = $1
		  AND fetch_status = $2
		  AND fetched_at > NOW() - $3::interval
		  AND (expires_at IS NULL OR expires_at > NOW())`, crawledPageColumns)
	return scanCrawledPage(db.pool.QueryRow(ctx, query, url, FetchStatusSuccess, ttl))
}

// UpsertCrawledPage inserts or refreshes the cache entry for a URL.
// A successful fetch resets the failure counter.
func (db *DB) UpsertCrawledPage(ctx context.Context, page *CrawledPage) error {
	if page.FetchStatus == "" {
		page.FetchStatus = FetchStatusSuccess
	}
	query := `
		INSERT INTO crawled_pages (url, source, raw_html, parsed_text, http_status, fetch_status, fetch_attempts, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, NOW(), $7)
		ON CONFLICT (url) DO UPDATE SET
			source = EXCLUDED.source,
			raw_html = EXCLUDED.raw_html,
			parsed_text = EXCLUDED.parsed_text,
			http_status = EXCLUDED.http_status,
			fetch_status = EXCLUDED.fetch_status,
			fetch_attempts = 0,
			last_error = NULL,
			fetched_at = NOW(),
			expires_at = EXCLUDED.expires_at
		RETURNING id`
	err := db.pool.QueryRow(ctx, query,
		page.URL, page.Source, page.RawHTML, page.ParsedText,
		page.HTTPStatus, page.FetchStatus, page.ExpiresAt).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert crawled page: %w", err)
	}
	return nil
}

// RecordFailedFetch increments the failure counter for a URL. After
// maxFetchAttempts failures the URL is marked as a permanent failure.
func (db *DB) RecordFailedFetch(ctx context.Context, url string, statusCode int, errMsg string) error {
	query := `
		INSERT INTO crawled_pages (url, http_status, fetch_status, fetch_attempts, last_error, fetched_at)
		VALUES ($1, $2, $3, 1, $4, NOW())
		ON CONFLICT (url) DO UPDATE SET
			http_status = EXCLUDED.http_status,
			fetch_attempts = crawled_pages.fetch_attempts + 1,
			fetch_status = CASE
				WHEN crawled_pages.fetch_attempts + 1 >= $5 THEN $6
				ELSE $3
			END,
			last_error = EXCLUDED.last_error,
			fetched_at = NOW()`
	_, err := db.pool.Exec(ctx, query, url, statusCode, FetchStatusFailed, errMsg, maxFetchAttempts, FetchStatusPermanent)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// ShouldSkipURL reports whether a URL is known to be permanently broken
// or is inside the retry backoff window after a recent failure.
func (db *DB) ShouldSkipURL(ctx context.Context, url string) (bool, string, error) {
	var fetchStatus string
	var attempts int
	var fetchedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT fetch_status, fetch_attempts, fetched_at FROM crawled_pages WHERE url = $1`,
		url).Scan(&fetchStatus, &attempts, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check URL status: %w", err)
	}

	if fetchStatus == FetchStatusPermanent {
		return true, "permanent failure", nil
	}
	if fetchStatus == FetchStatusFailed {
		// Exponential backoff: 1h, 2h, 4h, ...
		backoff := time.Hour * time.Duration(1<<(attempts-1))
		if time.Since(fetchedAt) < backoff {
			return true, fmt.Sprintf("in backoff after %d failed attempts", attempts), nil
		}
	}
	return false, "", nil
}
