// Package sqlite stores site content in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/pageloader/internal/platform/errors"
	"github.com/louisbranch/pageloader/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pageloader/internal/site/content"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store provides SQLite-backed site content.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ content.Store  = (*Store)(nil)
	_ content.Writer = (*Store)(nil)
)

// Open opens the database at path and applies migrations. The path
// ":memory:" opens a single-connection in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := memoryPath
	if path != memoryPath {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		dsn = path + "?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == memoryPath {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetPage returns the page for slug.
func (s *Store) GetPage(ctx context.Context, slug string) (content.Page, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Page{}, apperrors.E(apperrors.KindInvalidInput, "slug is required")
	}
	var (
		page      content.Page
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT slug, title, summary, body, updated_at FROM pages WHERE slug = ?`, slug,
	).Scan(&page.Slug, &page.Title, &page.Summary, &page.Body, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Page{}, apperrors.E(apperrors.KindNotFound, fmt.Sprintf("page %q not found", slug))
	}
	if err != nil {
		return content.Page{}, apperrors.Wrap(apperrors.KindUnavailable, "get page", err)
	}
	page.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return page, nil
}

// ListPages returns every page ordered by slug.
func (s *Store) ListPages(ctx context.Context) ([]content.PageSummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT slug, title FROM pages ORDER BY slug`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "list pages", err)
	}
	defer rows.Close()

	var pages []content.PageSummary
	for rows.Next() {
		var page content.PageSummary
		if err := rows.Scan(&page.Slug, &page.Title); err != nil {
			return nil, apperrors.Wrap(apperrors.KindUnavailable, "scan page", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "list pages", err)
	}
	return pages, nil
}

// Settings returns every site setting.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "list settings", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, apperrors.Wrap(apperrors.KindUnavailable, "scan setting", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "list settings", err)
	}
	return settings, nil
}

// PutPage inserts or replaces a page. A zero UpdatedAt is set to now.
func (s *Store) PutPage(ctx context.Context, page content.Page) error {
	page.Slug = strings.TrimSpace(page.Slug)
	if page.Slug == "" {
		return apperrors.E(apperrors.KindInvalidInput, "slug is required")
	}
	if strings.TrimSpace(page.Title) == "" {
		return apperrors.E(apperrors.KindInvalidInput, "title is required")
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO pages (slug, title, summary, body, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    summary = excluded.summary,
    body = excluded.body,
    updated_at = excluded.updated_at`,
		page.Slug, page.Title, page.Summary, page.Body, page.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "put page", err)
	}
	return nil
}

// PutSetting inserts or replaces a site setting.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.E(apperrors.KindInvalidInput, "setting key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "put setting", err)
	}
	return nil
}
