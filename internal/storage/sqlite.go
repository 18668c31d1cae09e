package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/IshaanNene/newsgoat/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS headlines (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	source       TEXT NOT NULL,
	published_at TEXT,
	url          TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	fetched_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_headlines_url ON headlines(url);
`

// SQLiteStore keeps the dataset in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, storageErr("sqlite", "open", errors.New("path is empty"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("sqlite", "open", fmt.Errorf("create dir: %w", err))
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, storageErr("sqlite", "open", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storageErr("sqlite", "migrate", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "sqlite_store"),
	}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []types.Headline) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("sqlite", "save", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM headlines`); err != nil {
		return storageErr("sqlite", "save", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO headlines
		(id, title, source, published_at, url, summary, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return storageErr("sqlite", "save", err)
	}
	defer stmt.Close()

	for i, h := range records {
		var published sql.NullString
		if h.PublishedAt != nil {
			published = sql.NullString{String: h.PublishedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			i+1, h.Title, h.Source, published, h.URL, h.Summary,
			h.FetchedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return storageErr("sqlite", "save", fmt.Errorf("insert %q: %w", h.Title, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("sqlite", "save", err)
	}

	s.logger.Debug("dataset saved", "path", s.path, "records", len(records))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]types.Headline, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, source, published_at, url, summary, fetched_at
		FROM headlines ORDER BY id`)
	if err != nil {
		return nil, storageErr("sqlite", "load", err)
	}
	defer rows.Close()

	records := []types.Headline{}
	for rows.Next() {
		var (
			h         types.Headline
			published sql.NullString
			fetched   string
		)
		if err := rows.Scan(&h.Title, &h.Source, &published, &h.URL, &h.Summary, &fetched); err != nil {
			return nil, storageErr("sqlite", "load", err)
		}
		if published.Valid {
			t, err := time.Parse(time.RFC3339Nano, published.String)
			if err != nil {
				return nil, storageErr("sqlite", "load", fmt.Errorf("published_at: %w", err))
			}
			h.SetPublished(t)
		}
		t, err := time.Parse(time.RFC3339Nano, fetched)
		if err != nil {
			return nil, storageErr("sqlite", "load", fmt.Errorf("fetched_at: %w", err))
		}
		h.FetchedAt = t.UTC()
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("sqlite", "load", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
