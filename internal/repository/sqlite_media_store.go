package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

// SQLiteMediaStore implements MediaStore on a local SQLite database.
type SQLiteMediaStore struct {
	db *sql.DB
}

// NewSQLiteMediaStore opens (and if needed initializes) the store at path.
func NewSQLiteMediaStore(path string) (*SQLiteMediaStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; the sqlite driver serializes anyway but this keeps
	// lock contention errors out of the upsert path.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS media_records (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			identifier TEXT NOT NULL,
			display_name TEXT,
			title TEXT,
			poster_url TEXT,
			resolve_count INTEGER NOT NULL DEFAULT 0,
			first_resolved_at DATETIME NOT NULL,
			last_resolved_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_media_records_last_resolved ON media_records(last_resolved_at);
		CREATE INDEX IF NOT EXISTS idx_media_records_kind ON media_records(kind);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteMediaStore{db: db}, nil
}

// Record upserts a resolution record keyed by media key.
func (s *SQLiteMediaStore) Record(ctx context.Context, rec *domain.MediaRecord) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_records
			(id, key, kind, identifier, display_name, title, poster_url, resolve_count, first_resolved_at, last_resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			display_name = excluded.display_name,
			title = excluded.title,
			poster_url = excluded.poster_url,
			resolve_count = media_records.resolve_count + 1,
			last_resolved_at = excluded.last_resolved_at
	`, rec.ID, rec.Key.String(), string(rec.Kind), rec.Identifier,
		rec.DisplayName, rec.Title, rec.PosterURL, now, now)
	if err != nil {
		return fmt.Errorf("record media: %w", err)
	}

	return nil
}

// Get retrieves a record by media key.
func (s *SQLiteMediaStore) Get(ctx context.Context, key domain.MediaKey) (*domain.MediaRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, key, kind, identifier, display_name, title, poster_url,
		       resolve_count, first_resolved_at, last_resolved_at
		FROM media_records WHERE key = ?
	`, key.String())

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media record: %w", err)
	}
	return rec, nil
}

// List returns the most recently resolved records, newest first.
func (s *SQLiteMediaStore) List(ctx context.Context, limit int) ([]*domain.MediaRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, kind, identifier, display_name, title, poster_url,
		       resolve_count, first_resolved_at, last_resolved_at
		FROM media_records
		ORDER BY last_resolved_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}
	defer rows.Close()

	var records []*domain.MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media records: %w", err)
	}

	return records, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteMediaStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteMediaStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*domain.MediaRecord, error) {
	var rec domain.MediaRecord
	var key, kind string
	var displayName, title, posterURL sql.NullString

	err := sc.Scan(&rec.ID, &key, &kind, &rec.Identifier,
		&displayName, &title, &posterURL,
		&rec.ResolveCount, &rec.FirstResolvedAt, &rec.LastResolvedAt)
	if err != nil {
		return nil, err
	}

	rec.Key = domain.MediaKey(key)
	rec.Kind = domain.MediaKind(kind)
	rec.DisplayName = displayName.String
	rec.Title = title.String
	rec.PosterURL = posterURL.String
	return &rec, nil
}
