// Package store keeps the last catalogue that loaded cleanly for each source
// in a local SQLite database, so the wheel still works offline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lxing/wheel/internal/wheel"
	_ "modernc.org/sqlite"
)

const snapshotSchemaVersion = 1

// ErrNotCached is returned by LoadCatalogue when no snapshot exists for a source.
var ErrNotCached = errors.New("catalogue not cached")

type catalogueSnapshot struct {
	SchemaVersion int                `json:"schema_version"`
	Members       []string           `json:"members"`
	Items         []wheel.ItemRecord `json:"items"`
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS catalogue_snapshots (
  source TEXT PRIMARY KEY,
  snapshot_json TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalogue_snapshots table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCatalogue replaces the snapshot stored under source.
func (s *Store) SaveCatalogue(ctx context.Context, source string, cat *wheel.Catalogue) error {
	if s == nil || s.db == nil {
		return errors.New("catalogue store not initialized")
	}
	if source == "" {
		return errors.New("source required")
	}
	if cat == nil {
		return errors.New("nil catalogue")
	}

	names, records := cat.Records()
	raw, err := json.Marshal(catalogueSnapshot{
		SchemaVersion: snapshotSchemaVersion,
		Members:       names,
		Items:         records,
	})
	if err != nil {
		return fmt.Errorf("marshal catalogue for %q: %w", source, err)
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO catalogue_snapshots (source, snapshot_json, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(source) DO UPDATE SET
  snapshot_json = excluded.snapshot_json,
  updated_at = excluded.updated_at;
`, source, string(raw), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert catalogue %q: %w", source, err)
	}
	return nil
}

// LoadCatalogue returns the snapshot stored under source and when it was saved.
func (s *Store) LoadCatalogue(ctx context.Context, source string) (*wheel.Catalogue, time.Time, error) {
	if s == nil || s.db == nil {
		return nil, time.Time{}, errors.New("catalogue store not initialized")
	}

	var raw string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot_json, updated_at FROM catalogue_snapshots WHERE source = ?;`,
		source,
	).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%w: %q", ErrNotCached, source)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query catalogue %q: %w", source, err)
	}

	cat, err := decodeSnapshot(raw)
	if err != nil {
		// Unreadable snapshots are dropped.
		if delErr := s.DeleteCatalogue(ctx, source); delErr != nil {
			return nil, time.Time{}, errors.Join(fmt.Errorf("catalogue %q: %w", source, err), delErr)
		}
		return nil, time.Time{}, fmt.Errorf("catalogue %q: %w", source, err)
	}
	return cat, time.UnixMilli(updatedAt), nil
}

func decodeSnapshot(raw string) (*wheel.Catalogue, error) {
	var snapshot catalogueSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snapshot.SchemaVersion != snapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version: %d", snapshot.SchemaVersion)
	}
	cat, err := wheel.NewCatalogue(snapshot.Members, snapshot.Items)
	if err != nil {
		return nil, fmt.Errorf("rebuild snapshot: %w", err)
	}
	return cat, nil
}

// DeleteCatalogue drops the snapshot for source, if any.
func (s *Store) DeleteCatalogue(ctx context.Context, source string) error {
	if s == nil || s.db == nil {
		return errors.New("catalogue store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalogue_snapshots WHERE source = ?;`, source); err != nil {
		return fmt.Errorf("delete catalogue %q: %w", source, err)
	}
	return nil
}
