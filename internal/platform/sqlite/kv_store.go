// Package sqlite implements the local key-value store on an embedded
// SQLite database, the primary on-device backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/Notinamillion/hanzi-review/internal/store"
)

// Open establishes a connection to the SQLite database at path, creating
// the enclosing directory if needed.
func Open(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	// WAL keeps a crashed write from corrupting the previous value; the
	// busy timeout covers the checkpointer briefly holding the file.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// SQLite does not support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// KVStore implements store.KV over SQLite.
type KVStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewKVStore creates a KVStore over an open database handle.
func NewKVStore(db *sqlx.DB, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_kv_store")),
	}
}

// Get implements store.KV.Get.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.NewStoreError("get", key, store.ErrNotFound)
		}
		return "", store.NewStoreError("get", key, err)
	}
	return value, nil
}

// Set implements store.KV.Set. The upsert is a single statement, so the
// write is atomic per key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return store.NewStoreError("set", key, err)
	}
	return nil
}

// Close implements store.KV.Close.
func (s *KVStore) Close() error {
	return s.db.Close()
}
