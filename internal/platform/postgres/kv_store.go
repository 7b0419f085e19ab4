// Package postgres implements the local key-value store on PostgreSQL,
// used by synced desktop deployments where the "device" store lives in a
// shared database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/Notinamillion/hanzi-review/internal/store"
)

// Open establishes a connection to the database and configures the
// connection pool.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// KVStore implements store.KV over PostgreSQL.
type KVStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewKVStore creates a KVStore over an open database handle.
func NewKVStore(db *sql.DB, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_kv_store")),
	}
}

// Get implements store.KV.Get.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.NewStoreError("get", key, store.ErrNotFound)
		}
		return "", store.NewStoreError("get", key, err)
	}
	return value, nil
}

// Set implements store.KV.Set.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
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
