package store

import "context"

// Well-known keys in the local store.
const (
	// KeyProgress holds the JSON progress aggregate.
	KeyProgress = "progress"
	// KeySyncQueue holds the JSON sync-queue log, persisted separately so a
	// queue write never races a progress write on the same key. Each key is
	// written atomically.
	KeySyncQueue = "sync_queue"
)

// KV is the local durable store every backend implements. Writes must be
// atomic per key: a crashed Set leaves either the old or the new value,
// never a partial one.
type KV interface {
	// Get returns the value for key, or ErrNotFound if the key has never
	// been written.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the backend's resources.
	Close() error
}
