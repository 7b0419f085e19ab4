package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// QueueStore persists the sync-queue log. The queue is always written as a
// whole ordered list; per-key atomicity of the KV backend makes each write
// an all-or-nothing replacement of the log.
type QueueStore interface {
	// Load returns the persisted queue in FIFO order. An empty store yields
	// an empty queue, not an error.
	Load(ctx context.Context) ([]domain.SyncAction, error)

	// Save replaces the persisted queue.
	Save(ctx context.Context, actions []domain.SyncAction) error
}

// kvQueueStore implements QueueStore over a KV backend.
type kvQueueStore struct {
	kv KV
}

// NewQueueStore creates a QueueStore over the given KV backend.
func NewQueueStore(kv KV) QueueStore {
	if kv == nil {
		panic("kv cannot be nil")
	}
	return &kvQueueStore{kv: kv}
}

// Load implements QueueStore.Load.
func (s *kvQueueStore) Load(ctx context.Context) ([]domain.SyncAction, error) {
	raw, err := s.kv.Get(ctx, KeySyncQueue)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}

	var actions []domain.SyncAction
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return nil, NewStoreError("decode", KeySyncQueue, fmt.Errorf("%w: %v", ErrCorruptValue, err))
	}
	return actions, nil
}

// Save implements QueueStore.Save.
func (s *kvQueueStore) Save(ctx context.Context, actions []domain.SyncAction) error {
	if actions == nil {
		actions = []domain.SyncAction{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return NewStoreError("encode", KeySyncQueue, err)
	}
	if err := s.kv.Set(ctx, KeySyncQueue, string(data)); err != nil {
		return fmt.Errorf("failed to persist sync queue: %w", err)
	}
	return nil
}
