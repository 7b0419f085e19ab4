package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// ProgressStore owns the persisted progress aggregate.
type ProgressStore interface {
	// Load reads the aggregate, normalizing missing sections. A store with
	// no progress yet yields an empty aggregate, not an error.
	Load(ctx context.Context) (*domain.Progress, error)

	// Mutate runs fn over a freshly loaded aggregate and persists the
	// result, all under the single-writer lock. If fn returns an error
	// nothing is written. The persisted aggregate is returned.
	Mutate(ctx context.Context, fn func(*domain.Progress) error) (*domain.Progress, error)
}

// kvProgressStore implements ProgressStore over a KV backend.
type kvProgressStore struct {
	kv     KV
	mu     sync.Mutex
	logger *slog.Logger
}

// NewProgressStore creates a ProgressStore over the given KV backend.
func NewProgressStore(kv KV, logger *slog.Logger) ProgressStore {
	if kv == nil {
		panic("kv cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &kvProgressStore{
		kv:     kv,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Load implements ProgressStore.Load.
func (s *kvProgressStore) Load(ctx context.Context) (*domain.Progress, error) {
	raw, err := s.kv.Get(ctx, KeyProgress)
	if err != nil {
		if IsNotFoundError(err) {
			s.logger.Debug("no persisted progress, starting empty")
			return domain.NewProgress(), nil
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var p domain.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, NewStoreError("decode", KeyProgress, fmt.Errorf("%w: %v", ErrCorruptValue, err))
	}

	p.Normalize()
	return &p, nil
}

// Mutate implements ProgressStore.Mutate.
func (s *kvProgressStore) Mutate(
	ctx context.Context,
	fn func(*domain.Progress) error,
) (*domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, NewStoreError("encode", KeyProgress, err)
	}

	if err := s.kv.Set(ctx, KeyProgress, string(data)); err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}

	return p, nil
}
