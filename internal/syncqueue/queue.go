// Package syncqueue holds pending remote mutations in a durable FIFO log
// and drains them head-first whenever the remote is reachable. Local state
// is always authoritative; the queue only replays local decisions outward.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/redact"
	"github.com/Notinamillion/hanzi-review/internal/remote"
	"github.com/Notinamillion/hanzi-review/internal/store"
)

// ErrUnknownActionType marks a queued action whose type no dispatcher
// handles. Such actions are dropped rather than blocking the queue.
var ErrUnknownActionType = errors.New("unknown sync action type")

// drainState tracks whether a drain pass is currently running. The queue
// never runs two drain passes concurrently.
type drainState int

const (
	drainIdle drainState = iota
	drainDraining
)

// Config tunes the queue's retry policy.
type Config struct {
	// MaxAttempts is the delivery budget per action. An action that fails
	// this many times is dropped so the queue cannot wedge forever.
	MaxAttempts int

	// RetryInterval is how often a background pass retries a non-empty
	// queue while online.
	RetryInterval time.Duration
}

// DefaultConfig returns the retry policy used when configuration leaves
// the sync section empty.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		RetryInterval: 30 * time.Second,
	}
}

// Queue is the durable sync queue. All mutating methods are safe for
// concurrent use.
type Queue struct {
	mu      sync.Mutex
	actions []domain.SyncAction
	state   drainState
	online  bool

	queueStore store.QueueStore
	client     remote.Client
	config     Config
	logger     *slog.Logger
	scheduler  *gocron.Scheduler
	nowFunc    func() time.Time
}

// NewQueue creates a sync queue over the given persistence and remote
// client, recovering any actions persisted by a previous run. It panics if
// queueStore or client is nil; missing dependencies are a programming
// error, not a runtime condition.
func NewQueue(ctx context.Context, queueStore store.QueueStore, client remote.Client, config Config, logger *slog.Logger) (*Queue, error) {
	if queueStore == nil {
		panic("queueStore cannot be nil")
	}
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultConfig().RetryInterval
	}

	actions, err := queueStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sync queue: %w", err)
	}

	q := &Queue{
		actions:    actions,
		queueStore: queueStore,
		client:     client,
		config:     config,
		logger:     logger.With(slog.String("component", "sync_queue")),
		nowFunc:    time.Now,
	}

	if len(actions) > 0 {
		q.logger.Info("recovered pending sync actions", "count", len(actions))
	}
	return q, nil
}

// Enqueue appends an action to the durable log and, when online, kicks off
// a drain pass in the background. The action is persisted before Enqueue
// returns; delivery happens asynchronously.
func (q *Queue) Enqueue(ctx context.Context, actionType domain.ActionType, payload []byte) error {
	action := domain.SyncAction{
		ID:        uuid.New(),
		Type:      actionType,
		Payload:   payload,
		Timestamp: q.nowFunc().UTC(),
		Attempts:  0,
	}

	q.mu.Lock()
	q.actions = append(q.actions, action)
	err := q.persistLocked(ctx)
	if err != nil {
		// Keep memory and store in agreement: an action the caller was
		// told failed to enqueue must not be delivered later.
		q.actions = q.actions[:len(q.actions)-1]
	}
	online := q.online
	q.mu.Unlock()

	if err != nil {
		return err
	}

	q.logger.Debug("enqueued sync action", "action_id", action.ID, "action_type", action.Type)

	if online {
		go q.Process(context.WithoutCancel(ctx))
	}
	return nil
}

// Size returns the number of pending actions.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Pending returns a snapshot of the queued actions in FIFO order.
func (q *Queue) Pending() []domain.SyncAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot := make([]domain.SyncAction, len(q.actions))
	copy(snapshot, q.actions)
	return snapshot
}

// Online reports the connectivity state last observed by the queue.
func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// SetOnline records a connectivity transition. Coming back online drains
// the queue before returning; callers on latency-sensitive paths run it on
// their own goroutine.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	wasOnline := q.online
	q.online = online
	q.mu.Unlock()

	if online && !wasOnline {
		q.logger.Info("back online, draining sync queue")
		q.Process(context.Background())
	}
}

// Process drains the queue head-first until it becomes empty, a delivery
// fails with budget remaining, or connectivity drops. Only one drain pass
// runs at a time; a second caller returns immediately.
func (q *Queue) Process(ctx context.Context) {
	q.mu.Lock()
	if q.state == drainDraining {
		q.mu.Unlock()
		return
	}
	q.state = drainDraining
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.state = drainIdle
		q.mu.Unlock()
	}()

	for {
		q.mu.Lock()
		if !q.online || len(q.actions) == 0 {
			q.mu.Unlock()
			return
		}
		head := q.actions[0]
		q.mu.Unlock()

		err := q.dispatch(ctx, head)
		if err == nil {
			q.pop(ctx, head.ID)
			q.logger.Debug("delivered sync action", "action_id", head.ID, "action_type", head.Type)
			continue
		}

		if errors.Is(err, ErrUnknownActionType) {
			q.logger.Warn("dropping sync action of unknown type",
				"action_id", head.ID,
				"action_type", head.Type)
			q.pop(ctx, head.ID)
			continue
		}

		attempts := q.recordFailure(ctx, head.ID)
		if attempts >= q.config.MaxAttempts {
			q.logger.Warn("dropping sync action after exhausting retries",
				"action_id", head.ID,
				"action_type", head.Type,
				"attempts", attempts,
				"error", redact.Error(err))
			q.pop(ctx, head.ID)
			continue
		}

		// Budget remains; leave the action at the head and let the retry
		// tick or the next connectivity transition try again.
		q.logger.Debug("sync action delivery failed, will retry",
			"action_id", head.ID,
			"attempts", attempts,
			"error", redact.Error(err))
		return
	}
}

// StartRetryLoop schedules periodic drain passes so transient failures are
// retried without waiting for the next enqueue or connectivity change.
func (q *Queue) StartRetryLoop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.scheduler != nil {
		return
	}

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(int(q.config.RetryInterval.Seconds())).Seconds().Do(func() {
		q.Process(context.Background())
	})
	if err != nil {
		q.logger.Error("failed to schedule sync retry job", "error", err)
		return
	}
	s.StartAsync()
	q.scheduler = s
}

// StopRetryLoop halts the periodic retry schedule. In-flight drain passes
// run to completion.
func (q *Queue) StopRetryLoop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.scheduler != nil {
		q.scheduler.Stop()
		q.scheduler = nil
	}
}

// dispatch maps an action type onto the matching remote call.
func (q *Queue) dispatch(ctx context.Context, action domain.SyncAction) error {
	switch action.Type {
	case domain.ActionSaveProgress:
		return q.client.SaveProgress(ctx, action.Payload)
	case domain.ActionLogQuizAttempt:
		return q.client.LogQuizAttempt(ctx, action.Payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionType, action.Type)
	}
}

// pop removes the action with the given ID if it is still at the head and
// persists the shrunk log. The ID check guards against racing enqueues.
func (q *Queue) pop(ctx context.Context, id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 || q.actions[0].ID != id {
		return
	}
	q.actions = q.actions[1:]
	if err := q.persistLocked(ctx); err != nil {
		q.logger.Error("failed to persist sync queue after pop", "error", err)
	}
}

// recordFailure increments the head action's attempt counter, persists the
// log, and returns the new count.
func (q *Queue) recordFailure(ctx context.Context, id uuid.UUID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 || q.actions[0].ID != id {
		return 0
	}
	q.actions[0].Attempts++
	attempts := q.actions[0].Attempts
	if err := q.persistLocked(ctx); err != nil {
		q.logger.Error("failed to persist sync queue after failure", "error", err)
	}
	return attempts
}

func (q *Queue) persistLocked(ctx context.Context) error {
	return q.queueStore.Save(ctx, q.actions)
}
