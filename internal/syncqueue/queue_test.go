package syncqueue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/remote"
	"github.com/Notinamillion/hanzi-review/internal/store"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
	"github.com/Notinamillion/hanzi-review/internal/testutils"
)

// fakeClient scripts remote behavior per action type.
type fakeClient struct {
	mu            sync.Mutex
	saveErr       error
	logErr        error
	savedPayloads []json.RawMessage
	logged        []json.RawMessage
}

func (f *fakeClient) SaveProgress(_ context.Context, data json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedPayloads = append(f.savedPayloads, data)
	return nil
}

func (f *fakeClient) GetProgress(context.Context) (json.RawMessage, error) {
	return nil, remote.ErrNoRemote
}

func (f *fakeClient) LogQuizAttempt(_ context.Context, record json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logged = append(f.logged, record)
	return nil
}

func (f *fakeClient) GetSentences(context.Context, string) ([]domain.ExampleSentence, error) {
	return nil, remote.ErrNoRemote
}

func (f *fakeClient) setSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakeClient) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.savedPayloads)
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQueue(t *testing.T, client remote.Client, config syncqueue.Config) (*syncqueue.Queue, store.QueueStore) {
	t.Helper()
	qs := store.NewQueueStore(store.NewMemoryKV())
	q, err := syncqueue.NewQueue(context.Background(), qs, client, config, nopLogger())
	require.NoError(t, err)
	return q, qs
}

func TestQueue_EnqueuePersistsBeforeReturning(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	q, qs := newTestQueue(t, client, syncqueue.Config{})

	// Offline: the action must sit in the durable log untouched.
	err := q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"version":1}`))
	require.NoError(t, err)

	persisted, err := qs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, domain.ActionSaveProgress, persisted[0].Type)
	assert.Equal(t, 0, persisted[0].Attempts)
	assert.Equal(t, 0, client.savedCount())
}

// flakyQueueStore wraps a real store and fails Save on demand.
type flakyQueueStore struct {
	store.QueueStore
	saveErr error
}

func (s *flakyQueueStore) Save(ctx context.Context, actions []domain.SyncAction) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.QueueStore.Save(ctx, actions)
}

func TestQueue_EnqueueRollsBackOnPersistFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	flaky := &flakyQueueStore{QueueStore: store.NewQueueStore(store.NewMemoryKV())}
	q, err := syncqueue.NewQueue(context.Background(), flaky, client, syncqueue.Config{}, nopLogger())
	require.NoError(t, err)

	flaky.saveErr = errors.New("disk full")
	err = q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"version":1}`))
	require.Error(t, err)

	// The caller was told the enqueue failed, so the action must be gone
	// from memory too, not just absent from the store.
	assert.Equal(t, 0, q.Size())
	assert.Empty(t, q.Pending())

	// A later successful enqueue and drain must not resurrect it.
	flaky.saveErr = nil
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionLogQuizAttempt, []byte(`{"q":5}`)))
	q.SetOnline(true)
	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, client.savedCount())
}

func TestQueue_RecoversPersistedActions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	kv := store.NewMemoryKV()
	qs := store.NewQueueStore(kv)

	first, err := syncqueue.NewQueue(context.Background(), qs, client, syncqueue.Config{}, nopLogger())
	require.NoError(t, err)
	require.NoError(t, first.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	require.NoError(t, first.Enqueue(context.Background(), domain.ActionLogQuizAttempt, []byte(`{}`)))

	// A new queue over the same backend sees the surviving log.
	second, err := syncqueue.NewQueue(context.Background(), qs, client, syncqueue.Config{}, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Size())

	pending := second.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, domain.ActionSaveProgress, pending[0].Type)
	assert.Equal(t, domain.ActionLogQuizAttempt, pending[1].Type)
}

func TestQueue_DrainsInOrderWhenOnline(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	q, _ := newTestQueue(t, client, syncqueue.Config{})

	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"n":1}`)))
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"n":2}`)))
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionLogQuizAttempt, []byte(`{"n":3}`)))

	q.SetOnline(true)

	assert.Equal(t, 0, q.Size())
	require.Len(t, client.savedPayloads, 2)
	assert.JSONEq(t, `{"n":1}`, string(client.savedPayloads[0]))
	assert.JSONEq(t, `{"n":2}`, string(client.savedPayloads[1]))
	require.Len(t, client.logged, 1)
	assert.JSONEq(t, `{"n":3}`, string(client.logged[0]))
}

func TestQueue_FailureStopsDrainAndCountsAttempt(t *testing.T) {
	t.Parallel()

	client := &fakeClient{saveErr: &remote.NetworkError{Op: "save_progress", Err: errors.New("unreachable")}}
	q, _ := newTestQueue(t, client, syncqueue.Config{MaxAttempts: 5})

	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"n":1}`)))
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{"n":2}`)))

	q.SetOnline(true)

	// The head failed once; nothing behind it was attempted.
	assert.Equal(t, 2, q.Size())
	pending := q.Pending()
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, 0, pending[1].Attempts)
	assert.Equal(t, 0, client.savedCount())
}

func TestQueue_DropsHeadAfterRetryBudgetAndContinues(t *testing.T) {
	t.Parallel()

	netErr := &remote.NetworkError{Op: "save_progress", Err: errors.New("unreachable")}
	client := &fakeClient{saveErr: netErr}
	q, _ := newTestQueue(t, client, syncqueue.Config{MaxAttempts: 5})

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	}
	// The transition drain fails once; three more passes leave the head in
	// place with budget remaining.
	q.SetOnline(true)
	for i := 0; i < 3; i++ {
		q.Process(context.Background())
	}
	require.Equal(t, 3, q.Size())
	assert.Equal(t, 4, q.Pending()[0].Attempts)

	// The fifth failure exhausts the head's budget; it is dropped and the
	// drain moves on to the next action, which starts fresh.
	q.Process(context.Background())
	require.Equal(t, 2, q.Size())
	pending := q.Pending()
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, 0, pending[1].Attempts)

	// Once the remote recovers, the survivors drain in order.
	client.setSaveErr(nil)
	q.Process(context.Background())
	assert.Equal(t, 0, q.Size())
	assert.Equal(t, 2, client.savedCount())
}

func TestQueue_UnknownActionTypeIsDropped(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	logger, captured := testutils.NewCaptureLogger()
	q, err := syncqueue.NewQueue(context.Background(), store.NewQueueStore(store.NewMemoryKV()), client, syncqueue.Config{}, logger)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(context.Background(), domain.ActionType("REBUILD_INDEX"), []byte(`{}`)))
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))

	q.SetOnline(true)

	// The unrecognized action must not wedge the queue.
	assert.Equal(t, 0, q.Size())
	assert.Equal(t, 1, client.savedCount())
	assert.True(t, captured.HasMessage("dropping sync action of unknown type"))
}

func TestQueue_OfflineDoesNotDrain(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	q, _ := newTestQueue(t, client, syncqueue.Config{})

	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	q.Process(context.Background())

	assert.Equal(t, 1, q.Size())
	assert.Equal(t, 0, client.savedCount())
}

func TestQueue_DrainsOnOfflineToOnlineTransition(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	q, _ := newTestQueue(t, client, syncqueue.Config{})

	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	q.SetOnline(true)

	assert.Equal(t, 0, q.Size())
	assert.Equal(t, 1, client.savedCount())

	// A repeat observation in the same state is not a transition.
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_SingleDrainAtATime(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	client := &blockingClient{release: release, started: started}
	q, _ := newTestQueue(t, client, syncqueue.Config{})

	// Going online with an empty queue is a no-op; the enqueue afterwards
	// starts the first drain pass in the background.
	q.SetOnline(true)
	require.NoError(t, q.Enqueue(context.Background(), domain.ActionSaveProgress, []byte(`{}`)))
	<-started

	// A second pass while the first is blocked inside the remote call must
	// return without dispatching anything.
	done := make(chan struct{})
	go func() {
		q.Process(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second drain pass did not return while first was in flight")
	}

	close(release)
	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, client.calls())
}

// blockingClient parks SaveProgress until released, to expose overlapping
// drain passes.
type blockingClient struct {
	mu      sync.Mutex
	count   int
	release chan struct{}
	started chan struct{}
}

func (b *blockingClient) SaveProgress(context.Context, json.RawMessage) error {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func (b *blockingClient) GetProgress(context.Context) (json.RawMessage, error) {
	return nil, remote.ErrNoRemote
}

func (b *blockingClient) LogQuizAttempt(context.Context, json.RawMessage) error { return nil }

func (b *blockingClient) GetSentences(context.Context, string) ([]domain.ExampleSentence, error) {
	return nil, remote.ErrNoRemote
}

func (b *blockingClient) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
