package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notinamillion/hanzi-review/internal/api"
	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/domain/priority"
	"github.com/Notinamillion/hanzi-review/internal/domain/srs"
	"github.com/Notinamillion/hanzi-review/internal/quiz"
	"github.com/Notinamillion/hanzi-review/internal/store"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
)

func newProgressHandler(t *testing.T) (*api.ProgressHandler, store.ProgressStore) {
	t.Helper()
	progressStore := store.NewProgressStore(store.NewMemoryKV(), discardLogger())
	queue, err := syncqueue.NewQueue(context.Background(), store.NewQueueStore(store.NewMemoryKV()), offlineClient{}, syncqueue.Config{}, discardLogger())
	require.NoError(t, err)
	engine := quiz.NewEngine(progressStore, srs.NewDefaultService(), priority.NewDefaultClassifier(), queue, nil, quiz.Config{}, discardLogger())
	return api.NewProgressHandler(progressStore, engine, discardLogger()), progressStore
}

func TestProgressHandler_GetReturnsAggregate(t *testing.T) {
	handler, progressStore := newProgressHandler(t)

	item := domain.ReviewItem{Word: "学", Type: domain.ItemTypeCharacter}
	_, err := progressStore.Mutate(context.Background(), func(p *domain.Progress) error {
		state := domain.NewReviewState()
		state.Attempts = 2
		state.Correct = 1
		p.SetState(item, state)
		return nil
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var progress domain.Progress
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
	state := progress.StateFor(item)
	require.NotNil(t, state)
	assert.Equal(t, 2, state.Attempts)
}

func TestProgressHandler_SetKnown(t *testing.T) {
	handler, progressStore := newProgressHandler(t)

	body := `{"item":{"word":"学","type":"character"},"known":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/progress/known", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.SetKnown(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)

	progress, err := progressStore.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, progress.Known(domain.ReviewItem{Word: "学", Type: domain.ItemTypeCharacter}))
}

func TestProgressHandler_SetKnownValidation(t *testing.T) {
	handler, _ := newProgressHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"missing known", `{"item":{"word":"学","type":"character"}}`},
		{"missing word", `{"item":{"type":"character"},"known":true}`},
		{"bad type", `{"item":{"word":"学","type":"radical"},"known":true}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/progress/known", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			handler.SetKnown(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}
