package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
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

// offlineClient keeps the sync queue from ever reaching the network.
type offlineClient struct{}

func (offlineClient) SaveProgress(context.Context, json.RawMessage) error {
	return context.Canceled
}

func (offlineClient) GetProgress(context.Context) (json.RawMessage, error) {
	return nil, context.Canceled
}

func (offlineClient) LogQuizAttempt(context.Context, json.RawMessage) error {
	return context.Canceled
}

func (offlineClient) GetSentences(context.Context, string) ([]domain.ExampleSentence, error) {
	return nil, context.Canceled
}

type sessionFixture struct {
	router        chi.Router
	engine        *quiz.Engine
	progressStore store.ProgressStore
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	progressStore := store.NewProgressStore(store.NewMemoryKV(), discardLogger())
	queueStore := store.NewQueueStore(store.NewMemoryKV())
	queue, err := syncqueue.NewQueue(context.Background(), queueStore, offlineClient{}, syncqueue.Config{}, discardLogger())
	require.NoError(t, err)

	engine := quiz.NewEngine(
		progressStore,
		srs.NewDefaultService(),
		priority.NewDefaultClassifier(),
		queue,
		nil,
		quiz.Config{BatchSize: 10},
		discardLogger(),
	)

	handler := api.NewSessionHandler(engine, discardLogger())
	router := chi.NewRouter()
	router.Post("/api/session/start", handler.Start)
	router.Get("/api/session", handler.Summary)
	router.Get("/api/session/current", handler.Current)
	router.Post("/api/session/reveal", handler.Reveal)
	router.Post("/api/session/grade", handler.Grade)
	router.Post("/api/session/advance", handler.Advance)
	router.Post("/api/session/skip", handler.Skip)
	router.Post("/api/session/quit", handler.Quit)

	return &sessionFixture{router: router, engine: engine, progressStore: progressStore}
}

func (f *sessionFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

const startBody = `{
	"mode": "words",
	"items": [
		{"word": "水", "type": "character", "pinyin": "shuǐ", "meanings": ["water"]},
		{"word": "火", "type": "character", "pinyin": "huǒ", "meanings": ["fire"]}
	]
}`

func TestSessionHandler_StartReturnsFirstCard(t *testing.T) {
	f := newSessionFixture(t)

	rr := f.do(t, http.MethodPost, "/api/session/start", startBody)

	require.Equal(t, http.StatusCreated, rr.Code)
	var card quiz.CardView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, "水", card.Item.Word)
	assert.Equal(t, 2, card.BatchSize)
}

func TestSessionHandler_StartValidation(t *testing.T) {
	f := newSessionFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `nonsense`},
		{"missing mode", `{"items":[{"word":"水","type":"character"}]}`},
		{"bad mode", `{"mode":"essay","items":[{"word":"水","type":"character"}]}`},
		{"empty items", `{"mode":"words","items":[]}`},
		{"bad item type", `{"mode":"words","items":[{"word":"水","type":"radical"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/session/start", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestSessionHandler_SecondStartConflicts(t *testing.T) {
	f := newSessionFixture(t)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)

	rr := f.do(t, http.MethodPost, "/api/session/start", startBody)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSessionHandler_AllCaughtUpIsNoContent(t *testing.T) {
	f := newSessionFixture(t)

	// Both items were reviewed moments ago and are not due again.
	now := time.Now().UTC()
	_, err := f.progressStore.Mutate(context.Background(), func(p *domain.Progress) error {
		for _, word := range []string{"水", "火"} {
			item := domain.ReviewItem{Word: word, Type: domain.ItemTypeCharacter}
			state := domain.NewReviewState()
			state.Attempts = 1
			state.Correct = 1
			state.Score = 4
			state.Interval = 6
			state.SetLastReviewed(domain.ReviewModeWords, now)
			state.NextReview = now.AddDate(0, 0, 6)
			p.SetState(item, state)
		}
		return nil
	})
	require.NoError(t, err)

	rr := f.do(t, http.MethodPost, "/api/session/start", startBody)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestSessionHandler_GradeRequiresReveal(t *testing.T) {
	f := newSessionFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)

	rr := f.do(t, http.MethodPost, "/api/session/grade", `{"quality": 5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionHandler_FullRound(t *testing.T) {
	f := newSessionFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)

	rr := f.do(t, http.MethodPost, "/api/session/reveal", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/session/grade", `{"quality": 5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var feedback quiz.Feedback
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &feedback))
	assert.True(t, feedback.Correct)
	assert.Equal(t, 1, feedback.NextInterval)

	// Advancing serves the next card.
	rr = f.do(t, http.MethodPost, "/api/session/advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var card quiz.CardView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, "火", card.Item.Word)

	// Finish the last card; advance then reports the session summary.
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/session/reveal", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/session/grade", `{"quality": 4}`).Code)

	rr = f.do(t, http.MethodPost, "/api/session/advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var session quiz.SessionView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, quiz.StateCompleted, session.State)
	assert.Equal(t, 2, session.Correct)
	assert.Equal(t, 0, session.Wrong)
}

func TestSessionHandler_GradeValidation(t *testing.T) {
	f := newSessionFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/session/reveal", "").Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/session/grade", `{"quality": 6}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/session/grade", `{}`).Code)

	// Quality zero is a legal failing grade, not a missing field.
	rr := f.do(t, http.MethodPost, "/api/session/grade", `{"quality": 0}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSessionHandler_NoActiveSession(t *testing.T) {
	f := newSessionFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/session/current", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/session/reveal", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/session/quit", "").Code)
}

func TestSessionHandler_QuitClearsSession(t *testing.T) {
	f := newSessionFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)

	rr := f.do(t, http.MethodPost, "/api/session/quit", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	// The same items are immediately startable again.
	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/session/start", startBody).Code)
}
