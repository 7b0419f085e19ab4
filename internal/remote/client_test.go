package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notinamillion/hanzi-review/internal/remote"
)

func newNopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPClient_SaveProgress(t *testing.T) {
	t.Parallel()

	var gotAuth, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/progress", r.URL.Path)
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "secret-token", 5*time.Second, newNopLogger())

	payload := json.RawMessage(`{"version":1,"character_progress":{"好":{"known":true}}}`)
	err := client.SaveProgress(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, string(payload), string(gotBody))
}

func TestHTTPClient_SaveProgress_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "", 5*time.Second, newNopLogger())

	err := client.SaveProgress(context.Background(), json.RawMessage(`{}`))

	require.Error(t, err)
	assert.True(t, remote.IsNetworkError(err), "5xx responses must surface as network errors")
}

func TestHTTPClient_SaveProgress_Unreachable(t *testing.T) {
	t.Parallel()

	// Reserve an address and close the listener so the dial fails fast.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := remote.NewHTTPClient(addr, "", time.Second, newNopLogger())

	err := client.SaveProgress(context.Background(), json.RawMessage(`{}`))

	require.Error(t, err)
	assert.True(t, remote.IsNetworkError(err))
}

func TestHTTPClient_NoRemoteConfigured(t *testing.T) {
	t.Parallel()

	client := remote.NewHTTPClient("", "", time.Second, newNopLogger())

	err := client.SaveProgress(context.Background(), json.RawMessage(`{}`))

	assert.ErrorIs(t, err, remote.ErrNoRemote)
	assert.False(t, remote.IsNetworkError(err), "missing configuration is not a transient failure")
}

func TestHTTPClient_GetProgress(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/progress", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":1,"character_progress":{"水":{"known":true}}}`))
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "", 5*time.Second, newNopLogger())

	got, err := client.GetProgress(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"character_progress":{"水":{"known":true}}}`, string(got))
}

func TestHTTPClient_LogQuizAttempt(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/quiz-attempts", r.URL.Path)
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "", 5*time.Second, newNopLogger())

	record := json.RawMessage(`{"word":"学习","mode":"words","quality":4}`)
	err := client.LogQuizAttempt(context.Background(), record)

	require.NoError(t, err)
	assert.JSONEq(t, string(record), string(gotBody))
}

func TestHTTPClient_GetSentences(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sentences/%E5%AD%A6", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"hanzi":"我在学中文。","pinyin":"wǒ zài xué zhōngwén","english":"I am learning Chinese."}]`))
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "", 5*time.Second, newNopLogger())

	got, err := client.GetSentences(context.Background(), "学")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "我在学中文。", got[0].Hanzi)
}

func TestHTTPClient_Probe(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remote.NewHTTPClient(server.URL, "", time.Second, newNopLogger())
	require.NoError(t, client.Probe(context.Background()))

	server.Close()
	assert.Error(t, client.Probe(context.Background()))
}
