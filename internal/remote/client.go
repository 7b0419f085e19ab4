// Package remote talks to the opaque remote store. The wire contract is
// deliberately thin: every call either succeeds or fails, and transport
// failures surface as *NetworkError for the sync queue's retry policy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Client is the remote store consumed by the sync queue and the sentence
// lookup path.
type Client interface {
	// SaveProgress pushes the serialized progress aggregate.
	SaveProgress(ctx context.Context, data json.RawMessage) error

	// GetProgress pulls the remote copy of the progress aggregate.
	GetProgress(ctx context.Context) (json.RawMessage, error)

	// LogQuizAttempt records one grading event. Fire-and-forget: callers
	// may drop the error after logging it.
	LogQuizAttempt(ctx context.Context, record json.RawMessage) error

	// GetSentences fetches example sentences for a character or word.
	GetSentences(ctx context.Context, word string) ([]domain.ExampleSentence, error)
}

// HTTPClient implements Client against a JSON-over-HTTP remote.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a remote client. The timeout applies to every call
// and a timed-out call counts as a retryable network failure.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "remote_client")),
	}
}

// SaveProgress implements Client.SaveProgress.
func (c *HTTPClient) SaveProgress(ctx context.Context, data json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPost, "/progress", "save_progress", data)
	return err
}

// GetProgress implements Client.GetProgress.
func (c *HTTPClient) GetProgress(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/progress", "get_progress", nil)
}

// LogQuizAttempt implements Client.LogQuizAttempt.
func (c *HTTPClient) LogQuizAttempt(ctx context.Context, record json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPost, "/quiz-attempts", "log_quiz_attempt", record)
	return err
}

// GetSentences implements Client.GetSentences.
func (c *HTTPClient) GetSentences(ctx context.Context, word string) ([]domain.ExampleSentence, error) {
	body, err := c.do(ctx, http.MethodGet, "/sentences/"+url.PathEscape(word), "get_sentences", nil)
	if err != nil {
		return nil, err
	}

	var sentences []domain.ExampleSentence
	if err := json.Unmarshal(body, &sentences); err != nil {
		return nil, fmt.Errorf("failed to decode sentences response: %w", err)
	}
	return sentences, nil
}

// Probe issues a cheap request against the remote, for connectivity
// monitoring. A nil error means the remote is reachable.
func (c *HTTPClient) Probe(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", "probe", nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path, op string, payload json.RawMessage) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrNoRemote
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("failed to close response body", "op", op, "error", cerr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return data, nil
}
