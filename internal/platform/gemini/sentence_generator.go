// Package gemini implements generation.Generator against Google's Gemini
// API. It owns prompt construction, response parsing, and the retry policy
// for transient API failures.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/generation"
)

const (
	defaultMaxRetries       = 3
	defaultBaseDelaySeconds = 2
)

// promptTemplate asks for a strict JSON array so the response parses
// without markdown stripping heuristics.
const promptTemplate = `You are a Chinese language tutor. Write {{.Count}} short, natural example sentences in simplified Chinese using the word "{{.Word}}". Each sentence should be suitable for an intermediate learner.

Respond with ONLY a JSON array, no surrounding text or code fences, where each element has this shape:
{"hanzi": "<sentence in simplified Chinese>", "pinyin": "<pinyin with tone marks>", "english": "<English translation>"}`

// SentenceGenerator implements generation.Generator using the Gemini API.
type SentenceGenerator struct {
	logger   *slog.Logger
	client   *genai.Client
	model    string
	template *template.Template

	maxRetries int
	baseDelay  time.Duration
	sleepFunc  func(ctx context.Context, d time.Duration) error
}

// NewSentenceGenerator creates a Gemini-backed sentence generator.
func NewSentenceGenerator(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*SentenceGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	tmpl, err := template.New("sentences").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &SentenceGenerator{
		logger:     logger.With(slog.String("component", "sentence_generator")),
		client:     client,
		model:      modelName,
		template:   tmpl,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelaySeconds * time.Second,
		sleepFunc:  sleepWithContext,
	}, nil
}

// GenerateSentences implements generation.Generator.
func (g *SentenceGenerator) GenerateSentences(ctx context.Context, word string, count int) ([]domain.ExampleSentence, error) {
	if strings.TrimSpace(word) == "" {
		return nil, generation.ErrEmptyWord
	}
	if count <= 0 {
		count = 3
	}

	prompt, err := g.buildPrompt(word, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	sentences, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "generated example sentences",
		"word", word,
		"requested", count,
		"received", len(sentences))
	return sentences, nil
}

func (g *SentenceGenerator) buildPrompt(word string, count int) (string, error) {
	var sb strings.Builder
	err := g.template.Execute(&sb, struct {
		Word  string
		Count int
	}{Word: word, Count: count})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// callWithRetry calls the API with exponential backoff and jitter.
// Permanent errors (blocked content, unparseable responses) return
// immediately; only transport-level failures are retried.
func (g *SentenceGenerator) callWithRetry(ctx context.Context, prompt string) ([]domain.ExampleSentence, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		sentences, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			return sentences, nil
		}

		g.logger.WarnContext(ctx, "sentence generation attempt failed",
			"attempt", attempt+1,
			"transient", transient,
			"error", err)

		if !transient {
			return nil, err
		}
		if attempt >= g.maxRetries {
			return nil, fmt.Errorf("%w: exceeded %d retry attempts: %v",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
		if serr := g.sleepFunc(ctx, delay); serr != nil {
			return nil, fmt.Errorf("%w: cancelled during retry delay: %v",
				generation.ErrTransientFailure, serr)
		}
	}
}

// callOnce performs one API round trip. The transient return reports
// whether a failure is worth retrying.
func (g *SentenceGenerator) callOnce(ctx context.Context, prompt string) ([]domain.ExampleSentence, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, true, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	sentences, err := parseSentences(text.String())
	if err != nil {
		return nil, false, err
	}
	return sentences, false, nil
}

// parseSentences decodes the model's JSON array, tolerating the code fences
// some models add despite instructions.
func parseSentences(raw string) ([]domain.ExampleSentence, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var sentences []domain.ExampleSentence
	if err := json.Unmarshal([]byte(trimmed), &sentences); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: response contained no sentences", generation.ErrInvalidResponse)
	}
	for _, s := range sentences {
		if strings.TrimSpace(s.Hanzi) == "" {
			return nil, fmt.Errorf("%w: sentence with empty hanzi", generation.ErrInvalidResponse)
		}
	}
	return sentences, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
