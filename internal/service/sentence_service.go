// Package service provides application-level services sitting between the
// API surface and the domain packages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/generation"
	"github.com/Notinamillion/hanzi-review/internal/remote"
)

// ErrNoSentences indicates neither the remote catalog nor the generator
// could produce sentences. The API layer maps this to HTTP 404.
var ErrNoSentences = errors.New("no example sentences available")

// defaultSentenceCount is how many sentences the generator is asked for
// when the remote catalog has none.
const defaultSentenceCount = 3

// SentenceService serves example sentences: the remote catalog first, the
// language-model generator as fallback when the remote cannot help.
type SentenceService struct {
	client    remote.Client
	generator generation.Generator // may be nil when generation is disabled
	logger    *slog.Logger
}

// NewSentenceService creates a sentence service. The generator may be nil;
// lookups then rely on the remote alone.
func NewSentenceService(client remote.Client, generator generation.Generator, logger *slog.Logger) *SentenceService {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SentenceService{
		client:    client,
		generator: generator,
		logger:    logger.With(slog.String("component", "sentence_service")),
	}
}

// GetSentences returns example sentences for a character or compound.
func (s *SentenceService) GetSentences(ctx context.Context, word string) ([]domain.ExampleSentence, error) {
	sentences, err := s.client.GetSentences(ctx, word)
	if err == nil && len(sentences) > 0 {
		return sentences, nil
	}

	if err != nil && !remote.IsNetworkError(err) && !errors.Is(err, remote.ErrNoRemote) {
		return nil, fmt.Errorf("failed to fetch sentences: %w", err)
	}

	if s.generator == nil {
		if err != nil {
			s.logger.Debug("remote sentence lookup failed and no generator configured",
				"word", word, "error", err)
		}
		return nil, ErrNoSentences
	}

	s.logger.Info("falling back to sentence generation", "word", word)
	generated, genErr := s.generator.GenerateSentences(ctx, word, defaultSentenceCount)
	if genErr != nil {
		s.logger.Warn("sentence generation fallback failed", "word", word, "error", genErr)
		return nil, ErrNoSentences
	}
	return generated, nil
}
