package srs

import (
	"errors"
	"time"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	ErrInvalidMode    = errors.New("invalid review mode")
)

// Service defines the interface for review scheduling operations.
type Service interface {
	// CalculateNextReview computes the post-review state from a quality
	// grade. A nil prior state means the item has never been graded. The
	// call is pure and deterministic: identical inputs yield identical
	// output, and the prior state is never modified.
	CalculateNextReview(
		prior *domain.ReviewState,
		quality int,
		mode domain.ReviewMode,
		now time.Time,
	) (*domain.ReviewState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// CalculateNextReview implements the Service interface.
func (s *defaultService) CalculateNextReview(
	prior *domain.ReviewState,
	quality int,
	mode domain.ReviewMode,
	now time.Time,
) (*domain.ReviewState, error) {
	// Validate before any computation; a bad grade must not mutate anything.
	if quality < 0 || quality > 5 {
		return nil, ErrInvalidQuality
	}
	if !mode.IsValid() {
		return nil, ErrInvalidMode
	}

	return calculateNext(prior, quality, mode, now, s.params), nil
}
