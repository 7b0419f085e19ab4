package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

func TestCalculateNextReview_RejectsOutOfRangeQuality(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	for _, quality := range []int{-1, 6, 42} {
		next, err := svc.CalculateNextReview(nil, quality, domain.ReviewModeWords, now)
		require.ErrorIs(t, err, ErrInvalidQuality, "quality %d", quality)
		assert.Nil(t, next)
	}
}

func TestCalculateNextReview_RejectsUnknownMode(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	next, err := svc.CalculateNextReview(nil, 4, domain.ReviewMode("video"), time.Now().UTC())
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.Nil(t, next)
}

func TestCalculateNextReview_NilPriorIsNewItem(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	next, err := svc.CalculateNextReview(nil, 3, domain.ReviewModeWords, now)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Attempts)
	assert.Equal(t, 1, next.Correct)
	assert.Equal(t, 1, next.Interval)
	assert.Equal(t, 1, next.Score)
}

func TestCalculateNextReview_Deterministic(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	prior := &domain.ReviewState{Score: 3, Attempts: 6, Correct: 5, Interval: 15, Easiness: 2.3, ConsecutiveCorrect: 2}

	first, err := svc.CalculateNextReview(prior, 4, domain.ReviewModeWords, now)
	require.NoError(t, err)
	second, err := svc.CalculateNextReview(prior, 4, domain.ReviewModeWords, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateNextReview_CustomParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	params.SecondInterval = 4
	svc := NewServiceWithParams(params)
	now := time.Now().UTC()

	prior := &domain.ReviewState{Correct: 1, Interval: 1, Easiness: 2.5, Score: 1}
	next, err := svc.CalculateNextReview(prior, 5, domain.ReviewModeWords, now)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Interval)
}
