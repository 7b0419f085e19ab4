package domain

import (
	"errors"
	"time"
)

// Common validation errors for ReviewState
var (
	ErrInvalidScore    = errors.New("score must be between 0 and 5")
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEasiness = errors.New("easiness must be at least 1.3")
)

// MinEasiness is the floor for the easiness factor, below which intervals
// would shrink too aggressively to be useful.
const MinEasiness = 1.3

// DefaultEasiness is the starting easiness factor for an item that has
// never been reviewed.
const DefaultEasiness = 2.5

// ReviewState tracks the spaced-repetition scheduling state for a single
// review item. It is created lazily on the first grading of an item and
// retained forever afterwards for analytics and history.
//
// Invariant: NextReview == LastReviewed + Interval days.
type ReviewState struct {
	Score              int     `json:"score"`               // 0..5 rolling familiarity score
	Attempts           int     `json:"attempts"`            // Total gradings
	Correct            int     `json:"correct"`             // Total correct gradings
	Wrong              int     `json:"wrong"`               // Wrong answers since the last correct one
	Interval           int     `json:"interval"`            // Current interval in days
	Easiness           float64 `json:"easiness"`            // Easiness factor, floored at 1.3
	ConsecutiveCorrect int     `json:"consecutive_correct"` // Correct answers in a row

	// Per-mode last-reviewed stamps plus the legacy combined stamp.
	LastReviewedWord     time.Time `json:"last_reviewed_word,omitempty"`
	LastReviewedAudio    time.Time `json:"last_reviewed_audio,omitempty"`
	LastReviewedSentence time.Time `json:"last_reviewed_sentence,omitempty"`
	LastReviewed         time.Time `json:"last_reviewed,omitempty"`

	NextReview time.Time `json:"next_review,omitempty"`
}

// NewReviewState creates the state an item holds before its first grading.
// The scheduler treats a nil prior state identically; this exists so stores
// and tests have a canonical zero value.
func NewReviewState() *ReviewState {
	return &ReviewState{
		Easiness: DefaultEasiness,
	}
}

// Validate checks if the ReviewState has valid data.
// Returns an error if any field fails validation.
func (s *ReviewState) Validate() error {
	if s.Score < 0 || s.Score > 5 {
		return ErrInvalidScore
	}
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.Easiness < MinEasiness {
		return ErrInvalidEasiness
	}
	return nil
}

// Clone returns a deep copy of the state. The scheduler follows an
// immutable-update pattern: it never writes through a prior state pointer.
func (s *ReviewState) Clone() *ReviewState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// LastReviewedFor returns the last-reviewed stamp for the given mode.
func (s *ReviewState) LastReviewedFor(mode ReviewMode) time.Time {
	switch mode {
	case ReviewModeAudio:
		return s.LastReviewedAudio
	case ReviewModeSentence:
		return s.LastReviewedSentence
	default:
		return s.LastReviewedWord
	}
}

// SetLastReviewed sets the per-mode stamp for the given mode along with the
// legacy combined stamp.
func (s *ReviewState) SetLastReviewed(mode ReviewMode, t time.Time) {
	switch mode {
	case ReviewModeAudio:
		s.LastReviewedAudio = t
	case ReviewModeSentence:
		s.LastReviewedSentence = t
	default:
		s.LastReviewedWord = t
	}
	s.LastReviewed = t
}
