// Package quiz runs review sessions: batch selection, card presentation,
// grading through the scheduler, and the short-term learning queue that
// re-shows failed cards within the same session.
package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Common errors
var (
	// ErrNoActiveSession is returned by card operations outside a session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionInProgress is returned by StartSession while a session is
	// already running.
	ErrSessionInProgress = errors.New("a session is already in progress")

	// ErrAllCaughtUp is returned by StartSession when nothing is due and no
	// new items remain. Callers may retry with practice mode to review
	// ahead of schedule.
	ErrAllCaughtUp = errors.New("nothing due for review")

	// ErrInvalidTransition is returned when an operation does not apply to
	// the session's current state.
	ErrInvalidTransition = errors.New("operation not valid in current session state")
)

// State is the session lifecycle position.
type State string

// Session states
const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting-mode"
	StateLoaded     State = "batch-loaded"
	StatePresenting State = "presenting"
	StateRevealed   State = "revealed"
	StateFeedback   State = "feedback"
	StateCompleted  State = "completed"
)

// entryStatus tracks a card's position in the current batch.
type entryStatus int

const (
	statusPending entryStatus = iota
	statusAnswered
	statusLapsed
)

// queueEntry is one card in the active batch.
type queueEntry struct {
	item   domain.ReviewItem
	status entryStatus
}

// CardView is what the presentation layer sees for the current card.
type CardView struct {
	Item      domain.ReviewItem `json:"item"`
	State     State             `json:"state"`
	Position  int               `json:"position"`
	BatchSize int               `json:"batch_size"`
	Remaining int               `json:"remaining"`
}

// SessionView summarizes the running session.
type SessionView struct {
	ID           uuid.UUID         `json:"id"`
	Mode         domain.ReviewMode `json:"mode"`
	State        State             `json:"state"`
	PracticeMode bool              `json:"practice_mode"`
	StartedAt    time.Time         `json:"started_at"`
	Total        int               `json:"total"`
	Correct      int               `json:"correct"`
	Wrong        int               `json:"wrong"`
	Remaining    int               `json:"remaining"`
}

// Feedback is the grading outcome returned to the presentation layer.
type Feedback struct {
	Quality      int  `json:"quality"`
	Correct      bool `json:"correct"`
	NextInterval int  `json:"next_interval_days"`
	Score        int  `json:"score"`
	SeeAgainIn   int  `json:"see_again_in,omitempty"` // cards until a failed item returns
	AutoAdvance  bool `json:"auto_advance"`
}
