package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionType identifies the remote call a queued sync action maps to.
type ActionType string

// Possible sync action types
const (
	ActionSaveProgress   ActionType = "SAVE_PROGRESS"
	ActionLogQuizAttempt ActionType = "LOG_QUIZ_ATTEMPT"
)

// SyncAction is one pending state mutation awaiting delivery to the remote
// store. Actions live in a persisted FIFO queue and are removed only on a
// confirmed remote acknowledgment or after exhausting their retry budget.
type SyncAction struct {
	ID        uuid.UUID       `json:"id"`
	Type      ActionType      `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Attempts  int             `json:"attempts"`
}

// QuizAttemptRecord is the payload of an ActionLogQuizAttempt action.
type QuizAttemptRecord struct {
	Word      string     `json:"word"`
	Type      ItemType   `json:"type"`
	Mode      ReviewMode `json:"mode"`
	Quality   int        `json:"quality"`
	Timestamp time.Time  `json:"timestamp"`
}
