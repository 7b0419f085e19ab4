package api

import (
	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Common request/response structures

// LoginRequest defines the payload for the passcode login endpoint.
type LoginRequest struct {
	Passcode string `json:"passcode" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// Token is the bearer token for subsequent API calls
	Token string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// ItemPayload is a review item as supplied by the client.
type ItemPayload struct {
	Word     string   `json:"word"      validate:"required"`
	Type     string   `json:"type"      validate:"required,oneof=character compound sentence"`
	Pinyin   string   `json:"pinyin"    validate:"omitempty"`
	Meanings []string `json:"meanings"  validate:"omitempty"`
	Parent   string   `json:"parent"    validate:"omitempty"`
}

// StartSessionRequest defines the payload for starting a quiz session.
type StartSessionRequest struct {
	Mode         string        `json:"mode"          validate:"required,oneof=words audio sentence"`
	PracticeMode bool          `json:"practice_mode"`
	Items        []ItemPayload `json:"items"         validate:"required,min=1,dive"`
}

// GradeRequest defines the payload for grading the current card.
type GradeRequest struct {
	Quality *int `json:"quality" validate:"required,gte=0,lte=5"`
}

// SetKnownRequest defines the payload for toggling an item's known status.
type SetKnownRequest struct {
	Item  ItemPayload `json:"item"  validate:"required"`
	Known *bool       `json:"known" validate:"required"`
}

// SyncStatusResponse reports the sync queue's health.
type SyncStatusResponse struct {
	Online  bool `json:"online"`
	Pending int  `json:"pending"`
}

// SentencesResponse wraps example sentences for a word.
type SentencesResponse struct {
	Word      string                   `json:"word"`
	Sentences []domain.ExampleSentence `json:"sentences"`
}

// toDomainItem converts a payload item into its domain form.
func (p ItemPayload) toDomainItem() domain.ReviewItem {
	return domain.ReviewItem{
		Word:     p.Word,
		Type:     domain.ItemType(p.Type),
		Pinyin:   p.Pinyin,
		Meanings: p.Meanings,
		Parent:   p.Parent,
	}
}
