package domain

import "errors"

// ItemType identifies what kind of vocabulary entry a ReviewItem refers to.
type ItemType string

// Possible item type values
const (
	ItemTypeCharacter ItemType = "character"
	ItemTypeCompound  ItemType = "compound"
	ItemTypeSentence  ItemType = "sentence"
)

// ReviewMode identifies which quiz mode an item is being reviewed in.
// An item graduates through word-mode review before it becomes eligible
// for audio or sentence review.
type ReviewMode string

// Possible review mode values
const (
	ReviewModeWords    ReviewMode = "words"
	ReviewModeAudio    ReviewMode = "audio"
	ReviewModeSentence ReviewMode = "sentence"
)

// Common validation errors for ReviewItem
var (
	ErrEmptyWord       = errors.New("review item word cannot be empty")
	ErrInvalidItemType = errors.New("invalid review item type")
	ErrInvalidMode     = errors.New("invalid review mode")
)

// ReviewItem is a single quizzable vocabulary entry. Identity is the
// (Word, Type) pair; the display fields are owned by the data catalog and
// carried through unmodified.
type ReviewItem struct {
	Word     string   `json:"word"`
	Type     ItemType `json:"type"`
	Pinyin   string   `json:"pinyin,omitempty"`
	Meanings []string `json:"meanings,omitempty"`

	// Parent is the single character a compound word is filed under.
	// Empty for character and sentence items.
	Parent string `json:"parent,omitempty"`
}

// Validate checks if the ReviewItem has valid data.
func (i ReviewItem) Validate() error {
	if i.Word == "" {
		return ErrEmptyWord
	}
	if !i.Type.IsValid() {
		return ErrInvalidItemType
	}
	return nil
}

// IsValid reports whether the item type is one of the known values.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeCharacter, ItemTypeCompound, ItemTypeSentence:
		return true
	default:
		return false
	}
}

// IsValid reports whether the review mode is one of the known values.
func (m ReviewMode) IsValid() bool {
	switch m {
	case ReviewModeWords, ReviewModeAudio, ReviewModeSentence:
		return true
	default:
		return false
	}
}
