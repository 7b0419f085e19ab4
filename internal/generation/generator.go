// Package generation defines the boundary to external language-model
// services. The app uses it to produce example sentences for a character
// or compound when the remote catalog has none or is unreachable.
package generation

import (
	"context"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Generator produces example sentences for a review item.
type Generator interface {
	// GenerateSentences creates up to count example sentences using the
	// given word. Sentences come back with hanzi, pinyin, and an English
	// translation. See errors.go for the failure taxonomy.
	GenerateSentences(ctx context.Context, word string, count int) ([]domain.ExampleSentence, error)
}
