// Package priority categorizes a pool of review items by urgency and ranks
// them for batch selection. Categories come from the scheduling state the
// scheduler produced; the numeric weights are tuned constants carried over
// from long-running app behavior rather than derived from anything.
package priority

import (
	"sort"
	"time"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// Category labels an item's scheduling position relative to now.
type Category string

// Possible category values
const (
	CategoryNew           Category = "new"
	CategoryOverdue       Category = "overdue"
	CategoryDueToday      Category = "due-today"
	CategoryReviewedToday Category = "reviewed-today"
	CategoryNotDue        Category = "not-due"
)

// Classified is a review item tagged with its category and urgency weight.
type Classified struct {
	Item     domain.ReviewItem
	State    *domain.ReviewState
	Category Category
	Priority int
}

// Weights holds the urgency constants. The values are ad hoc; equal
// priorities keep their input order because ranking uses a stable sort.
type Weights struct {
	OverdueBase    int // plus OverduePerDay for each full day overdue
	OverduePerDay  int
	DueToday       int
	Struggling     int // score < 2
	RecentlyWrong  int // wrong > 0 within the last 24h
	Learning       int // score < 4
	Good           int // score == 4
	Mastered       int // score == 5
	New            int // no prior state
	StrugglingMax  int // score threshold for Struggling
	LearningMax    int // score threshold for Learning
	RecentlyWrongH int // hours that count as "recent"
}

// DefaultWeights returns the standard urgency constants.
func DefaultWeights() Weights {
	return Weights{
		OverdueBase:    100,
		OverduePerDay:  10,
		DueToday:       90,
		Struggling:     80,
		RecentlyWrong:  70,
		Learning:       60,
		Good:           40,
		Mastered:       30,
		New:            50,
		StrugglingMax:  2,
		LearningMax:    4,
		RecentlyWrongH: 24,
	}
}

// Classifier tags and ranks review items.
type Classifier struct {
	weights Weights
}

// NewClassifier creates a classifier with the given weights.
func NewClassifier(weights Weights) *Classifier {
	return &Classifier{weights: weights}
}

// NewDefaultClassifier creates a classifier with the default weights.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultWeights())
}

// Classify tags every eligible item in the pool with a category and a
// priority, returning the result sorted by descending priority. Ties keep
// their input order (stable sort; no further tie-break is defined).
//
// For audio and sentence modes, items that have never been reviewed in word
// mode are excluded entirely unless practiceMode is set: an item must
// graduate through word-mode review first.
func (c *Classifier) Classify(
	items []domain.ReviewItem,
	progress *domain.Progress,
	mode domain.ReviewMode,
	now time.Time,
	practiceMode bool,
) []Classified {
	out := make([]Classified, 0, len(items))

	for _, item := range items {
		state := progress.StateFor(item)

		if !eligibleForMode(state, mode, practiceMode) {
			continue
		}

		category := c.categorize(state, mode, now)
		out = append(out, Classified{
			Item:     item,
			State:    state,
			Category: category,
			Priority: c.priority(state, category, now),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	return out
}

// eligibleForMode applies the word-mode graduation gate.
func eligibleForMode(state *domain.ReviewState, mode domain.ReviewMode, practiceMode bool) bool {
	if mode == domain.ReviewModeWords || practiceMode {
		return true
	}
	return state != nil && !state.LastReviewedWord.IsZero()
}

func (c *Classifier) categorize(state *domain.ReviewState, mode domain.ReviewMode, now time.Time) Category {
	if state == nil {
		return CategoryNew
	}
	if !now.Before(state.NextReview) {
		return CategoryOverdue
	}
	if !state.NextReview.After(endOfDay(now)) {
		return CategoryDueToday
	}
	if reviewedTodayInMode(state, mode, now) {
		return CategoryReviewedToday
	}
	return CategoryNotDue
}

// priority applies the weight rules as a first-match chain: scheduling
// urgency (overdue, due today) wins over familiarity-based weights.
func (c *Classifier) priority(state *domain.ReviewState, category Category, now time.Time) int {
	w := c.weights

	switch category {
	case CategoryOverdue:
		return w.OverdueBase + w.OverduePerDay*daysOverdue(state, now)
	case CategoryDueToday:
		return w.DueToday
	case CategoryNew:
		return w.New
	}

	switch {
	case state.Score < w.StrugglingMax:
		return w.Struggling
	case state.Wrong > 0 && now.Sub(state.LastReviewed) < time.Duration(w.RecentlyWrongH)*time.Hour:
		return w.RecentlyWrong
	case state.Score < w.LearningMax:
		return w.Learning
	case state.Score == w.LearningMax:
		return w.Good
	default:
		return w.Mastered
	}
}

func daysOverdue(state *domain.ReviewState, now time.Time) int {
	overdue := now.Sub(state.NextReview)
	if overdue < 0 {
		return 0
	}
	return int(overdue / (24 * time.Hour))
}

func reviewedTodayInMode(state *domain.ReviewState, mode domain.ReviewMode, now time.Time) bool {
	last := state.LastReviewedFor(mode)
	return !last.IsZero() && !last.Before(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
