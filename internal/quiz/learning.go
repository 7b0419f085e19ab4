package quiz

import "github.com/Notinamillion/hanzi-review/internal/domain"

// Learning queue intervals start at baseLearningGap cards and double on
// every repeated failure within the session.
const (
	baseLearningGap = 5
	maxLearningStep = 2 // 5, 10, 20
)

// learningEntry is a failed card waiting to be re-shown. cardsUntil counts
// down on every advance; at zero the card is spliced back into the batch.
type learningEntry struct {
	item       domain.ReviewItem
	cardsUntil int
}

// learningSet holds the session's failed cards in failure order. Step
// history survives a card's round trip through the batch so a second
// failure in the same session doubles the gap.
type learningSet struct {
	entries []*learningEntry
	steps   map[string]int
}

func newLearningSet() *learningSet {
	return &learningSet{steps: make(map[string]int)}
}

func itemKey(item domain.ReviewItem) string {
	return string(item.Type) + "/" + item.Word
}

// fail records a failure for the item and returns the cards-until-review
// gap. A first failure waits 5 cards, a second 10, and every failure after
// that stays capped at 20.
func (l *learningSet) fail(item domain.ReviewItem) int {
	key := itemKey(item)
	step, seen := l.steps[key]
	if seen && step < maxLearningStep {
		step++
	}
	l.steps[key] = step
	gap := baseLearningGap << step

	for _, e := range l.entries {
		if itemKey(e.item) == key {
			e.cardsUntil = gap
			return gap
		}
	}
	l.entries = append(l.entries, &learningEntry{item: item, cardsUntil: gap})
	return gap
}

// tick decrements every counter and returns the items that just came due,
// removing them from the set so each failure splices back exactly once.
func (l *learningSet) tick() []domain.ReviewItem {
	var due []domain.ReviewItem
	remaining := l.entries[:0]
	for _, e := range l.entries {
		e.cardsUntil--
		if e.cardsUntil <= 0 {
			due = append(due, e.item)
		} else {
			remaining = append(remaining, e)
		}
	}
	l.entries = remaining
	return due
}

// drain removes and returns every pending item regardless of its counter.
// Used when the batch runs out so no failed card is silently dropped.
func (l *learningSet) drain() []domain.ReviewItem {
	items := make([]domain.ReviewItem, 0, len(l.entries))
	for _, e := range l.entries {
		items = append(items, e.item)
	}
	l.entries = nil
	return items
}

// size returns the number of cards still waiting to be re-shown.
func (l *learningSet) size() int {
	return len(l.entries)
}
