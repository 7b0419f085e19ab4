package domain

// ProgressVersion is the current schema version of the persisted aggregate.
// Loads of older (or missing) versions are normalized on read rather than
// rejected.
const ProgressVersion = 1

// CharacterProgress is the per-character slice of the progress aggregate.
type CharacterProgress struct {
	Known     bool         `json:"known"`
	QuizScore *ReviewState `json:"quiz_score,omitempty"`
}

// CompoundProgress groups the compound words filed under one parent
// character: which words the learner marked known, and the review state for
// each word that has been graded at least once.
type CompoundProgress struct {
	Known      []string                `json:"known"`
	QuizScores map[string]*ReviewState `json:"quiz_scores"`
}

// Progress is the local durable snapshot of all per-item review state plus
// the session statistics aggregate. It is logically single-writer: every
// mutation is a read-merge-write over the whole structure, because grading,
// known-toggling and session-stat updates all touch disjoint parts of the
// same aggregate.
type Progress struct {
	Version    int                           `json:"version"`
	Characters map[string]*CharacterProgress `json:"character_progress"`
	Compounds  map[string]*CompoundProgress  `json:"compound_progress"`
	Statistics Statistics                    `json:"statistics"`
}

// NewProgress returns an empty aggregate with all nested maps initialized.
func NewProgress() *Progress {
	p := &Progress{Version: ProgressVersion}
	p.Normalize()
	return p
}

// Normalize initializes any nested maps that are missing after a load.
// Persisted blobs written by older app versions may lack whole sections, so
// no reader may assume a nested key exists.
func (p *Progress) Normalize() {
	if p.Version == 0 {
		p.Version = ProgressVersion
	}
	if p.Characters == nil {
		p.Characters = make(map[string]*CharacterProgress)
	}
	if p.Compounds == nil {
		p.Compounds = make(map[string]*CompoundProgress)
	}
	for _, cp := range p.Compounds {
		if cp.Known == nil {
			cp.Known = []string{}
		}
		if cp.QuizScores == nil {
			cp.QuizScores = make(map[string]*ReviewState)
		}
	}
	if p.Statistics.DailyStats == nil {
		p.Statistics.DailyStats = make(map[string]*DailyStat)
	}
}

// StateFor returns the review state for the given item, or nil if the item
// has never been graded. Sentence items share their character's state.
func (p *Progress) StateFor(item ReviewItem) *ReviewState {
	switch item.Type {
	case ItemTypeCompound:
		cp, ok := p.Compounds[item.Parent]
		if !ok {
			return nil
		}
		return cp.QuizScores[item.Word]
	default:
		cp, ok := p.Characters[item.Word]
		if !ok {
			return nil
		}
		return cp.QuizScore
	}
}

// SetState stores the review state for the given item, creating the
// enclosing entry if the item has never been seen before.
func (p *Progress) SetState(item ReviewItem, state *ReviewState) {
	switch item.Type {
	case ItemTypeCompound:
		cp, ok := p.Compounds[item.Parent]
		if !ok {
			cp = &CompoundProgress{Known: []string{}, QuizScores: make(map[string]*ReviewState)}
			p.Compounds[item.Parent] = cp
		}
		cp.QuizScores[item.Word] = state
	default:
		cp, ok := p.Characters[item.Word]
		if !ok {
			cp = &CharacterProgress{}
			p.Characters[item.Word] = cp
		}
		cp.QuizScore = state
	}
}

// SetKnown toggles the learner's "known" marker for the given item.
func (p *Progress) SetKnown(item ReviewItem, known bool) {
	switch item.Type {
	case ItemTypeCompound:
		cp, ok := p.Compounds[item.Parent]
		if !ok {
			cp = &CompoundProgress{Known: []string{}, QuizScores: make(map[string]*ReviewState)}
			p.Compounds[item.Parent] = cp
		}
		idx := -1
		for i, w := range cp.Known {
			if w == item.Word {
				idx = i
				break
			}
		}
		if known && idx < 0 {
			cp.Known = append(cp.Known, item.Word)
		}
		if !known && idx >= 0 {
			cp.Known = append(cp.Known[:idx], cp.Known[idx+1:]...)
		}
	default:
		cp, ok := p.Characters[item.Word]
		if !ok {
			cp = &CharacterProgress{}
			p.Characters[item.Word] = cp
		}
		cp.Known = known
	}
}

// Known reports whether the learner has marked the given item known.
func (p *Progress) Known(item ReviewItem) bool {
	switch item.Type {
	case ItemTypeCompound:
		cp, ok := p.Compounds[item.Parent]
		if !ok {
			return false
		}
		for _, w := range cp.Known {
			if w == item.Word {
				return true
			}
		}
		return false
	default:
		cp, ok := p.Characters[item.Word]
		return ok && cp.Known
	}
}
