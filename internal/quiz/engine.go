package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Notinamillion/hanzi-review/internal/audio"
	"github.com/Notinamillion/hanzi-review/internal/domain"
	"github.com/Notinamillion/hanzi-review/internal/domain/priority"
	"github.com/Notinamillion/hanzi-review/internal/domain/srs"
	"github.com/Notinamillion/hanzi-review/internal/store"
	"github.com/Notinamillion/hanzi-review/internal/syncqueue"
)

// Config tunes session behavior.
type Config struct {
	// BatchSize is the number of cards loaded per batch.
	BatchSize int

	// AutoAdvance is how long the feedback screen lingers before the
	// session advances on its own. Zero disables auto-advance.
	AutoAdvance time.Duration
}

// DefaultConfig returns the session tuning used when configuration leaves
// the quiz section empty.
func DefaultConfig() Config {
	return Config{
		BatchSize:   10,
		AutoAdvance: 2 * time.Second,
	}
}

// Engine runs review sessions. One session at a time; all operations are
// serialized by an internal mutex so a grade and an advance can never
// interleave.
type Engine struct {
	mu sync.Mutex

	progressStore store.ProgressStore
	scheduler     srs.Service
	classifier    *priority.Classifier
	queue         *syncqueue.Queue
	speaker       audio.Speaker
	config        Config
	logger        *slog.Logger
	nowFunc       func() time.Time

	// session state, valid while state != StateIdle
	state        State
	sessionID    uuid.UUID
	mode         domain.ReviewMode
	practiceMode bool
	startedAt    time.Time
	candidates   []domain.ReviewItem // full candidate list for re-ranking
	seen         map[string]bool     // words already batched this session
	pool         []domain.ReviewItem // eligible remainder as of the last ranking
	batch        []*queueEntry
	position     int
	learning     *learningSet
	correct      int
	wrong        int
	graded       int

	// advanceTimer is the pending auto-advance, cancellable by Skip. Only
	// one timer is armed at a time.
	advanceTimer *time.Timer
}

// NewEngine creates a session engine. It panics if any dependency is nil;
// missing dependencies are a programming error, not a runtime condition.
func NewEngine(
	progressStore store.ProgressStore,
	scheduler srs.Service,
	classifier *priority.Classifier,
	queue *syncqueue.Queue,
	speaker audio.Speaker,
	config Config,
	logger *slog.Logger,
) *Engine {
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if queue == nil {
		panic("queue cannot be nil")
	}
	if speaker == nil {
		speaker = audio.NopSpeaker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	return &Engine{
		progressStore: progressStore,
		scheduler:     scheduler,
		classifier:    classifier,
		queue:         queue,
		speaker:       speaker,
		config:        config,
		logger:        logger.With(slog.String("component", "quiz_engine")),
		nowFunc:       time.Now,
		state:         StateIdle,
	}
}

// StartSession selects the session's item pool and loads the first batch.
// The pool is every overdue, due-today, and new item from the candidate
// list, ranked by urgency; in practice mode every eligible item qualifies
// regardless of due date. ErrAllCaughtUp means the pool came up empty.
func (e *Engine) StartSession(
	ctx context.Context,
	candidates []domain.ReviewItem,
	mode domain.ReviewMode,
	practiceMode bool,
) (*CardView, error) {
	if !mode.IsValid() {
		return nil, srs.ErrInvalidMode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle && e.state != StateCompleted {
		return nil, ErrSessionInProgress
	}

	progress, err := e.progressStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress for session: %w", err)
	}

	now := e.nowFunc()
	e.mode = mode
	e.practiceMode = practiceMode
	e.candidates = candidates
	e.seen = make(map[string]bool)
	e.batch = nil
	e.position = 0
	e.learning = newLearningSet()

	eligible := e.rankEligibleLocked(progress)
	if len(eligible) == 0 {
		return nil, ErrAllCaughtUp
	}

	e.sessionID = uuid.New()
	e.startedAt = now
	e.correct, e.wrong, e.graded = 0, 0, 0
	e.takeBatchLocked(eligible)
	e.state = StatePresenting

	// Persist the active-session marker so an interrupted session is
	// visible on the next start.
	if _, err := e.progressStore.Mutate(ctx, func(p *domain.Progress) error {
		p.Statistics.CurrentSession = &domain.SessionStats{
			ID:        e.sessionID,
			Mode:      mode,
			StartedAt: now,
		}
		return nil
	}); err != nil {
		e.state = StateIdle
		return nil, fmt.Errorf("failed to mark session start: %w", err)
	}

	e.logger.Info("session started",
		"session_id", e.sessionID,
		"mode", mode,
		"practice_mode", practiceMode,
		"pool_size", len(eligible))

	return e.currentCardLocked(), nil
}

// sessionWorthy reports whether a category belongs in a normal session.
func sessionWorthy(c priority.Category) bool {
	switch c {
	case priority.CategoryOverdue, priority.CategoryDueToday, priority.CategoryNew:
		return true
	default:
		return false
	}
}

// Current returns the card under review.
func (e *Engine) Current() (*CardView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || e.state == StateCompleted {
		return nil, ErrNoActiveSession
	}
	return e.currentCardLocked(), nil
}

// Session returns a summary of the running or just-completed session.
func (e *Engine) Session() (*SessionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return nil, ErrNoActiveSession
	}
	return &SessionView{
		ID:           e.sessionID,
		Mode:         e.mode,
		State:        e.state,
		PracticeMode: e.practiceMode,
		StartedAt:    e.startedAt,
		Total:        e.graded,
		Correct:      e.correct,
		Wrong:        e.wrong,
		Remaining:    e.remainingLocked(),
	}, nil
}

// Reveal flips the current card and plays its pronunciation. Audio failure
// is logged but never blocks the flow.
func (e *Engine) Reveal(ctx context.Context) (*CardView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle || e.state == StateCompleted {
		return nil, ErrNoActiveSession
	}
	if e.state != StatePresenting {
		return nil, ErrInvalidTransition
	}

	entry := e.batch[e.position]
	e.state = StateRevealed

	if _, err := e.speaker.Speak(ctx, entry.item.Word); err != nil {
		e.logger.Warn("pronunciation playback failed",
			"word", entry.item.Word,
			"error", err)
	}

	return e.currentCardLocked(), nil
}

// Grade applies a quality grade to the revealed card: the scheduler
// computes the new review state, the progress aggregate is mutated and
// persisted, and the change is queued for remote delivery. A failed card
// enters the learning queue and will be re-shown later in the session.
func (e *Engine) Grade(ctx context.Context, quality int) (*Feedback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle || e.state == StateCompleted {
		return nil, ErrNoActiveSession
	}
	if e.state != StateRevealed {
		return nil, ErrInvalidTransition
	}
	if e.position >= len(e.batch) {
		// State machine and cursor disagree. Log and refuse rather than
		// crash the session.
		e.logger.Error("grade requested past end of batch",
			"position", e.position,
			"batch_size", len(e.batch))
		return nil, ErrInvalidTransition
	}

	entry := e.batch[e.position]
	now := e.nowFunc()

	updated, err := e.progressStore.Mutate(ctx, func(p *domain.Progress) error {
		prior := p.StateFor(entry.item)
		next, serr := e.scheduler.CalculateNextReview(prior, quality, e.mode, now)
		if serr != nil {
			return serr
		}
		p.SetState(entry.item, next)
		p.Statistics.Milestones.TotalReviews++
		if p.Statistics.CurrentSession != nil {
			p.Statistics.CurrentSession.Total++
			if quality >= 3 {
				p.Statistics.CurrentSession.Correct++
			} else {
				p.Statistics.CurrentSession.Wrong++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply grade: %w", err)
	}

	passed := quality >= 3
	e.graded++
	feedback := &Feedback{
		Quality:     quality,
		Correct:     passed,
		AutoAdvance: e.config.AutoAdvance > 0,
	}
	if state := updated.StateFor(entry.item); state != nil {
		feedback.NextInterval = state.Interval
		feedback.Score = state.Score
	}

	if passed {
		e.correct++
		entry.status = statusAnswered
	} else {
		e.wrong++
		entry.status = statusLapsed
		feedback.SeeAgainIn = e.learning.fail(entry.item)
	}

	e.enqueueSyncLocked(ctx, updated, entry.item, quality, now)
	e.state = StateFeedback
	e.armAutoAdvanceLocked()

	return feedback, nil
}

// Advance moves past the feedback screen: learning counters tick down, any
// card that came due is spliced in right after the current position, and
// the cursor moves to the next unanswered card. When the batch and the
// pool are both exhausted the session completes.
func (e *Engine) Advance(ctx context.Context) (*CardView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceLocked(ctx)
}

// Skip cancels the pending auto-advance and moves on immediately.
func (e *Engine) Skip(ctx context.Context) (*CardView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelAutoAdvanceLocked()
	return e.advanceLocked(ctx)
}

func (e *Engine) advanceLocked(ctx context.Context) (*CardView, error) {
	if e.state == StateIdle || e.state == StateCompleted {
		return nil, ErrNoActiveSession
	}
	if e.state != StateFeedback {
		return nil, ErrInvalidTransition
	}
	e.cancelAutoAdvanceLocked()

	// Splice cards whose learning gap just elapsed directly after the
	// current position; each card returns exactly once per failure.
	due := e.learning.tick()
	if len(due) > 0 {
		insert := make([]*queueEntry, 0, len(due))
		for _, item := range due {
			insert = append(insert, &queueEntry{item: item})
		}
		at := e.position + 1
		e.batch = append(e.batch[:at], append(insert, e.batch[at:]...)...)
	}

	e.position++
	for e.position < len(e.batch) && e.batch[e.position].status == statusAnswered {
		e.position++
	}

	if e.position >= len(e.batch) {
		if err := e.loadNextBatchLocked(ctx); err != nil {
			return nil, err
		}
		if len(e.batch) == 0 && e.learning.size() > 0 {
			// No fresh cards remain; append the stragglers so every failed
			// card gets its re-review before the session ends.
			for _, item := range e.learning.drain() {
				e.batch = append(e.batch, &queueEntry{item: item})
			}
			e.position = 0
		}
	}

	if e.position >= len(e.batch) {
		if err := e.finishSessionLocked(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	e.state = StatePresenting
	return e.currentCardLocked(), nil
}

// QuitSession abandons the session without folding its counts into the
// daily statistics. The active-session marker is cleared.
func (e *Engine) QuitSession(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return ErrNoActiveSession
	}
	e.cancelAutoAdvanceLocked()

	if e.state != StateCompleted {
		if _, err := e.progressStore.Mutate(ctx, func(p *domain.Progress) error {
			p.Statistics.CurrentSession = nil
			return nil
		}); err != nil {
			return fmt.Errorf("failed to clear session marker: %w", err)
		}
		e.logger.Info("session abandoned", "session_id", e.sessionID, "graded", e.graded)
	}

	e.state = StateIdle
	return nil
}

// SetKnown toggles an item's known status outside the grading flow and
// queues the change for remote delivery.
func (e *Engine) SetKnown(ctx context.Context, item domain.ReviewItem, known bool) error {
	if err := item.Validate(); err != nil {
		return err
	}

	updated, err := e.progressStore.Mutate(ctx, func(p *domain.Progress) error {
		p.SetKnown(item, known)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to toggle known status: %w", err)
	}

	data, err := json.Marshal(updated)
	if err != nil {
		e.logger.Error("failed to encode progress for sync", "error", err)
		return nil
	}
	if err := e.queue.Enqueue(ctx, domain.ActionSaveProgress, data); err != nil {
		e.logger.Error("failed to queue progress sync", "error", err)
	}
	return nil
}

// finishSessionLocked folds the session's counts into the daily
// statistics, recomputes streaks and milestones, clears the marker, and
// queues a final sync.
func (e *Engine) finishSessionLocked(ctx context.Context) error {
	now := e.nowFunc()

	updated, err := e.progressStore.Mutate(ctx, func(p *domain.Progress) error {
		key := domain.DayKey(now)
		stat, ok := p.Statistics.DailyStats[key]
		if !ok {
			stat = &domain.DailyStat{}
			p.Statistics.DailyStats[key] = stat
		}
		stat.Merge(e.graded, e.correct)

		p.Statistics.Milestones.TotalSessions++
		streak := p.Statistics.Streak(now)
		p.Statistics.Milestones.CurrentStreak = streak
		if streak > p.Statistics.Milestones.BestStreak {
			p.Statistics.Milestones.BestStreak = streak
		}
		p.Statistics.CurrentSession = nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record session results: %w", err)
	}

	if data, merr := json.Marshal(updated); merr == nil {
		if qerr := e.queue.Enqueue(ctx, domain.ActionSaveProgress, data); qerr != nil {
			e.logger.Error("failed to queue final progress sync", "error", qerr)
		}
	}

	e.state = StateCompleted
	e.logger.Info("session completed",
		"session_id", e.sessionID,
		"graded", e.graded,
		"correct", e.correct,
		"wrong", e.wrong)
	return nil
}

// enqueueSyncLocked queues the SAVE_PROGRESS and LOG_QUIZ_ATTEMPT actions
// for a grade. Queue failures are logged; the local mutation has already
// been persisted and remains authoritative.
func (e *Engine) enqueueSyncLocked(
	ctx context.Context,
	progress *domain.Progress,
	item domain.ReviewItem,
	quality int,
	now time.Time,
) {
	if data, err := json.Marshal(progress); err == nil {
		if qerr := e.queue.Enqueue(ctx, domain.ActionSaveProgress, data); qerr != nil {
			e.logger.Error("failed to queue progress sync", "error", qerr)
		}
	} else {
		e.logger.Error("failed to encode progress for sync", "error", err)
	}

	record := domain.QuizAttemptRecord{
		Word:      item.Word,
		Type:      item.Type,
		Mode:      e.mode,
		Quality:   quality,
		Timestamp: now.UTC(),
	}
	if data, err := json.Marshal(record); err == nil {
		if qerr := e.queue.Enqueue(ctx, domain.ActionLogQuizAttempt, data); qerr != nil {
			e.logger.Error("failed to queue attempt log", "error", qerr)
		}
	}
}

// rankEligibleLocked classifies the session's candidate list against the
// given aggregate and returns the ranked eligible items. Words already
// batched this session are excluded: graded ones would drop out as
// reviewed-today anyway, and in practice mode the exclusion is what makes
// the session finite.
func (e *Engine) rankEligibleLocked(progress *domain.Progress) []domain.ReviewItem {
	ranked := e.classifier.Classify(e.candidates, progress, e.mode, e.nowFunc(), e.practiceMode)
	eligible := make([]domain.ReviewItem, 0, len(ranked))
	for _, c := range ranked {
		if !e.practiceMode && !sessionWorthy(c.Category) {
			continue
		}
		if e.seen[itemKey(c.Item)] {
			continue
		}
		eligible = append(eligible, c.Item)
	}
	return eligible
}

// loadNextBatchLocked re-ranks the eligible pool against the current
// aggregate, so items that came due mid-session are picked up, and fills a
// fresh batch from the top of the ranking.
func (e *Engine) loadNextBatchLocked(ctx context.Context) error {
	progress, err := e.progressStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load progress for next batch: %w", err)
	}
	e.takeBatchLocked(e.rankEligibleLocked(progress))
	return nil
}

// takeBatchLocked moves up to batchSize items from the ranked eligible
// list into the active batch and resets the cursor.
func (e *Engine) takeBatchLocked(eligible []domain.ReviewItem) {
	n := e.config.BatchSize
	if n > len(eligible) {
		n = len(eligible)
	}
	e.batch = make([]*queueEntry, 0, n)
	for _, item := range eligible[:n] {
		e.batch = append(e.batch, &queueEntry{item: item})
		e.seen[itemKey(item)] = true
	}
	e.pool = eligible[n:]
	e.position = 0
}

func (e *Engine) currentCardLocked() *CardView {
	if e.position >= len(e.batch) {
		return nil
	}
	return &CardView{
		Item:      e.batch[e.position].item,
		State:     e.state,
		Position:  e.position + 1,
		BatchSize: len(e.batch),
		Remaining: e.remainingLocked(),
	}
}

// remainingLocked counts unanswered batch cards, unbatched pool items, and
// learning-queue cards still owed a re-review.
func (e *Engine) remainingLocked() int {
	n := len(e.pool) + e.learning.size()
	for i := e.position; i < len(e.batch); i++ {
		if e.batch[i].status != statusAnswered {
			n++
		}
	}
	return n
}

// armAutoAdvanceLocked starts the feedback timer. The slot holds at most
// one timer; arming replaces any pending one.
func (e *Engine) armAutoAdvanceLocked() {
	if e.config.AutoAdvance <= 0 {
		return
	}
	e.cancelAutoAdvanceLocked()
	e.advanceTimer = time.AfterFunc(e.config.AutoAdvance, func() {
		if _, err := e.Advance(context.Background()); err != nil {
			// The user advanced first; the timer lost the race.
			e.logger.Debug("auto-advance skipped", "error", err)
		}
	})
}

func (e *Engine) cancelAutoAdvanceLocked() {
	if e.advanceTimer != nil {
		e.advanceTimer.Stop()
		e.advanceTimer = nil
	}
}
