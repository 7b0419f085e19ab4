package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayKeyLayout is the format for daily statistic map keys.
const DayKeyLayout = "2006-01-02"

// DayKey returns the daily-stats map key for the given time in its location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// DailyStat aggregates all quiz activity for one calendar day.
type DailyStat struct {
	Reviews  int     `json:"reviews"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Merge folds another day's worth of counts into the stat and recomputes the
// weighted accuracy.
func (d *DailyStat) Merge(reviews, correct int) {
	d.Reviews += reviews
	d.Correct += correct
	if d.Reviews > 0 {
		d.Accuracy = float64(d.Correct) / float64(d.Reviews)
	}
}

// Milestones carries the long-lived counters the app surfaces outside any
// single session.
type Milestones struct {
	TotalReviews  int `json:"total_reviews"`
	TotalSessions int `json:"total_sessions"`
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// SessionStats is the active-session marker persisted inside the aggregate
// while a quiz session is running, and folded into the daily stats when the
// session finishes.
type SessionStats struct {
	ID        uuid.UUID  `json:"id"`
	Mode      ReviewMode `json:"mode"`
	StartedAt time.Time  `json:"started_at"`
	Total     int        `json:"total"`
	Correct   int        `json:"correct"`
	Wrong     int        `json:"wrong"`
}

// Statistics is the statistics section of the progress aggregate. It is
// mutated alongside ReviewState but logically independent of it.
type Statistics struct {
	DailyStats     map[string]*DailyStat `json:"daily_stats"`
	Milestones     Milestones            `json:"milestones"`
	CurrentSession *SessionStats         `json:"current_session,omitempty"`
}

// Streak counts the consecutive days with any recorded activity, walking
// backward from the given day. A day with a stats entry but zero reviews
// breaks the streak the same way a missing day does.
func (s *Statistics) Streak(today time.Time) int {
	streak := 0
	day := today
	for {
		stat, ok := s.DailyStats[DayKey(day)]
		if !ok || stat.Reviews == 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
