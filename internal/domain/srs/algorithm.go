package srs

import (
	"math"
	"time"

	"github.com/Notinamillion/hanzi-review/internal/domain"
)

// correctEasiness determines the new easiness factor after a correct answer.
//
// The easiness factor governs how fast intervals grow on success: a perfect
// answer (quality 5) raises it by the full bonus, while a hesitant pass
// (quality 3) lowers it slightly. The result is floored at params.MinEasiness
// so a run of barely-passing answers cannot drive intervals to a standstill.
func correctEasiness(current float64, quality int, params *Params) float64 {
	next := current + params.EasinessBonus - float64(5-quality)*params.EasinessPenaltyStep
	if next < params.MinEasiness {
		next = params.MinEasiness
	}
	return next
}

// lapseEasiness determines the new easiness factor after a failed answer,
// applying a flat penalty floored at params.MinEasiness.
func lapseEasiness(current float64, params *Params) float64 {
	next := current - params.LapseEasinessPenalty
	if next < params.MinEasiness {
		next = params.MinEasiness
	}
	return next
}

// correctInterval determines the new interval after a correct answer.
//
// The ladder keys off the lifetime correct count, so a card that failed
// before ever passing still starts at FirstInterval on its first success:
//   - first correct answer: FirstInterval days
//   - second correct answer: SecondInterval days
//   - beyond that: ceil(interval * easiness), using the easiness the card
//     held before this review
//
// A lapsed mature card has three or more correct answers on record, so it
// lands in the growth branch and resumes from its shrunken interval
// instead of restarting the ladder.
func correctInterval(correct, priorInterval int, priorEasiness float64, params *Params) int {
	switch {
	case correct <= 1:
		return params.FirstInterval
	case correct == 2:
		return params.SecondInterval
	default:
		return int(math.Ceil(float64(priorInterval) * priorEasiness))
	}
}

// lapseInterval determines the new interval after a failed answer.
//
// A card that had previously been learned (graduated past its first interval
// with at least one correct answer on record) keeps half its interval so a
// single slip does not reset months of progress. A card that was never
// learned goes back to one day. Canonical SM-2 resets every lapse to day
// one; the dual policy here is deliberate.
func lapseInterval(prior *domain.ReviewState, params *Params) int {
	if prior.Interval > params.FirstInterval && prior.Correct > 0 {
		halved := int(math.Floor(float64(prior.Interval) * params.LapseMultiplier))
		if halved < 1 {
			halved = 1
		}
		return halved
	}
	return params.FirstInterval
}

// calculateNext computes the full post-review state from the prior state and
// a quality grade. It follows an immutable update pattern: the prior state
// is never written through, and a nil prior is treated as a brand-new item.
func calculateNext(
	prior *domain.ReviewState,
	quality int,
	mode domain.ReviewMode,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	if prior == nil {
		prior = domain.NewReviewState()
	}

	next := prior.Clone()
	next.Attempts++

	if quality >= params.PassThreshold {
		next.Correct++
		next.Wrong = 0
		next.ConsecutiveCorrect++
		if next.Score < params.MaxScore {
			next.Score++
		}
		// Interval grows from the easiness the card held before this
		// review; the easiness update lands afterwards.
		next.Interval = correctInterval(next.Correct, prior.Interval, prior.Easiness, params)
		next.Easiness = correctEasiness(prior.Easiness, quality, params)
	} else {
		next.Wrong++
		next.ConsecutiveCorrect = 0
		if next.Score > 0 {
			next.Score--
		}
		next.Interval = lapseInterval(prior, params)
		next.Easiness = lapseEasiness(prior.Easiness, params)
	}

	next.SetLastReviewed(mode, now)
	next.NextReview = now.Add(time.Duration(next.Interval) * 24 * time.Hour)

	return next
}
