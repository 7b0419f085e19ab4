package srs

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Quality grades at or above PassThreshold count as correct recall.
	PassThreshold int

	// Interval ladder for the first two correct answers, in days. From the
	// third correct answer onward the interval grows by the easiness factor.
	FirstInterval  int
	SecondInterval int

	// LapseMultiplier shrinks the interval of a previously learned card on a
	// failed recall instead of resetting it to day one.
	LapseMultiplier float64

	// Easiness arithmetic. On a correct answer the easiness moves by
	// EasinessBonus - (5-quality)*EasinessPenaltyStep; on a failure it drops
	// by LapseEasinessPenalty. MinEasiness floors the result either way.
	MinEasiness          float64
	EasinessBonus        float64
	EasinessPenaltyStep  float64
	LapseEasinessPenalty float64

	// MaxScore bounds the rolling familiarity score.
	MaxScore int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		PassThreshold:        3,
		FirstInterval:        1,
		SecondInterval:       6,
		LapseMultiplier:      0.5,
		MinEasiness:          1.3,
		EasinessBonus:        0.1,
		EasinessPenaltyStep:  0.08,
		LapseEasinessPenalty: 0.2,
		MaxScore:             5,
	}
}
