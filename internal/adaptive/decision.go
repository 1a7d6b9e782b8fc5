// Package adaptive implements the rule that moves a learner between
// difficulty levels after each attempt.
//
// The score is the sum of three independent bonuses:
//
//	correct answer                           +40
//	elapsed < 70% of the time limit          +30
//	recent accuracy > 70%                    +30
//
// A score of 90 or more moves one level up, below 40 one level down, and
// anything in between keeps the current level. Correctness and speed alone
// top out at 70, so moving up always needs the consistency bonus too.
package adaptive

import (
	"math"

	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/errors"
)

const (
	CorrectPoints     = 40
	SpeedPoints       = 30
	ConsistencyPoints = 30

	// SpeedRatio is the share of the time limit under which an answer is fast.
	SpeedRatio = 0.70
	// ConsistencyThreshold is the recent accuracy that must be exceeded.
	ConsistencyThreshold = 0.70

	IncreaseThreshold = 90
	DecreaseThreshold = 40
)

// Transition is the direction of a difficulty change.
type Transition string

const (
	Increase Transition = "increase"
	Decrease Transition = "decrease"
	Maintain Transition = "maintain"
)

// Input is everything the rule looks at for one attempt.
type Input struct {
	Current        difficulty.Level `json:"current"`
	Correct        bool             `json:"correct"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
	TimeLimit      float64          `json:"time_limit_seconds"`
	RecentAccuracy float64          `json:"recent_accuracy"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Score       int              `json:"score"`
	Next        difficulty.Level `json:"next_difficulty"`
	Transition  Transition       `json:"transition"`
	Correctness int              `json:"correctness_points"`
	Speed       int              `json:"speed_points"`
	Consistency int              `json:"consistency_points"`
}

// Decide applies the rule. It assumes in satisfies Validate; use Evaluate
// when the input comes from outside the process.
func Decide(in Input) Result {
	var r Result
	if in.Correct {
		r.Correctness = CorrectPoints
	}
	if in.ElapsedSeconds < SpeedRatio*in.TimeLimit {
		r.Speed = SpeedPoints
	}
	if in.RecentAccuracy > ConsistencyThreshold {
		r.Consistency = ConsistencyPoints
	}
	r.Score = r.Correctness + r.Speed + r.Consistency

	switch {
	case r.Score >= IncreaseThreshold:
		r.Next = in.Current.Next()
	case r.Score < DecreaseThreshold:
		r.Next = in.Current.Prev()
	default:
		r.Next = in.Current
	}

	switch {
	case r.Next > in.Current:
		r.Transition = Increase
	case r.Next < in.Current:
		r.Transition = Decrease
	default:
		r.Transition = Maintain
	}
	return r
}

// Validate rejects inputs outside the rule's contract.
func (in Input) Validate() error {
	if !in.Current.Valid() {
		return errors.NewPreconditionError("current", "unknown difficulty level")
	}
	if math.IsNaN(in.ElapsedSeconds) || math.IsInf(in.ElapsedSeconds, 0) || in.ElapsedSeconds < 0 {
		return errors.NewPreconditionError("elapsed_seconds", "must be a non-negative number")
	}
	if math.IsNaN(in.TimeLimit) || math.IsInf(in.TimeLimit, 0) || in.TimeLimit <= 0 {
		return errors.NewPreconditionError("time_limit_seconds", "must be a positive finite number")
	}
	if math.IsNaN(in.RecentAccuracy) || in.RecentAccuracy < 0 || in.RecentAccuracy > 1 {
		return errors.NewPreconditionError("recent_accuracy", "must be within [0, 1]")
	}
	return nil
}

// Evaluate validates in and then applies Decide.
func Evaluate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	return Decide(in), nil
}
