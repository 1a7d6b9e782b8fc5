package models

import (
	"time"

	"github.com/vytor/mathflash/internal/adaptive"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/history"
)

type Attempt struct {
	ID                int64            `json:"id"`
	SessionID         int64            `json:"session_id"`
	PuzzleID          int64            `json:"puzzle_id"`
	UserAnswer        int              `json:"user_answer"`
	CorrectAnswer     int              `json:"correct_answer"`
	Correct           bool             `json:"correct"`
	ElapsedSeconds    float64          `json:"elapsed_seconds"`
	Difficulty        difficulty.Level `json:"difficulty"`
	RecentAccuracy    float64          `json:"recent_accuracy"`
	Score             int              `json:"score"`
	CorrectnessPoints int              `json:"correctness_points"`
	SpeedPoints       int              `json:"speed_points"`
	ConsistencyPoints int              `json:"consistency_points"`
	NextDifficulty    difficulty.Level `json:"next_difficulty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// HistoryRecord projects the attempt onto the adaptive history log.
func (a Attempt) HistoryRecord() history.Record {
	return history.Record{
		PuzzleID:       a.PuzzleID,
		Correct:        a.Correct,
		ElapsedSeconds: a.ElapsedSeconds,
		Difficulty:     a.Difficulty,
	}
}

// ApplyDecision copies the decision outcome onto the attempt.
func (a *Attempt) ApplyDecision(r adaptive.Result) {
	a.Score = r.Score
	a.CorrectnessPoints = r.Correctness
	a.SpeedPoints = r.Speed
	a.ConsistencyPoints = r.Consistency
	a.NextDifficulty = r.Next
}

// AnswerResult is returned after an answer has been scored.
type AnswerResult struct {
	Attempt  Attempt         `json:"attempt"`
	Decision adaptive.Result `json:"decision"`
	Session  Session         `json:"session"`
}
