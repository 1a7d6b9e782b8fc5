package models

import (
	"time"

	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/history"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type Session struct {
	ID                int64            `json:"id"`
	PlayerName        string           `json:"player_name"`
	InitialDifficulty difficulty.Level `json:"initial_difficulty"`
	CurrentDifficulty difficulty.Level `json:"current_difficulty"`
	MaxPuzzles        int              `json:"max_puzzles"`
	PuzzleCount       int              `json:"puzzle_count"` // answered puzzles
	CompletedAt       *time.Time       `json:"completed_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Status derives the session status from its completion timestamp.
func (s Session) Status() SessionStatus {
	if s.CompletedAt != nil {
		return SessionCompleted
	}
	return SessionActive
}

// Remaining returns how many puzzles are left before the session completes.
func (s Session) Remaining() int {
	return max(0, s.MaxPuzzles-s.PuzzleCount)
}

type SessionFilter struct {
	PlayerName string
	Status     SessionStatus
	Difficulty difficulty.Level // current difficulty, zero for any
	Limit      int
	Offset     int
}

// SessionSummary is the end-of-session report.
type SessionSummary struct {
	SessionID         int64            `json:"session_id"`
	PlayerName        string           `json:"player_name"`
	InitialDifficulty difficulty.Level `json:"initial_difficulty"`
	FinalDifficulty   difficulty.Level `json:"final_difficulty"`
	Status            SessionStatus    `json:"status"`
	history.Summary
}
