package models

import (
	"time"

	"github.com/vytor/mathflash/internal/difficulty"
)

// Puzzle is a problem issued to a session. Answer never leaves the server.
type Puzzle struct {
	ID               int64               `json:"id"`
	SessionID        int64               `json:"session_id"`
	Sequence         int                 `json:"sequence"`
	Operand1         int                 `json:"operand1"`
	Operand2         int                 `json:"operand2"`
	Operator         difficulty.Operator `json:"operator"`
	Answer           int                 `json:"-"`
	Difficulty       difficulty.Level    `json:"difficulty"`
	TimeLimitSeconds float64             `json:"time_limit_seconds"`
	IssuedAt         time.Time           `json:"issued_at"`
	AnsweredAt       *time.Time          `json:"answered_at,omitempty"`
}

func (p Puzzle) Answered() bool {
	return p.AnsweredAt != nil
}
