package repository

import (
	"context"
	"time"

	"github.com/vytor/mathflash/internal/models"
)

// SessionRepository handles practice session data access.
// Get returns (nil, nil) when the session does not exist.
type SessionRepository interface {
	Insert(ctx context.Context, session models.Session) (int64, error)
	Update(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	Count(ctx context.Context, filter models.SessionFilter) (int, error)
	ListIdle(ctx context.Context, updatedBefore time.Time) ([]models.Session, error)
}

// PuzzleRepository handles issued puzzles.
// Get and Pending return (nil, nil) when nothing matches.
type PuzzleRepository interface {
	Insert(ctx context.Context, puzzle models.Puzzle) (int64, error)
	Get(ctx context.Context, id int64) (*models.Puzzle, error)
	Pending(ctx context.Context, sessionID int64) (*models.Puzzle, error)
	CountBySession(ctx context.Context, sessionID int64) (int, error)
}

// AttemptRepository handles the append-only attempt log.
// RecordAnswer commits the answered puzzle, the attempt and the updated
// session together or not at all.
type AttemptRepository interface {
	RecordAnswer(ctx context.Context, attempt models.Attempt, session models.Session) (int64, error)
	ListBySession(ctx context.Context, sessionID int64) ([]models.Attempt, error)
	Recent(ctx context.Context, sessionID int64, limit int) ([]models.Attempt, error)
}
