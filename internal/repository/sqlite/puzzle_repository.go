package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mathflash/internal/logger"
	"github.com/vytor/mathflash/internal/models"
	"github.com/vytor/mathflash/internal/repository"
)

var puzzleColumns = []string{
	"id", "session_id", "sequence", "operand1", "operand2", "operator", "answer",
	"difficulty", "time_limit_seconds", "issued_at", "answered_at",
}

type puzzleRepository struct {
	db *sql.DB
}

// NewPuzzleRepository creates a new PuzzleRepository implementation
func NewPuzzleRepository(db *sql.DB) repository.PuzzleRepository {
	return &puzzleRepository{db: db}
}

func scanPuzzle(row scanner) (models.Puzzle, error) {
	var p models.Puzzle
	var answeredAt sql.NullTime
	err := row.Scan(&p.ID, &p.SessionID, &p.Sequence, &p.Operand1, &p.Operand2, &p.Operator, &p.Answer,
		&p.Difficulty, &p.TimeLimitSeconds, &p.IssuedAt, &answeredAt)
	p.AnsweredAt = timePtr(answeredAt)
	return p, err
}

func (r *puzzleRepository) Insert(ctx context.Context, p models.Puzzle) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("inserting puzzle: session_id=%d, sequence=%d, difficulty=%s", p.SessionID, p.Sequence, p.Difficulty)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO puzzles (session_id, sequence, operand1, operand2, operator, answer, difficulty, time_limit_seconds, issued_at, answered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.SessionID, p.Sequence, p.Operand1, p.Operand2, p.Operator, p.Answer, p.Difficulty, p.TimeLimitSeconds,
		p.IssuedAt.UTC(), nullTime(p.AnsweredAt))
	if err != nil {
		log.Error("failed to insert puzzle: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get puzzle id: %v", err)
		return 0, err
	}
	log.Debug("puzzle inserted: id=%d", id)
	return id, nil
}

func (r *puzzleRepository) Get(ctx context.Context, id int64) (*models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting puzzle: id=%d", id)

	return r.getOne(ctx, log, sqlBuilder.Select(puzzleColumns...).From("puzzles").Where(squirrel.Eq{"id": id}))
}

func (r *puzzleRepository) Pending(ctx context.Context, sessionID int64) (*models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting pending puzzle: session_id=%d", sessionID)

	return r.getOne(ctx, log, sqlBuilder.Select(puzzleColumns...).From("puzzles").
		Where(squirrel.Eq{"session_id": sessionID, "answered_at": nil}).
		OrderBy("sequence DESC").
		Limit(1))
}

func (r *puzzleRepository) getOne(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) (*models.Puzzle, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	p, err := scanPuzzle(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("puzzle not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *puzzleRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM puzzles WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		log.Error("failed to count puzzles: %v", err)
		return 0, err
	}
	return count, nil
}

// markAnswered sets answered_at only while it is still NULL.
func markAnswered(ctx context.Context, ex execer, id int64, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("marking puzzle answered: id=%d", id)

	res, err := ex.ExecContext(ctx, `UPDATE puzzles SET answered_at = ? WHERE id = ? AND answered_at IS NULL`, at.UTC(), id)
	if err != nil {
		log.Error("failed to mark puzzle answered: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrAlreadyAnswered
	}
	return nil
}
