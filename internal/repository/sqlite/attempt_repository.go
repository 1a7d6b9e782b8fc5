package sqlite

import (
	"context"
	"database/sql"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/mathflash/internal/logger"
	"github.com/vytor/mathflash/internal/models"
	"github.com/vytor/mathflash/internal/repository"
)

var attemptColumns = []string{
	"id", "session_id", "puzzle_id", "user_answer", "correct_answer", "correct", "elapsed_seconds",
	"difficulty", "recent_accuracy", "score", "correctness_points", "speed_points",
	"consistency_points", "next_difficulty", "created_at",
}

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

// RecordAnswer marks the attempt's puzzle answered, stores the attempt and
// saves the session in one transaction. A puzzle that was already answered
// yields repository.ErrAlreadyAnswered and nothing is written.
func (r *attemptRepository) RecordAnswer(ctx context.Context, a models.Attempt, session models.Session) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("recording answer: session_id=%d, puzzle_id=%d, correct=%t", a.SessionID, a.PuzzleID, a.Correct)

	var id int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := markAnswered(ctx, tx, a.PuzzleID, a.CreatedAt); err != nil {
			return err
		}
		var err error
		if id, err = insertAttempt(ctx, tx, a); err != nil {
			return err
		}
		return updateSession(ctx, tx, session)
	})
	if err != nil {
		return 0, err
	}
	log.Debug("answer recorded: attempt_id=%d", id)
	return id, nil
}

func insertAttempt(ctx context.Context, ex execer, a models.Attempt) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	query, args, err := sqlBuilder.Insert("attempts").
		Columns(attemptColumns[1:]...).
		Values(a.SessionID, a.PuzzleID, a.UserAnswer, a.CorrectAnswer, a.Correct, a.ElapsedSeconds,
			a.Difficulty, a.RecentAccuracy, a.Score, a.CorrectnessPoints, a.SpeedPoints,
			a.ConsistencyPoints, a.NextDifficulty, a.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		log.Error("failed to build insert: %v", err)
		return 0, err
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert attempt: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get attempt id: %v", err)
		return 0, err
	}
	return id, nil
}

// ListBySession returns the attempts of a session in insertion order.
func (r *attemptRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("listing attempts: session_id=%d", sessionID)

	return r.query(ctx, log, sqlBuilder.Select(attemptColumns...).From("attempts").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("id"))
}

// Recent returns up to limit most recent attempts, oldest first.
func (r *attemptRepository) Recent(ctx context.Context, sessionID int64, limit int) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("listing recent attempts: session_id=%d, limit=%d", sessionID, limit)

	if limit <= 0 {
		return nil, nil
	}
	attempts, err := r.query(ctx, log, sqlBuilder.Select(attemptColumns...).From("attempts").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("id DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}
	slices.Reverse(attempts)
	return attempts, nil
}

func (r *attemptRepository) query(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) ([]models.Attempt, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.PuzzleID, &a.UserAnswer, &a.CorrectAnswer, &a.Correct,
			&a.ElapsedSeconds, &a.Difficulty, &a.RecentAccuracy, &a.Score, &a.CorrectnessPoints,
			&a.SpeedPoints, &a.ConsistencyPoints, &a.NextDifficulty, &a.CreatedAt); err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		attempts = append(attempts, a)
	}
	log.Debug("found %d attempts", len(attempts))
	return attempts, rows.Err()
}
