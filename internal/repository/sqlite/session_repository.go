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

var sessionColumns = []string{
	"id", "player_name", "initial_difficulty", "current_difficulty", "max_puzzles",
	"puzzle_count", "completed_at", "created_at", "updated_at",
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row scanner) (models.Session, error) {
	var s models.Session
	var completedAt sql.NullTime
	err := row.Scan(&s.ID, &s.PlayerName, &s.InitialDifficulty, &s.CurrentDifficulty, &s.MaxPuzzles,
		&s.PuzzleCount, &completedAt, &s.CreatedAt, &s.UpdatedAt)
	s.CompletedAt = timePtr(completedAt)
	return s, err
}

func (r *sessionRepository) Insert(ctx context.Context, s models.Session) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: player=%s, difficulty=%s", s.PlayerName, s.InitialDifficulty)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (player_name, initial_difficulty, current_difficulty, max_puzzles, puzzle_count, completed_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, s.PlayerName, s.InitialDifficulty, s.CurrentDifficulty, s.MaxPuzzles, s.PuzzleCount,
		nullTime(s.CompletedAt), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get session id: %v", err)
		return 0, err
	}
	log.Debug("session inserted: id=%d", id)
	return id, nil
}

func (r *sessionRepository) Update(ctx context.Context, s models.Session) error {
	return updateSession(ctx, r.db, s)
}

func updateSession(ctx context.Context, ex execer, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%d, difficulty=%s, puzzle_count=%d", s.ID, s.CurrentDifficulty, s.PuzzleCount)

	_, err := ex.ExecContext(ctx, `
UPDATE sessions
SET current_difficulty = ?, puzzle_count = ?, completed_at = ?, updated_at = ?
WHERE id = ?
`, s.CurrentDifficulty, s.PuzzleCount, nullTime(s.CompletedAt), s.UpdatedAt.UTC(), s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%d", id)

	query, args, err := sqlBuilder.Select(sessionColumns...).From("sessions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}

func applySessionFilter(query squirrel.SelectBuilder, filter models.SessionFilter) squirrel.SelectBuilder {
	if filter.PlayerName != "" {
		query = query.Where(squirrel.Eq{"player_name": filter.PlayerName})
	}
	switch filter.Status {
	case models.SessionActive:
		query = query.Where(squirrel.Eq{"completed_at": nil})
	case models.SessionCompleted:
		query = query.Where(squirrel.NotEq{"completed_at": nil})
	}
	if filter.Difficulty.Valid() {
		query = query.Where(squirrel.Eq{"current_difficulty": filter.Difficulty})
	}
	return query
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: player=%s, status=%s, limit=%d, offset=%d",
		filter.PlayerName, filter.Status, filter.Limit, filter.Offset)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(filter.Offset, 0)

	query := applySessionFilter(sqlBuilder.Select(sessionColumns...).From("sessions"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return r.query(ctx, log, query)
}

func (r *sessionRepository) Count(ctx context.Context, filter models.SessionFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := applySessionFilter(sqlBuilder.Select("COUNT(*)").From("sessions"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count sessions: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *sessionRepository) ListIdle(ctx context.Context, updatedBefore time.Time) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing idle sessions: updated_before=%s", updatedBefore.Format(time.RFC3339))

	query := sqlBuilder.Select(sessionColumns...).From("sessions").
		Where(squirrel.Eq{"completed_at": nil}).
		Where(squirrel.Lt{"updated_at": updatedBefore.UTC()}).
		OrderBy("updated_at")

	return r.query(ctx, log, query)
}

func (r *sessionRepository) query(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) ([]models.Session, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}
