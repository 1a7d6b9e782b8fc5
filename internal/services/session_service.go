package services

import (
	"context"
	stderrors "errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/vytor/mathflash/internal/adaptive"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/errors"
	"github.com/vytor/mathflash/internal/history"
	"github.com/vytor/mathflash/internal/logger"
	"github.com/vytor/mathflash/internal/metrics"
	"github.com/vytor/mathflash/internal/models"
	"github.com/vytor/mathflash/internal/puzzle"
	"github.com/vytor/mathflash/internal/repository"
)

const (
	DefaultPlayerName = "Learner"
	MaxPuzzleLimit    = 1000
)

// SessionService handles practice session business logic
type SessionService interface {
	StartSession(ctx context.Context, playerName string, initial difficulty.Level, maxPuzzles int) (*models.Session, error)
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	NextPuzzle(ctx context.Context, sessionID int64) (*models.Puzzle, error)
	SubmitAnswer(ctx context.Context, sessionID, puzzleID int64, answer int, elapsedSeconds float64) (*models.AnswerResult, error)
	EndSession(ctx context.Context, sessionID int64) (*models.Session, error)
	Summary(ctx context.Context, sessionID int64) (*models.SessionSummary, error)
	CloseIdleSessions(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionOptions carries the defaults applied by StartSession.
type SessionOptions struct {
	DefaultMaxPuzzles int
	DefaultDifficulty difficulty.Level
	Now               func() time.Time
}

type sessionService struct {
	sessions  repository.SessionRepository
	puzzles   repository.PuzzleRepository
	attempts  repository.AttemptRepository
	generator puzzle.Generator
	opts      SessionOptions

	// serializes the read-modify-write of a session's state
	mu sync.Mutex
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions repository.SessionRepository,
	puzzles repository.PuzzleRepository,
	attempts repository.AttemptRepository,
	generator puzzle.Generator,
	opts SessionOptions,
) SessionService {
	if opts.DefaultMaxPuzzles <= 0 {
		opts.DefaultMaxPuzzles = 10
	}
	if !opts.DefaultDifficulty.Valid() {
		opts.DefaultDifficulty = difficulty.Medium
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &sessionService{
		sessions:  sessions,
		puzzles:   puzzles,
		attempts:  attempts,
		generator: generator,
		opts:      opts,
	}
}

func (s *sessionService) now() time.Time {
	return s.opts.Now().UTC()
}

func (s *sessionService) StartSession(ctx context.Context, playerName string, initial difficulty.Level, maxPuzzles int) (*models.Session, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: player=%q, difficulty=%s, max_puzzles=%d", playerName, initial, maxPuzzles)

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = DefaultPlayerName
	}
	if initial == 0 {
		initial = s.opts.DefaultDifficulty
	}
	if !initial.Valid() {
		return nil, errors.NewValidationError("difficulty", "must be Easy, Medium or Hard")
	}
	if maxPuzzles <= 0 {
		maxPuzzles = s.opts.DefaultMaxPuzzles
	}
	if maxPuzzles > MaxPuzzleLimit {
		return nil, errors.NewValidationError("max_puzzles", "must not exceed 1000")
	}

	now := s.now()
	session := models.Session{
		PlayerName:        playerName,
		InitialDifficulty: initial,
		CurrentDifficulty: initial,
		MaxPuzzles:        maxPuzzles,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	id, err := s.sessions.Insert(ctx, session)
	if err != nil {
		log.Error("failed to create session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.ID = id

	metrics.SessionsStarted.Inc()
	log.Info("session started: id=%d, player=%s, difficulty=%s", id, playerName, initial)
	return &session, nil
}

func (s *sessionService) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting session: id=%d", id)

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", id)
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing sessions: player=%s, status=%s", filter.PlayerName, filter.Status)

	switch filter.Status {
	case "", models.SessionActive, models.SessionCompleted:
	default:
		return nil, 0, errors.NewValidationError("status", "must be 'active' or 'completed'")
	}
	if filter.Difficulty != 0 && !filter.Difficulty.Valid() {
		return nil, 0, errors.NewValidationError("difficulty", "must be Easy, Medium or Hard")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, 0, errors.NewValidationError("pagination", "limit and offset must be non-negative")
	}

	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.sessions.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count sessions: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, total, nil
}

func (s *sessionService) NextPuzzle(ctx context.Context, sessionID int64) (*models.Puzzle, error) {
	log := logger.FromContext(ctx)
	log.Debug("next puzzle: session_id=%d", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status() == models.SessionCompleted {
		return nil, errors.NewValidationError("session", "session is completed")
	}

	pending, err := s.puzzles.Pending(ctx, sessionID)
	if err != nil {
		log.Error("failed to get pending puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if pending != nil {
		log.Debug("returning pending puzzle: id=%d", pending.ID)
		return pending, nil
	}

	issued, err := s.puzzles.CountBySession(ctx, sessionID)
	if err != nil {
		log.Error("failed to count puzzles: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if issued >= session.MaxPuzzles {
		return nil, errors.NewValidationError("session", "puzzle limit reached")
	}

	problem, err := s.generator.Generate(session.CurrentDifficulty)
	if err != nil {
		log.Error("failed to generate puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now()
	p := models.Puzzle{
		SessionID:        sessionID,
		Sequence:         issued + 1,
		Operand1:         problem.Operand1,
		Operand2:         problem.Operand2,
		Operator:         problem.Operator,
		Answer:           problem.Answer,
		Difficulty:       problem.Difficulty,
		TimeLimitSeconds: problem.TimeLimitSeconds,
		IssuedAt:         now,
	}
	id, err := s.puzzles.Insert(ctx, p)
	if err != nil {
		log.Error("failed to store puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	p.ID = id

	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, *session); err != nil {
		log.Error("failed to touch session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	metrics.PuzzlesIssued.WithLabelValues(p.Difficulty.String()).Inc()
	log.Info("puzzle issued: session_id=%d, sequence=%d, difficulty=%s", sessionID, p.Sequence, p.Difficulty)
	return &p, nil
}

func (s *sessionService) loadHistory(ctx context.Context, sessionID int64) (*history.History, error) {
	attempts, err := s.attempts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	h := history.New()
	for _, a := range attempts {
		h.Record(a.HistoryRecord())
	}
	return h, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID, puzzleID int64, answer int, elapsedSeconds float64) (*models.AnswerResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting answer: session_id=%d, puzzle_id=%d, elapsed=%.2f", sessionID, puzzleID, elapsedSeconds)

	if math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) || elapsedSeconds < 0 {
		return nil, errors.NewPreconditionError("elapsed_seconds", "must be a non-negative number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status() == models.SessionCompleted {
		return nil, errors.NewConflictError("session is completed")
	}

	p, err := s.puzzles.Get(ctx, puzzleID)
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil || p.SessionID != sessionID {
		return nil, errors.NewNotFoundError("puzzle", puzzleID)
	}
	if p.Answered() {
		return nil, errors.NewConflictError("puzzle already answered")
	}

	// only the attempts that stay inside the window once this one is added
	recent, err := s.attempts.Recent(ctx, sessionID, history.DefaultWindow-1)
	if err != nil {
		log.Error("failed to load recent attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	h := history.New()
	for _, a := range recent {
		h.Record(a.HistoryRecord())
	}

	now := s.now()
	attempt := models.Attempt{
		SessionID:      sessionID,
		PuzzleID:       p.ID,
		UserAnswer:     answer,
		CorrectAnswer:  p.Answer,
		Correct:        answer == p.Answer,
		ElapsedSeconds: elapsedSeconds,
		Difficulty:     p.Difficulty,
		CreatedAt:      now,
	}
	h.Record(attempt.HistoryRecord())
	attempt.RecentAccuracy = h.RecentAccuracy(history.DefaultWindow)

	decision, err := adaptive.Evaluate(adaptive.Input{
		Current:        p.Difficulty,
		Correct:        attempt.Correct,
		ElapsedSeconds: elapsedSeconds,
		TimeLimit:      p.TimeLimitSeconds,
		RecentAccuracy: attempt.RecentAccuracy,
	})
	if err != nil {
		log.Warn("decision rejected input: %v", err)
		return nil, err
	}
	attempt.ApplyDecision(decision)

	session.CurrentDifficulty = decision.Next
	session.PuzzleCount++
	session.UpdatedAt = now
	completed := session.PuzzleCount >= session.MaxPuzzles
	if completed {
		session.CompletedAt = &now
	}

	attempt.ID, err = s.attempts.RecordAnswer(ctx, attempt, *session)
	if err != nil {
		if stderrors.Is(err, repository.ErrAlreadyAnswered) {
			return nil, errors.NewConflictError("puzzle already answered")
		}
		log.Error("failed to record answer: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if completed {
		metrics.SessionsClosed.WithLabelValues(metrics.ReasonLimit).Inc()
	}
	metrics.ObserveDecision(p.Difficulty, attempt.Correct, decision)
	log.Info("answer scored: session_id=%d, puzzle_id=%d, correct=%t, score=%d, %s -> %s",
		sessionID, p.ID, attempt.Correct, decision.Score, p.Difficulty, decision.Next)

	return &models.AnswerResult{
		Attempt:  attempt,
		Decision: decision,
		Session:  *session,
	}, nil
}

func (s *sessionService) EndSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	log := logger.FromContext(ctx)
	log.Debug("ending session: id=%d", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status() == models.SessionCompleted {
		return session, nil
	}

	now := s.now()
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, *session); err != nil {
		log.Error("failed to end session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	metrics.SessionsClosed.WithLabelValues(metrics.ReasonEnded).Inc()
	log.Info("session ended: id=%d, puzzles=%d", sessionID, session.PuzzleCount)
	return session, nil
}

func (s *sessionService) Summary(ctx context.Context, sessionID int64) (*models.SessionSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("summarizing session: id=%d", sessionID)

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	h, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		log.Error("failed to load attempt history: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.SessionSummary{
		SessionID:         session.ID,
		PlayerName:        session.PlayerName,
		InitialDifficulty: session.InitialDifficulty,
		FinalDifficulty:   session.CurrentDifficulty,
		Status:            session.Status(),
		Summary:           h.Summary(),
	}, nil
}

func (s *sessionService) CloseIdleSessions(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("closing sessions idle since %s", cutoff.Format(time.RFC3339))

	s.mu.Lock()
	defer s.mu.Unlock()

	idle, err := s.sessions.ListIdle(ctx, cutoff)
	if err != nil {
		log.Error("failed to list idle sessions: %v", err)
		return 0, errors.NewInternalError(err)
	}

	closed := 0
	now := s.now()
	for _, session := range idle {
		session.CompletedAt = &now
		session.UpdatedAt = now
		if err := s.sessions.Update(ctx, session); err != nil {
			log.Error("failed to close idle session %d: %v", session.ID, err)
			return closed, errors.NewInternalError(err)
		}
		closed++
		metrics.SessionsClosed.WithLabelValues(metrics.ReasonIdle).Inc()
	}

	if closed > 0 {
		log.Info("closed %d idle sessions", closed)
	}
	return closed, nil
}
