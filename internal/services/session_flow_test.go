package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/mathflash/internal/difficulty"
	"github.com/vytor/mathflash/internal/errors"
	"github.com/vytor/mathflash/internal/models"
	"github.com/vytor/mathflash/internal/puzzle"
	"github.com/vytor/mathflash/internal/repository/sqlite"
	"github.com/vytor/mathflash/internal/services"
	"github.com/vytor/mathflash/internal/testutil"
)

// SessionFlowSuite drives the service against a real SQLite database.
type SessionFlowSuite struct {
	suite.Suite
	db    *sql.DB
	svc   services.SessionService
	clock time.Time
	close func()
}

func (s *SessionFlowSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.db = db
	s.close = func() { testutil.MustClose(s.T(), db) }
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.svc = services.NewSessionService(
		sqlite.NewSessionRepository(db),
		sqlite.NewPuzzleRepository(db),
		sqlite.NewAttemptRepository(db),
		puzzle.NewSeededGenerator(42),
		services.SessionOptions{
			DefaultMaxPuzzles: 10,
			DefaultDifficulty: difficulty.Medium,
			Now:               func() time.Time { return s.clock },
		},
	)
}

func (s *SessionFlowSuite) TearDownTest() {
	s.close()
}

func (s *SessionFlowSuite) answer(sessionID int64, correct bool, elapsed float64) *models.AnswerResult {
	ctx := context.Background()
	p, err := s.svc.NextPuzzle(ctx, sessionID)
	s.Require().NoError(err)

	given := p.Answer
	if !correct {
		given++
	}
	s.clock = s.clock.Add(time.Minute)
	res, err := s.svc.SubmitAnswer(ctx, sessionID, p.ID, given, elapsed)
	s.Require().NoError(err)
	return res
}

func (s *SessionFlowSuite) TestAdaptsAcrossSession() {
	ctx := context.Background()
	session, err := s.svc.StartSession(ctx, "ada", difficulty.Easy, 6)
	s.Require().NoError(err)

	// the first answer already counts toward recent accuracy
	first := s.answer(session.ID, true, 1)
	s.Assert().Equal(1.0, first.Attempt.RecentAccuracy)
	s.Assert().Equal(difficulty.Medium, first.Session.CurrentDifficulty)

	second := s.answer(session.ID, true, 1)
	s.Assert().Equal(difficulty.Medium, second.Attempt.Difficulty, "puzzle issued at the promoted level")
	s.Assert().Equal(difficulty.Hard, second.Session.CurrentDifficulty)

	third := s.answer(session.ID, true, 1)
	s.Assert().Equal(difficulty.Hard, third.Session.CurrentDifficulty, "clamped at Hard")

	// slow wrong answer: accuracy 3/4 keeps the consistency bonus, score 30
	fourth := s.answer(session.ID, false, 14)
	s.Assert().Equal(0.75, fourth.Attempt.RecentAccuracy)
	s.Assert().Equal(30, fourth.Decision.Score)
	s.Assert().Equal(difficulty.Medium, fourth.Session.CurrentDifficulty)

	summary, err := s.svc.Summary(ctx, session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(4, summary.TotalAttempts)
	s.Assert().Equal(3, summary.Correct)
	s.Assert().Equal(75.0, summary.AccuracyPct)
	s.Assert().Equal(difficulty.Medium, summary.FinalDifficulty)
	s.Assert().Equal([]difficulty.Level{difficulty.Easy, difficulty.Medium, difficulty.Hard, difficulty.Hard}, summary.Progression)
	s.Assert().Equal(models.SessionActive, summary.Status)
}

func (s *SessionFlowSuite) TestCompletesAtLimit() {
	ctx := context.Background()
	session, err := s.svc.StartSession(ctx, "", difficulty.Medium, 2)
	s.Require().NoError(err)
	s.Assert().Equal(services.DefaultPlayerName, session.PlayerName)

	s.answer(session.ID, true, 3)
	last := s.answer(session.ID, true, 3)
	s.Assert().Equal(models.SessionCompleted, last.Session.Status())
	s.Assert().Equal(2, last.Session.PuzzleCount)

	_, err = s.svc.NextPuzzle(ctx, session.ID)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeValidation))
}

func (s *SessionFlowSuite) TestPendingPuzzleIsReissued() {
	ctx := context.Background()
	session, err := s.svc.StartSession(ctx, "ada", difficulty.Easy, 5)
	s.Require().NoError(err)

	first, err := s.svc.NextPuzzle(ctx, session.ID)
	s.Require().NoError(err)
	again, err := s.svc.NextPuzzle(ctx, session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(first.ID, again.ID)

	_, err = s.svc.SubmitAnswer(ctx, session.ID, first.ID, first.Answer, 2)
	s.Require().NoError(err)
	_, err = s.svc.SubmitAnswer(ctx, session.ID, first.ID, first.Answer, 2)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeConflict))
}

func (s *SessionFlowSuite) TestFailedAnswerWriteLeavesPuzzleOpen() {
	ctx := context.Background()
	session, err := s.svc.StartSession(ctx, "ada", difficulty.Easy, 1)
	s.Require().NoError(err)
	p, err := s.svc.NextPuzzle(ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(ctx, `
CREATE TRIGGER fail_attempt_insert BEFORE INSERT ON attempts
BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`)
	s.Require().NoError(err)

	_, err = s.svc.SubmitAnswer(ctx, session.ID, p.ID, p.Answer, 2)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeInternal))

	// nothing from the failed write is visible
	again, err := s.svc.NextPuzzle(ctx, session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(p.ID, again.ID)
	s.Assert().False(again.Answered())
	got, err := s.svc.GetSession(ctx, session.ID)
	s.Require().NoError(err)
	s.Assert().Equal(0, got.PuzzleCount)
	s.Assert().Equal(models.SessionActive, got.Status())

	_, err = s.db.ExecContext(ctx, `DROP TRIGGER fail_attempt_insert`)
	s.Require().NoError(err)

	res, err := s.svc.SubmitAnswer(ctx, session.ID, p.ID, p.Answer, 2)
	s.Require().NoError(err)
	s.Assert().Equal(1, res.Session.PuzzleCount)
	s.Assert().Equal(models.SessionCompleted, res.Session.Status())
}

func (s *SessionFlowSuite) TestEndAndCloseIdle() {
	ctx := context.Background()
	ended, err := s.svc.StartSession(ctx, "ada", difficulty.Easy, 5)
	s.Require().NoError(err)
	idle, err := s.svc.StartSession(ctx, "grace", difficulty.Easy, 5)
	s.Require().NoError(err)

	got, err := s.svc.EndSession(ctx, ended.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.SessionCompleted, got.Status())

	s.clock = s.clock.Add(time.Hour)
	n, err := s.svc.CloseIdleSessions(ctx, s.clock.Add(-30*time.Minute))
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	closed, err := s.svc.GetSession(ctx, idle.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.SessionCompleted, closed.Status())

	sessions, total, err := s.svc.ListSessions(ctx, models.SessionFilter{Status: models.SessionActive})
	s.Require().NoError(err)
	s.Assert().Empty(sessions)
	s.Assert().Equal(0, total)
}

func TestSessionFlowSuite(t *testing.T) {
	suite.Run(t, new(SessionFlowSuite))
}
