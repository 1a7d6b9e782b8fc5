package worker

import (
	"context"
	"time"

	"github.com/vytor/mathflash/internal/logger"
)

// IdleSessionCloser completes sessions that have seen no activity since cutoff.
type IdleSessionCloser interface {
	CloseIdleSessions(ctx context.Context, cutoff time.Time) (int, error)
}

// CloseIdleSessionsJob completes every active session idle for longer than IdleFor.
type CloseIdleSessionsJob struct {
	Sessions IdleSessionCloser
	IdleFor  time.Duration
	Now      func() time.Time
}

func (j *CloseIdleSessionsJob) Name() string { return "close_idle_sessions" }

func (j *CloseIdleSessionsJob) Run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	cutoff := now().Add(-j.IdleFor)

	log := logger.FromContext(ctx).WithField("cutoff", cutoff.Format(time.RFC3339))
	n, err := j.Sessions.CloseIdleSessions(ctx, cutoff)
	if err != nil {
		return err
	}
	log.Debug("idle sweep closed %d sessions", n)
	return nil
}
