package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start(context.Background())

	var ran atomic.Int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		err := pool.TrySubmit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return nil
		}})
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	pool.Stop()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, pool.TrySubmit(funcJob{name: "fail", fn: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, pool.TrySubmit(funcJob{name: "panic", fn: func(context.Context) error {
		panic("bad job")
	}}))
	require.NoError(t, pool.TrySubmit(funcJob{name: "ok", fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover")
	}
	pool.Stop()
}

func TestPool_TrySubmitQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	// not started: nothing drains the queue
	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}

	require.NoError(t, pool.TrySubmit(noop))
	assert.ErrorIs(t, pool.TrySubmit(noop), ErrQueueFull)
	assert.Equal(t, 1, pool.QueueSize())

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a full queue")
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	assert.ErrorIs(t, pool.TrySubmit(noop), ErrPoolClosed)
}

func TestPool_StopCancelsRunningJob(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())

	started := make(chan struct{})
	require.NoError(t, pool.TrySubmit(funcJob{name: "wait", fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}))
	<-started
	pool.Stop()
}

type closerFunc func(ctx context.Context, cutoff time.Time) (int, error)

func (f closerFunc) CloseIdleSessions(ctx context.Context, cutoff time.Time) (int, error) {
	return f(ctx, cutoff)
}

func TestCloseIdleSessionsJob(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var got time.Time
	job := &CloseIdleSessionsJob{
		Sessions: closerFunc(func(_ context.Context, cutoff time.Time) (int, error) {
			got = cutoff
			return 2, nil
		}),
		IdleFor: 30 * time.Minute,
		Now:     func() time.Time { return now },
	}

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-30*time.Minute), got)
	assert.Equal(t, "close_idle_sessions", job.Name())

	job.Sessions = closerFunc(func(context.Context, time.Time) (int, error) { return 0, errors.New("db down") })
	assert.Error(t, job.Run(context.Background()))
}
