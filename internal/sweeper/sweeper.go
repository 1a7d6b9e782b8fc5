// Package sweeper schedules the periodic idle-session sweep onto the worker pool.
package sweeper

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/mathflash/internal/logger"
	"github.com/vytor/mathflash/internal/worker"
)

// Submitter accepts jobs without blocking the scheduler.
type Submitter interface {
	TrySubmit(job worker.Job) error
}

// Sweeper periodically enqueues a job on a pool.
type Sweeper struct {
	scheduler *gocron.Scheduler
	pool      Submitter
	job       worker.Job
	interval  time.Duration
	log       *logger.Logger
}

// New creates a sweeper that submits job every interval.
func New(pool Submitter, job worker.Job, interval time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		pool:      pool,
		job:       job,
		interval:  interval,
		log:       logger.Default().WithPrefix("sweeper"),
	}
}

// Start schedules the job and runs the scheduler in the background.
// The first run happens once the interval has elapsed.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.enqueue)
	if err != nil {
		s.log.Error("failed to schedule %s: %v", s.job.Name(), err)
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduled %s every %v", s.job.Name(), s.interval)
	return nil
}

// Stop terminates the scheduler.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) enqueue() {
	if err := s.pool.TrySubmit(s.job); err != nil {
		s.log.Warn("skipping %s: %v", s.job.Name(), err)
	}
}
