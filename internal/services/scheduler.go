package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named background task run on a cron schedule.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs background jobs such as the stats refresh and the session sweep.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Add registers a job. Schedules use the six-field cron syntax or descriptors like "@every 5m".
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no run func", job.Name)
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	_, err := s.cron.AddFunc(job.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
			return
		}
		s.logger.Debug("scheduled job finished", zap.String("job", job.Name), zap.Duration("duration", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	return nil
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// StatsRefresher is satisfied by the stats use case.
type StatsRefresher interface {
	Refresh(ctx context.Context) error
}

// RefreshStats recomputes the market snapshot on schedule.
func RefreshStats(stats StatsRefresher, schedule string) Job {
	return Job{
		Name:     "stats-refresh",
		Schedule: schedule,
		Run:      stats.Refresh,
	}
}

// SessionPurger is satisfied by the in-memory session store.
type SessionPurger interface {
	Purge(now time.Time) int
}

// PurgeSessions drops expired sessions on schedule.
func PurgeSessions(sessions SessionPurger, schedule string, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name:     "session-purge",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			if removed := sessions.Purge(time.Now()); removed > 0 {
				logger.Info("expired sessions purged", zap.Int("removed", removed))
			}
			return ctx.Err()
		},
	}
}
