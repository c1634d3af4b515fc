/*
scheduler.go - Periodic staleness check

PURPOSE:
  Runs the staleness check on a cron schedule and logs a warning when the
  portfolio data is older than the allowed age or an active deposit has
  already closed. The same report is served on demand by GET /api/staleness.

DESIGN:
  - Scheduler wraps robfig/cron with zerolog reporting per job run
  - Jobs implement Job; StalenessJob is the only one today
  - Standard 5-field cron specs and descriptors ("@every 1h") are accepted

USAGE:
  s := NewScheduler(log)
  s.AddJob("@every 1h", NewStalenessJob(store, maxAge, log))
  s.Start()
  // ... later
  s.Stop()

SEE ALSO:
  - deposit/staleness.go: CheckStaleness
  - config/config.go: CHECK_SCHEDULE, STALE_AFTER
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/warp/deposit-engine/deposit"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a cron schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// =============================================================================
// STALENESS JOB
// =============================================================================

// StalenessJob logs what CheckStaleness finds. The last report is kept for
// inspection.
type StalenessJob struct {
	Store   deposit.Store
	MaxAge  time.Duration
	Now     func() time.Time
	Timeout time.Duration

	log  zerolog.Logger
	mu   sync.Mutex
	last deposit.StalenessReport
}

func NewStalenessJob(store deposit.Store, maxAge time.Duration, log zerolog.Logger) *StalenessJob {
	return &StalenessJob{
		Store:   store,
		MaxAge:  maxAge,
		Now:     time.Now,
		Timeout: 30 * time.Second,
		log:     log.With().Str("job", "staleness").Logger(),
	}
}

func (j *StalenessJob) Name() string { return "staleness" }

// Run checks the store once.
func (j *StalenessJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	modified, err := j.Store.LastModified(ctx)
	if err != nil {
		return err
	}
	deposits, err := j.Store.ListDeposits(ctx)
	if err != nil {
		return err
	}

	report := deposit.CheckStaleness(deposits, modified, j.Now(), j.MaxAge)
	j.mu.Lock()
	j.last = report
	j.mu.Unlock()

	if report.Outdated {
		j.log.Warn().
			Dur("data_age", report.DataAge).
			Dur("max_age", j.MaxAge).
			Msg("portfolio data is outdated")
	}
	for _, d := range report.Expired {
		j.log.Warn().
			Str("deposit_id", d.ID).
			Str("deposit", d.Name).
			Str("closed", d.Close.String()).
			Msg("active deposit past its close date")
	}
	switch {
	case report.NoData:
		j.log.Debug().Msg("no portfolio data yet")
	case !report.NeedsAttention():
		j.log.Debug().Msg("portfolio data is fresh")
	}
	return nil
}

// LastReport returns the report of the most recent run.
func (j *StalenessJob) LastReport() deposit.StalenessReport {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}
