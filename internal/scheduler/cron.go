// Package scheduler runs a job on a cron schedule (UTC) until its context ends.
// Runs never overlap: a tick or RunNow call made while another run is still in
// progress is skipped.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/seenimoa/tickerpulse/internal/logging"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// CronScheduler fires a Job on a standard 5-field cron spec.
type CronScheduler struct {
	spec   string
	job    Job
	logger *log.Logger
	cron   *cron.Cron

	// running is held for the duration of every run, scheduled or immediate.
	running sync.Mutex
}

// New validates spec and builds a scheduler.
func New(spec string, job Job, logger *log.Logger) (*CronScheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler: nil job")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}

	logger = logging.OrNop(logger)
	cl := cronLogger{logger: logger}
	return &CronScheduler{
		spec:   spec,
		job:    job,
		logger: logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}, nil
}

// Next returns the next activation after t.
func (s *CronScheduler) Next(t time.Time) time.Time {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(t.UTC())
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// run in progress to finish.
func (s *CronScheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("spec", s.spec).
		Time("next", s.Next(time.Now())).
		Msg("scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

// RunNow runs the job immediately unless a run is already in progress. It
// reports whether the job ran.
func (s *CronScheduler) RunNow(ctx context.Context) bool {
	return s.fire(ctx)
}

// fire is the single entry point for both cron ticks and RunNow.
func (s *CronScheduler) fire(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !s.running.TryLock() {
		s.logger.Warn().Msg("previous run still in progress, skipping")
		return false
	}
	defer s.running.Unlock()

	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled run failed")
	}
	return true
}

// cronLogger adapts phuslu/log to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	withPairs(l.logger.Debug(), keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	withPairs(l.logger.Error().Err(err), keysAndValues).Msg("cron: " + msg)
}

func withPairs(e *log.Entry, kv []any) *log.Entry {
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return e
}
