// Package scheduler runs the periodic maintenance jobs: the monitoring report,
// convention expiry and refresh token cleanup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/config"
	"github.com/yigit/agora/internal/pkg/metrics"
)

// Job names used as metric labels
const (
	JobMonitoringReport = "monitoring-report"
	JobConventionExpiry = "convention-expiry"
	JobTokenCleanup     = "token-cleanup"
)

const defaultJobTimeout = 5 * time.Minute

// Task is the work of one job run; the count is logged as the number of affected rows
type Task func(ctx context.Context) (int64, error)

// Job is a named task on a cron schedule
type Job struct {
	Name    string
	Spec    string
	Task    Task
	Timeout time.Duration
}

// Scheduler wraps a cron runner and records every run
type Scheduler struct {
	cron    *cron.Cron
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running map[string]bool
}

// New creates a scheduler. Jobs are added with Add and started by Run.
func New(m *metrics.Metrics, logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithParser(config.CronParser)),
		metrics: m,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]bool),
	}
}

// Add registers a job
func (s *Scheduler) Add(job Job) error {
	if job.Task == nil {
		return fmt.Errorf("job %s has no task", job.Name)
	}
	if job.Timeout <= 0 {
		job.Timeout = defaultJobTimeout
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("could not schedule job %s: %w", job.Name, err)
	}
	s.logger.Info().Str("job", job.Name).Str("schedule", job.Spec).Msg("Job scheduled")
	return nil
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits for running jobs
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")

	<-ctx.Done()

	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// execute runs one job, skipping it while a previous run of the same job is still in progress
func (s *Scheduler) execute(job Job) {
	s.mu.Lock()
	if s.running[job.Name] {
		s.mu.Unlock()
		s.logger.Warn().Str("job", job.Name).Msg("Previous run still in progress, skipping")
		return
	}
	s.running[job.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, job.Name)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
	defer cancel()

	start := time.Now()
	affected, err := s.safeRun(ctx, job)
	s.metrics.JobRun(job.Name, err)

	if err != nil {
		s.logger.Error().Err(err).Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Job failed")
		return
	}
	s.logger.Info().
		Str("job", job.Name).
		Int64("affected", affected).
		Dur("duration", time.Since(start)).
		Msg("Job finished")
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (affected int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.Task(ctx)
}
