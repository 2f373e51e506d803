// Package scheduler runs the refresh and rebuild jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
)

// Job is one scheduled unit of work. It returns the report of the run.
type Job func(ctx context.Context) (*models.RunReport, error)

type namedJob struct {
	name    string
	spec    string
	job     Job
	timeout time.Duration
	entryID cron.EntryID
}

// Scheduler manages scheduled pipeline jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          logrus.FieldLogger
	mu              sync.RWMutex
	isRunning       bool
	jobs            map[string]*namedJob
	running         map[string]bool
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler on UTC
func NewScheduler(logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		logger:          logger,
		jobs:            make(map[string]*namedJob),
		running:         make(map[string]bool),
		gracefulTimeout: 30 * time.Second,
	}
}

// Schedule registers a job under name with a standard cron expression or a
// descriptor such as "@every 6h". Each run is bounded by timeout; zero means
// no bound.
func (s *Scheduler) Schedule(name, spec string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already scheduled", name)
	}

	nj := &namedJob{name: name, spec: spec, job: job, timeout: timeout}
	entryID, err := s.cron.AddFunc(spec, func() { s.execute(context.Background(), nj) })
	if err != nil {
		return fmt.Errorf("failed to add job %q: %w", name, err)
	}
	nj.entryID = entryID
	s.jobs[name] = nj

	s.logger.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Scheduled job")
	return nil
}

// RunNow executes a scheduled job immediately on the calling goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*models.RunReport, error) {
	s.mu.RLock()
	nj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	return s.execute(ctx, nj)
}

// execute runs a job unless a previous run of it is still going.
func (s *Scheduler) execute(ctx context.Context, nj *namedJob) (*models.RunReport, error) {
	s.mu.Lock()
	if s.running[nj.name] {
		s.mu.Unlock()
		s.logger.WithField("job", nj.name).Warn("Previous run still in progress, skipping")
		return nil, fmt.Errorf("job %q already running", nj.name)
	}
	s.running[nj.name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, nj.name)
		s.mu.Unlock()
	}()

	if nj.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nj.timeout)
		defer cancel()
	}

	log := s.logger.WithField("job", nj.name)
	log.Info("Starting scheduled job")
	report, err := nj.job(ctx)
	if err != nil {
		log.WithError(err).Error("Scheduled job failed")
		return report, err
	}
	if report != nil {
		log.WithField("report", report.String()).Info("Scheduled job completed")
	}
	return report, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs up to the graceful
// timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest next run across all jobs. It is zero before
// Start.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next time.Time
	for _, nj := range s.jobs {
		entry := s.cron.Entry(nj.entryID)
		if !entry.Valid() || entry.Next.IsZero() {
			continue
		}
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return next
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Remove unschedules a job
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}
	nj, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	s.cron.Remove(nj.entryID)
	delete(s.jobs, name)
	s.logger.WithField("job", name).Info("Removed job")
	return nil
}
