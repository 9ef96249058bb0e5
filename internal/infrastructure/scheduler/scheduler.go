// Package scheduler runs periodic maintenance jobs for the internship hub,
// such as purging old read notifications.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNilJob           = errors.New("scheduler: job is nil")
	ErrNilSchedule      = errors.New("scheduler: schedule is nil")
	ErrJobAlreadyExists = errors.New("scheduler: job already registered")
	ErrAlreadyRunning   = errors.New("scheduler: already running")
	ErrNotRunning       = errors.New("scheduler: not running")
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is a unit of periodic work.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule decides when a job should run.
type Schedule interface {
	// Next returns the next time the job should run after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// JobResult records a single job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu sync.RWMutex

	logger *slog.Logger

	jobs    map[string]*scheduledJob
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastRuns map[string]*JobResult
}

// scheduledJob wraps a Job with its scheduling state.
type scheduledJob struct {
	job       Job
	schedule  Schedule
	lastRun   time.Time
	nextRun   time.Time
	runCount  int64
	failCount int64
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:   logger,
		jobs:     make(map[string]*scheduledJob),
		lastRuns: make(map[string]*JobResult),
	}
}

// Register adds a job to the scheduler with the given schedule.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	now := time.Now()
	s.jobs[name] = &scheduledJob{
		job:      job,
		schedule: schedule,
		nextRun:  schedule.Next(now),
	}

	s.logger.Info("job registered",
		"job", name,
		"description", job.Description(),
		"schedule", schedule.String(),
	)

	return nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs_count", len(s.jobs))

	s.wg.Add(1)
	go s.runLoop()

	return nil
}

// Stop gracefully stops the scheduler.
// It waits for all currently running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")

	return nil
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// LastRun returns the most recent result for a job, if it has run.
func (s *Scheduler) LastRun(jobName string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.lastRuns[jobName]
	if !ok {
		return JobResult{}, false
	}
	return *r, true
}

// RunNow executes a job immediately, ignoring its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	sj, ok := s.jobs[jobName]
	s.mu.RUnlock()
	if !ok {
		return JobResult{}, fmt.Errorf("scheduler: job not found: %s", jobName)
	}

	result := s.execute(ctx, sj)
	return result, result.Error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER LOOP
// ══════════════════════════════════════════════════════════════════════════════

func (s *Scheduler) runLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRunJobs()
		}
	}
}

// checkAndRunJobs runs every job whose next run time has passed.
func (s *Scheduler) checkAndRunJobs() {
	now := time.Now()

	s.mu.RLock()
	due := make([]*scheduledJob, 0)
	for _, sj := range s.jobs {
		if !sj.nextRun.IsZero() && now.After(sj.nextRun) {
			due = append(due, sj)
		}
	}
	s.mu.RUnlock()

	for _, sj := range due {
		s.wg.Add(1)
		go func(sj *scheduledJob) {
			defer s.wg.Done()
			s.execute(s.ctx, sj)
		}(sj)
	}
}

// execute runs a single job and records the result.
func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob) JobResult {
	jobName := sj.job.Name()
	startedAt := time.Now()

	// Advance the next run time before executing so a slow job
	// cannot pile up concurrent runs of itself.
	s.mu.Lock()
	sj.lastRun = startedAt
	sj.nextRun = sj.schedule.Next(startedAt)
	sj.runCount++
	s.mu.Unlock()

	s.logger.Info("job started", "job", jobName)

	err := sj.job.Run(ctx)
	completedAt := time.Now()

	result := JobResult{
		JobName:     jobName,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Success:     err == nil,
		Error:       err,
	}

	s.mu.Lock()
	if err != nil {
		sj.failCount++
	}
	s.lastRuns[jobName] = &result
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			"job", jobName,
			"duration", result.Duration.String(),
			"error", err,
		)
	} else {
		s.logger.Info("job completed",
			"job", jobName,
			"duration", result.Duration.String(),
		)
	}

	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// IntervalSchedule runs a job at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an IntervalSchedule for the given interval.
func Every(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
