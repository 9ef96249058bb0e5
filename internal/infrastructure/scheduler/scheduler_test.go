package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its own runs" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "cleanup"}

	require.NoError(t, s.Register(job, Every(time.Minute)))

	err := s.Register(job, Every(time.Minute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)
}

func TestRegisterRejectsNilJob(t *testing.T) {
	s := newTestScheduler()

	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "x"}, nil), ErrNilSchedule)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrNotRunning)
}

func TestRunNowExecutesJob(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "cleanup"}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	result, err := s.RunNow(context.Background(), "cleanup")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "cleanup", result.JobName)
	assert.Equal(t, int64(1), job.runs.Load())

	last, ok := s.LastRun("cleanup")
	require.True(t, ok)
	assert.True(t, last.Success)
}

func TestRunNowReportsJobFailure(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "cleanup", err: errors.New("database unreachable")}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	result, err := s.RunNow(context.Background(), "cleanup")
	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestRunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()

	_, err := s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestIntervalSchedule(t *testing.T) {
	sched := Every(15 * time.Minute)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(15*time.Minute), sched.Next(now))
	assert.Equal(t, "@every 15m0s", sched.String())
}
