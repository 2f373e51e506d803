package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/models"
)

func newTestScheduler() *Scheduler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewScheduler(l)
}

func okJob(calls *int) Job {
	return func(ctx context.Context) (*models.RunReport, error) {
		*calls++
		r := models.NewRunReport("refresh")
		r.Processed = 3
		r.Finish()
		return r, nil
	}
}

func TestScheduleRejectsBadExpressions(t *testing.T) {
	s := newTestScheduler()
	var calls int

	require.NoError(t, s.Schedule("refresh", "0 6 * * *", 0, okJob(&calls)))
	require.NoError(t, s.Schedule("rebuild", "@every 6h", time.Minute, okJob(&calls)))

	assert.Error(t, s.Schedule("refresh", "@daily", 0, okJob(&calls)))
	assert.Error(t, s.Schedule("bad", "every day", 0, okJob(&calls)))
	assert.ElementsMatch(t, []string{"refresh", "rebuild"}, s.Jobs())
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()
	var calls int
	require.NoError(t, s.Schedule("refresh", "@daily", 0, okJob(&calls)))

	report, err := s.RunNow(context.Background(), "refresh")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, report.Processed)

	_, err = s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunNowAppliesTimeout(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Schedule("slow", "@daily", 10*time.Millisecond, func(ctx context.Context) (*models.RunReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	_, err := s.RunNow(context.Background(), "slow")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRunNowSkipsOverlappingRun(t *testing.T) {
	s := newTestScheduler()
	started, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, s.Schedule("refresh", "@daily", 0, func(ctx context.Context) (*models.RunReport, error) {
		close(started)
		<-release
		return nil, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), "refresh")
		done <- err
	}()
	<-started

	_, err := s.RunNow(context.Background(), "refresh")
	assert.Error(t, err)

	close(release)
	assert.NoError(t, <-done)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start(), "no jobs")

	var calls int
	require.NoError(t, s.Schedule("refresh", "@daily", 0, okJob(&calls)))
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.Schedule("rebuild", "@daily", 0, okJob(&calls)))
	assert.Error(t, s.Remove("refresh"))
	assert.False(t, s.NextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Remove("refresh"))
	assert.Empty(t, s.Jobs())
}
