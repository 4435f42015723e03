package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	failures int
	calls    int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(context.Context) error {
	j.calls++
	if j.calls <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&stubJob{name: "scan", schedule: "0 22 * * 1-5"}))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := s.AddJob(&stubJob{name: "scan", schedule: "@daily"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("invalid cron expression rejected", func(t *testing.T) {
		err := s.AddJob(&stubJob{name: "broken", schedule: "not a cron"})
		require.Error(t, err)
	})
}

func TestScheduler_RunNow(t *testing.T) {
	t.Run("records success in history", func(t *testing.T) {
		s := New(logger.NewNop()).WithRetry(0, time.Millisecond)
		job := &stubJob{name: "scan", schedule: "@daily"}
		require.NoError(t, s.AddJob(job))

		require.NoError(t, s.RunNow("scan"))

		history, err := s.GetJobHistory("scan")
		require.NoError(t, err)
		latest := history.Latest()
		require.NotNil(t, latest)
		assert.True(t, latest.Success)
		assert.Equal(t, 1, job.calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		s := New(logger.NewNop()).WithRetry(2, time.Millisecond)
		job := &stubJob{name: "flaky", schedule: "@daily", failures: 2}
		require.NoError(t, s.AddJob(job))

		require.NoError(t, s.RunNow("flaky"))

		history, _ := s.GetJobHistory("flaky")
		assert.True(t, history.Latest().Success)
		assert.Equal(t, 3, job.calls)
	})

	t.Run("records failure after exhausting retries", func(t *testing.T) {
		s := New(logger.NewNop()).WithRetry(1, time.Millisecond)
		job := &stubJob{name: "dead", schedule: "@daily", failures: 10}
		require.NoError(t, s.AddJob(job))

		require.NoError(t, s.RunNow("dead"))

		history, _ := s.GetJobHistory("dead")
		latest := history.Latest()
		assert.False(t, latest.Success)
		assert.Equal(t, "boom", latest.Error)
		assert.Equal(t, 2, job.calls)
	})

	t.Run("unknown job", func(t *testing.T) {
		require.Error(t, New(logger.NewNop()).RunNow("nope"))
	})
}
