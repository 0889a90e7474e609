package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/pkg/metrics"
)

func TestAddRejectsBadJobs(t *testing.T) {
	s := New(metrics.New(), zerolog.Nop())

	err := s.Add(Job{Name: "nothing", Spec: "@daily"})
	assert.Error(t, err)

	err = s.Add(Job{Name: "bad-spec", Spec: "every day", Task: func(context.Context) (int64, error) { return 0, nil }})
	assert.Error(t, err)

	err = s.Add(Job{Name: JobTokenCleanup, Spec: "@daily", Task: func(context.Context) (int64, error) { return 0, nil }})
	assert.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestExecuteRecordsOutcome(t *testing.T) {
	m := metrics.New()
	s := New(m, zerolog.Nop())

	s.execute(Job{Name: JobConventionExpiry, Timeout: time.Second, Task: func(context.Context) (int64, error) { return 3, nil }})
	s.execute(Job{Name: JobMonitoringReport, Timeout: time.Second, Task: func(context.Context) (int64, error) {
		return 0, errors.New("database is down")
	}})
	s.execute(Job{Name: JobMonitoringReport, Timeout: time.Second, Task: func(context.Context) (int64, error) {
		panic("boom")
	}})

	expected := `
# HELP agora_job_runs_total Scheduled job runs by job name and result.
# TYPE agora_job_runs_total counter
agora_job_runs_total{job="convention-expiry",result="success"} 1
agora_job_runs_total{job="monitoring-report",result="error"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "agora_job_runs_total"))
}

func TestExecuteSkipsOverlappingRun(t *testing.T) {
	s := New(nil, zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32
	job := Job{Name: JobTokenCleanup, Timeout: time.Second, Task: func(context.Context) (int64, error) {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
		return 0, nil
	}}

	done := make(chan struct{})
	go func() {
		s.execute(job)
		close(done)
	}()
	<-started

	s.execute(job)
	close(release)
	<-done

	assert.Equal(t, int32(1), runs.Load())
}

func TestRunStopsWithContext(t *testing.T) {
	s := New(nil, zerolog.Nop())
	require.NoError(t, s.Add(Job{Name: JobTokenCleanup, Spec: "@hourly", Task: func(context.Context) (int64, error) { return 0, nil }}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Error(t, s.ctx.Err(), "job context is cancelled on shutdown")
}
