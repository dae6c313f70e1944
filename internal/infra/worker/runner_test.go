package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"astro-news/internal/usecase/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	report *pipeline.Report
	err    error
	calls  atomic.Int32
}

func (j *stubJob) Run(ctx context.Context) (*pipeline.Report, error) {
	j.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("run context has no deadline")
	}
	return j.report, j.err
}

func newTestRunner(t *testing.T, job Job, mutate func(*Config)) (*Runner, *Metrics, *HealthServer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.HealthAddr = ":0"
	if mutate != nil {
		mutate(&cfg)
	}
	m := NewMetrics(prometheus.NewRegistry())
	hs := NewHealthServer(cfg.HealthAddr, nil)
	r, err := NewRunner(cfg, job, m, hs, nil)
	require.NoError(t, err)
	return r, m, hs
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "whenever"

	_, err := NewRunner(cfg, &stubJob{}, NewMetrics(prometheus.NewRegistry()), nil, nil)

	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name       string
		job        *stubJob
		wantStatus string
		wantSaved  float64
		wantError  string
	}{
		{
			name:       "success",
			job:        &stubJob{report: &pipeline.Report{Fetched: 4, Summarized: 3, Saved: 3}},
			wantStatus: "success",
			wantSaved:  3,
		},
		{
			name:       "nothing fetched",
			job:        &stubJob{report: &pipeline.Report{}},
			wantStatus: "empty",
		},
		{
			name:       "failure is sanitized",
			job:        &stubJob{err: errors.New("save summaries: key sk-or-v1-secretsecret leaked")},
			wantStatus: "failure",
			wantError:  "save summaries: key sk-or-**** leaked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m, hs := newTestRunner(t, tt.job, nil)

			r.RunOnce(context.Background())

			assert.Equal(t, int32(1), tt.job.calls.Load())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("started")))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(tt.wantStatus)))
			assert.Equal(t, tt.wantSaved, testutil.ToFloat64(m.ArticlesSaved))
			assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))

			require.NotNil(t, hs.lastRun)
			assert.Equal(t, tt.wantStatus, hs.lastRun.Status)
			assert.Equal(t, tt.wantError, hs.lastRun.Error)
		})
	}
}

func TestStart_RunOnStartAndStop(t *testing.T) {
	job := &stubJob{report: &pipeline.Report{Fetched: 1, Saved: 1}}
	r, _, hs := newTestRunner(t, job, func(c *Config) {
		c.CronSchedule = "@every 1h"
		c.RunOnStart = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		hs.mu.RLock()
		defer hs.mu.RUnlock()
		return hs.ready
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	hs.mu.RLock()
	defer hs.mu.RUnlock()
	assert.False(t, hs.ready)
}

type blockingJob struct {
	release chan struct{}
	calls   atomic.Int32
}

func (j *blockingJob) Run(context.Context) (*pipeline.Report, error) {
	j.calls.Add(1)
	<-j.release
	return &pipeline.Report{Fetched: 1, Saved: 1}, nil
}

func TestStart_StartupRunBlocksTicksAndShutdown(t *testing.T) {
	job := &blockingJob{release: make(chan struct{})}
	r, m, _ := newTestRunner(t, job, func(c *Config) {
		c.CronSchedule = "@every 1s"
		c.RunOnStart = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// At least one tick fires while the start-up run is still going.
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(1), job.calls.Load())

	cancel()
	select {
	case <-done:
		t.Fatal("runner stopped before the start-up run finished")
	case <-time.After(100 * time.Millisecond):
	}

	close(job.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
}
