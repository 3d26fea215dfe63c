package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

type purger struct {
	calls atomic.Int32
}

func (p *purger) Purge(time.Time) int {
	p.calls.Add(1)
	return 2
}

func TestSchedulerRunsJobs(t *testing.T) {
	refresher := &countingRefresher{}
	sessions := &purger{}

	s := NewScheduler(nil)
	require.NoError(t, s.Add(RefreshStats(refresher, "@every 1s")))
	require.NoError(t, s.Add(PurgeSessions(sessions, "@every 1s", nil)))

	s.Start()
	require.Eventually(t, func() bool {
		return refresher.calls.Load() > 0 && sessions.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSchedulerLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	refresher := &countingRefresher{err: errors.New("store offline")}

	s := NewScheduler(zap.New(core))
	require.NoError(t, s.Add(RefreshStats(refresher, "@every 1s")))
	s.Start()
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return logs.FilterMessage("scheduled job failed").Len() > 0
	}, 3*time.Second, 50*time.Millisecond)

	entry := logs.FilterMessage("scheduled job failed").All()[0]
	assert.Equal(t, "stats-refresh", entry.ContextMap()["job"])
}

func TestSchedulerRejectsBadJobs(t *testing.T) {
	s := NewScheduler(nil)
	assert.Error(t, s.Add(Job{Name: "empty", Schedule: "@every 1s"}))
	assert.Error(t, s.Add(RefreshStats(&countingRefresher{}, "not a schedule")))
}
