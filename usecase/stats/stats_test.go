package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository/memory"
	"github.com/truckmitra/backend/repository/repotest"
)

func posted(status domain.Status, at time.Time) domain.Load {
	return domain.Load{ID: at.String(), Status: status, PostedAt: at}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	loads := []domain.Load{
		posted(domain.StatusStandBy, now.Add(-time.Hour)),
		posted(domain.StatusStandBy, now.Add(-2*time.Hour)),
		posted(domain.StatusActive, now.AddDate(0, 0, -1)),
		posted(domain.StatusDelivered, now.AddDate(0, 0, -3)),
		posted(domain.StatusCancelled, now.AddDate(0, 0, -6)),
		posted(domain.StatusDelivered, now.AddDate(0, 0, -10)),
		posted(domain.StatusDelivered, now.AddDate(0, 0, -40)),
	}

	stats := Summarize(loads, now)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[domain.StatusStandBy])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusActive])
	assert.Equal(t, 0, stats.ByStatus[domain.StatusInTransit])
	assert.Equal(t, 3, stats.ByStatus[domain.StatusDelivered])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusCancelled])

	require.Len(t, stats.DailyPosted, historyDays)
	assert.Equal(t, "2026-03-07", stats.DailyPosted[0].Date)
	last := stats.DailyPosted[historyDays-1]
	assert.Equal(t, "2026-03-20", last.Date)
	assert.Equal(t, 2, last.Loads)

	counted := 0
	for _, d := range stats.DailyPosted {
		counted += d.Loads
	}
	assert.Equal(t, 6, counted, "loads older than the window are left out")

	// Trailing week holds 5 loads: round(5/7) = 1.
	require.Len(t, stats.Forecast, forecastDays)
	assert.Equal(t, "2026-03-21", stats.Forecast[0].Date)
	for _, f := range stats.Forecast {
		assert.Equal(t, 1, f.PredictedLoads)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil, time.Now())
	assert.Zero(t, stats.Total)
	assert.Len(t, stats.DailyPosted, historyDays)
	for _, f := range stats.Forecast {
		assert.Zero(t, f.PredictedLoads)
	}
}

func TestSnapshotRefresh(t *testing.T) {
	ctx := context.Background()
	loads := memory.NewLoadRepository()
	users := memory.NewUserRepository()
	shipper := repotest.CreateUser(t, users, domain.RoleShipper)
	uc := New(loads, nil)

	first, err := uc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Total)

	_, err = loads.Create(ctx, repotest.Draft(shipper.ID))
	require.NoError(t, err)

	cached, err := uc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, cached.Total, "snapshot is served until refreshed")

	require.NoError(t, uc.Refresh(ctx))
	fresh, err := uc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Total)
	assert.Equal(t, 1, fresh.ByStatus[domain.StatusStandBy])
}
