// Package stats keeps a periodically refreshed summary of the marketplace:
// load counts per status, daily postings and a naive short-term forecast.
package stats

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

const (
	historyDays  = 14
	trailingDays = 7
	forecastDays = 7
	dateLayout   = "2006-01-02"
)

// UseCase holds the latest market snapshot.
type UseCase struct {
	loads  repository.LoadRepository
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	latest *domain.MarketStats
}

// New returns a stats use case; the first Refresh or Snapshot builds the summary.
func New(loads repository.LoadRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		loads:  loads,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh recomputes the snapshot from the store.
func (uc *UseCase) Refresh(ctx context.Context) error {
	all := make([]domain.Load, 0)
	for _, status := range domain.Statuses {
		loads, err := uc.loads.ListByStatus(ctx, status)
		if err != nil {
			return err
		}
		all = append(all, loads...)
	}

	snapshot := Summarize(all, uc.now())
	uc.mu.Lock()
	uc.latest = snapshot
	uc.mu.Unlock()

	uc.logger.Debug("market stats refreshed", zap.Int("loads", snapshot.Total))
	return nil
}

// Snapshot returns the latest summary, computing it on first use.
func (uc *UseCase) Snapshot(ctx context.Context) (*domain.MarketStats, error) {
	uc.mu.RLock()
	latest := uc.latest
	uc.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if err := uc.Refresh(ctx); err != nil {
		return nil, err
	}
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.latest, nil
}

// Summarize builds stats for loads as of now. Days are UTC calendar days; the
// forecast repeats the rounded mean of the trailing week.
func Summarize(loads []domain.Load, now time.Time) *domain.MarketStats {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstDay := today.AddDate(0, 0, -(historyDays - 1))

	byStatus := make(map[domain.Status]int, len(domain.Statuses))
	for _, status := range domain.Statuses {
		byStatus[status] = 0
	}
	perDay := make(map[string]int, historyDays)
	for _, l := range loads {
		byStatus[l.Status]++
		posted := l.PostedAt.UTC()
		if posted.Before(firstDay) || posted.After(now) {
			continue
		}
		perDay[posted.Format(dateLayout)]++
	}

	daily := make([]domain.DailyCount, 0, historyDays)
	for day := firstDay; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		daily = append(daily, domain.DailyCount{Date: key, Loads: perDay[key]})
	}

	trailing := 0
	for _, d := range daily[len(daily)-trailingDays:] {
		trailing += d.Loads
	}
	predicted := int(math.Round(float64(trailing) / trailingDays))

	forecast := make([]domain.Forecast, 0, forecastDays)
	for i := 1; i <= forecastDays; i++ {
		forecast = append(forecast, domain.Forecast{
			Date:           today.AddDate(0, 0, i).Format(dateLayout),
			PredictedLoads: predicted,
		})
	}

	return &domain.MarketStats{
		ByStatus:    byStatus,
		Total:       len(loads),
		DailyPosted: daily,
		Forecast:    forecast,
		GeneratedAt: now,
	}
}
