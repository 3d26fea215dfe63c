// Package memory holds in-process repository implementations used for local
// development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

// loadRecord guards one load and its history with its own mutex so that
// conditional writes on different loads never contend.
type loadRecord struct {
	mu     sync.Mutex
	load   domain.Load
	events []domain.LoadEvent
}

type loadRepository struct {
	mu      sync.RWMutex // protects the records map, not the records
	records map[string]*loadRecord
	now     func() time.Time
}

// NewLoadRepository returns an in-memory LoadRepository.
func NewLoadRepository() repository.LoadRepository {
	return &loadRepository{
		records: make(map[string]*loadRecord),
		now:     time.Now,
	}
}

func (r *loadRepository) Create(ctx context.Context, load *domain.Load) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if load == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := load.PrepareForCreate(r.now()); err != nil {
		return nil, err
	}

	rec := &loadRecord{load: *load.Clone()}
	rec.events = append(rec.events, domain.PostedEvent(load))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[load.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConflict, "load id already exists")
	}
	r.records[load.ID] = rec
	return load.Clone(), nil
}

func (r *loadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := r.record(id)
	if rec == nil {
		return nil, domain.ErrLoadNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.load.Clone(), nil
}

func (r *loadRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool { return l.Status == status })
}

func (r *loadRepository) ListByShipper(ctx context.Context, shipperID string) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool { return l.ShipperID == shipperID })
}

func (r *loadRepository) ListByLoader(ctx context.Context, loaderID string, statuses ...domain.Status) ([]domain.Load, error) {
	return r.filter(ctx, func(l *domain.Load) bool {
		return l.AssignedTo() == loaderID && repository.MatchStatus(l.Status, statuses)
	})
}

func (r *loadRepository) CompareAndSetStatus(ctx context.Context, change domain.StatusChange) (*domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := r.record(change.LoadID)
	if rec == nil {
		return nil, domain.ErrLoadNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.load.Status != change.From {
		return nil, domain.ErrStatusConflict
	}
	if change.At.IsZero() {
		change.At = r.now()
	}
	rec.load.Apply(change)
	rec.events = append(rec.events, domain.EventFor(change))
	return rec.load.Clone(), nil
}

func (r *loadRepository) History(ctx context.Context, loadID string) ([]domain.LoadEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := r.record(loadID)
	if rec == nil {
		return nil, domain.ErrLoadNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	events := make([]domain.LoadEvent, len(rec.events))
	copy(events, rec.events)
	return events, nil
}

func (r *loadRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *loadRepository) record(id string) *loadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[id]
}

func (r *loadRepository) filter(ctx context.Context, keep func(*domain.Load) bool) ([]domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	records := make([]*loadRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	loads := make([]domain.Load, 0)
	for _, rec := range records {
		rec.mu.Lock()
		if keep(&rec.load) {
			loads = append(loads, *rec.load.Clone())
		}
		rec.mu.Unlock()
	}
	repository.SortNewestFirst(loads)
	return loads, nil
}
