package repository

import (
	"context"

	"github.com/truckmitra/backend/domain"
)

// LoadRepository is the source of truth for loads. Implementations must make
// CompareAndSetStatus linearizable per load id.
type LoadRepository interface {
	Create(ctx context.Context, load *domain.Load) (*domain.Load, error)
	GetByID(ctx context.Context, id string) (*domain.Load, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Load, error)
	ListByShipper(ctx context.Context, shipperID string) ([]domain.Load, error)
	// ListByLoader returns loads assigned to loaderID, restricted to statuses when given.
	ListByLoader(ctx context.Context, loaderID string, statuses ...domain.Status) ([]domain.Load, error)
	// CompareAndSetStatus commits change only if the persisted status equals
	// change.From, returning domain.ErrStatusConflict otherwise.
	CompareAndSetStatus(ctx context.Context, change domain.StatusChange) (*domain.Load, error)
	History(ctx context.Context, loadID string) ([]domain.LoadEvent, error)
	Ping(ctx context.Context) error
}
