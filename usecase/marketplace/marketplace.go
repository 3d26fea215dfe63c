// Package marketplace serves the read-only board views. Every call reads the
// store directly, so views always reflect the latest committed transition.
package marketplace

import (
	"context"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

// UseCase answers the role-scoped board queries.
type UseCase struct {
	loads repository.LoadRepository
}

// New returns a query service reading from loads.
func New(loads repository.LoadRepository) *UseCase {
	return &UseCase{loads: loads}
}

// Available lists loads waiting for a loader, newest first.
func (uc *UseCase) Available(ctx context.Context, caller domain.Caller) ([]domain.Load, error) {
	if !caller.Is(domain.RoleLoader) {
		return nil, domain.Forbidden("only loaders can browse available loads")
	}
	return uc.loads.ListByStatus(ctx, domain.StatusStandBy)
}

// MyActive lists the caller's accepted or moving loads.
func (uc *UseCase) MyActive(ctx context.Context, caller domain.Caller) ([]domain.Load, error) {
	if !caller.Is(domain.RoleLoader) {
		return nil, domain.Forbidden("only loaders have active loads")
	}
	return uc.loads.ListByLoader(ctx, caller.UserID, domain.StatusActive, domain.StatusInTransit)
}

// MyHistory lists loads the caller has delivered.
func (uc *UseCase) MyHistory(ctx context.Context, caller domain.Caller) ([]domain.Load, error) {
	if !caller.Is(domain.RoleLoader) {
		return nil, domain.Forbidden("only loaders have delivery history")
	}
	return uc.loads.ListByLoader(ctx, caller.UserID, domain.StatusDelivered)
}

// MyPosted lists every load the calling shipper owns, in any status.
func (uc *UseCase) MyPosted(ctx context.Context, caller domain.Caller) ([]domain.Load, error) {
	if !caller.Is(domain.RoleShipper) {
		return nil, domain.Forbidden("only shippers have posted loads")
	}
	return uc.loads.ListByShipper(ctx, caller.UserID)
}
