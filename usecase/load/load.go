// Package load implements the load lifecycle engine and the assignment
// coordinator. Every state change is a single conditional write to the load
// store; the store alone decides which concurrent writer wins.
package load

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

// UseCase is the load lifecycle engine. Accept is the assignment coordinator:
// one conditional write, no locks, no retries.
type UseCase struct {
	loads  repository.LoadRepository
	users  repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// New builds the engine over a load store; users is consulted to check the
// shipper on create.
func New(loads repository.LoadRepository, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		loads:  loads,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Create posts a new load owned by the calling shipper.
func (uc *UseCase) Create(ctx context.Context, caller domain.Caller, draft domain.LoadDraft) (*domain.Load, error) {
	if !caller.Is(domain.RoleShipper) {
		return nil, domain.Forbidden("only shippers can post loads")
	}

	shipper, err := uc.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Validation("shipper_id", "shipper does not exist")
		}
		return nil, err
	}
	if !shipper.Is(domain.RoleShipper) {
		return nil, domain.Forbidden("only shippers can post loads")
	}

	load, err := uc.loads.Create(ctx, domain.NewLoad(draft, shipper.ID))
	if err != nil {
		return nil, err
	}
	uc.logger.Info("load posted",
		zap.String("load_id", load.ID),
		zap.String("shipper_id", load.ShipperID),
	)
	return load, nil
}

// Get returns a load the caller is allowed to see.
func (uc *UseCase) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Load, error) {
	load, err := uc.loads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !load.VisibleTo(caller) {
		return nil, domain.Forbidden("load is not visible to the caller")
	}
	return load, nil
}

// History returns the audit trail of a load the caller is allowed to see.
func (uc *UseCase) History(ctx context.Context, caller domain.Caller, id string) ([]domain.LoadEvent, error) {
	if _, err := uc.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return uc.loads.History(ctx, id)
}

// Accept assigns a stand-by load to the calling loader. Concurrent callers
// race on one conditional write; losers get ErrAlreadyAccepted.
func (uc *UseCase) Accept(ctx context.Context, caller domain.Caller, id string) (*domain.Load, error) {
	if !caller.Is(domain.RoleLoader) {
		return nil, domain.Forbidden("only loaders can accept loads")
	}

	load, err := uc.loads.CompareAndSetStatus(ctx, domain.AcceptChange(id, caller.UserID, uc.now()))
	if err == nil {
		uc.logger.Info("load accepted",
			zap.String("load_id", load.ID),
			zap.String("loader_id", caller.UserID),
		)
		return load, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		return nil, err
	}

	// The read only picks the error; it never retries the write.
	current, readErr := uc.loads.GetByID(ctx, id)
	if readErr == nil && current.Status == domain.StatusCancelled {
		return nil, domain.InvalidTransition(current.Status, domain.EventAccept)
	}
	uc.logger.Debug("accept lost", zap.String("load_id", id), zap.String("loader_id", caller.UserID))
	return nil, domain.ErrAlreadyAccepted
}

func (uc *UseCase) Cancel(ctx context.Context, caller domain.Caller, id string) (*domain.Load, error) {
	return uc.Transition(ctx, caller, id, domain.EventCancel)
}

func (uc *UseCase) StartTransit(ctx context.Context, caller domain.Caller, id string) (*domain.Load, error) {
	return uc.Transition(ctx, caller, id, domain.EventStartTransit)
}

func (uc *UseCase) MarkDelivered(ctx context.Context, caller domain.Caller, id string) (*domain.Load, error) {
	return uc.Transition(ctx, caller, id, domain.EventMarkDelivered)
}

// Transition applies event to the load on behalf of caller. Authorization is
// checked before the state machine, so a wrong actor always gets Forbidden.
func (uc *UseCase) Transition(ctx context.Context, caller domain.Caller, id string, event domain.Event) (*domain.Load, error) {
	if event == domain.EventAccept {
		return uc.Accept(ctx, caller, id)
	}

	load, err := uc.loads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	change, err := domain.Plan(load, caller, event, uc.now())
	if err != nil {
		return nil, err
	}

	updated, err := uc.loads.CompareAndSetStatus(ctx, change)
	if err == nil {
		uc.logger.Info("load transitioned",
			zap.String("load_id", updated.ID),
			zap.String("event", string(event)),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.To)),
			zap.String("actor_id", caller.UserID),
		)
		return updated, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		return nil, err
	}

	// Someone else moved the load first. Re-plan against the committed state
	// to report the precise reason.
	current, readErr := uc.loads.GetByID(ctx, id)
	if readErr != nil {
		return nil, err
	}
	if _, planErr := domain.Plan(current, caller, event, uc.now()); planErr != nil {
		return nil, planErr
	}
	return nil, err
}
