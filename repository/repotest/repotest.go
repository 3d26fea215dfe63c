// Package repotest holds the behavioural contract every repository driver
// must satisfy. Driver packages call these from their own tests.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

// Factory builds fresh, empty repositories for one subtest.
type Factory func(t *testing.T) (repository.LoadRepository, repository.UserRepository)

// RunLoadRepository exercises the load store contract.
func RunLoadRepository(t *testing.T, factory Factory) {
	t.Run("create assigns id and initial state", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipper := CreateUser(t, users, domain.RoleShipper)

		created, err := loads.Create(ctx, Draft(shipper.ID))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, domain.StatusStandBy, created.Status)
		assert.Nil(t, created.AssignedLoaderID)
		assert.False(t, created.PostedAt.IsZero())
		assert.True(t, created.PostedAt.Equal(created.StatusChangedAt))

		got, err := loads.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, shipper.ID, got.ShipperID)
		assert.Equal(t, "Pune", got.Origin)
		assert.Equal(t, "Mumbai", got.Destination)
		assert.Equal(t, "steel", got.MaterialType)
		assert.InDelta(t, 12.5, got.Weight, 1e-9)
		assert.Equal(t, domain.StatusStandBy, got.Status)
		assert.True(t, created.PostedAt.Equal(got.PostedAt))
	})

	t.Run("create rejects invalid loads", func(t *testing.T) {
		loads, users := factory(t)
		shipper := CreateUser(t, users, domain.RoleShipper)

		draft := Draft(shipper.ID)
		draft.Weight = 0
		_, err := loads.Create(context.Background(), draft)
		require.Error(t, err)
		assert.Equal(t, "weight", domain.FieldOf(err))

		draft = Draft(shipper.ID)
		draft.Origin = "  "
		_, err = loads.Create(context.Background(), draft)
		require.Error(t, err)
		assert.Equal(t, "origin", domain.FieldOf(err))
	})

	t.Run("get unknown load", func(t *testing.T) {
		loads, _ := factory(t)
		_, err := loads.GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrLoadNotFound)
	})

	t.Run("listings filter and order newest first", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipperA := CreateUser(t, users, domain.RoleShipper)
		shipperB := CreateUser(t, users, domain.RoleShipper)
		loader := CreateUser(t, users, domain.RoleLoader)

		first := mustCreate(t, loads, shipperA.ID)
		time.Sleep(2 * time.Millisecond)
		second := mustCreate(t, loads, shipperB.ID)
		time.Sleep(2 * time.Millisecond)
		third := mustCreate(t, loads, shipperA.ID)

		_, err := loads.CompareAndSetStatus(ctx, domain.AcceptChange(second.ID, loader.ID, time.Now()))
		require.NoError(t, err)

		standBy, err := loads.ListByStatus(ctx, domain.StatusStandBy)
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, ids(standBy, first, second, third))

		mine, err := loads.ListByShipper(ctx, shipperA.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, ids(mine, first, second, third))

		assigned, err := loads.ListByLoader(ctx, loader.ID, domain.StatusActive, domain.StatusInTransit)
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID}, ids(assigned, first, second, third))

		none, err := loads.ListByLoader(ctx, loader.ID, domain.StatusDelivered)
		require.NoError(t, err)
		assert.Empty(t, none)

		idle := CreateUser(t, users, domain.RoleLoader)
		empty, err := loads.ListByLoader(ctx, idle.ID)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("compare and set commits and records history", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipper := CreateUser(t, users, domain.RoleShipper)
		loader := CreateUser(t, users, domain.RoleLoader)
		load := mustCreate(t, loads, shipper.ID)

		accepted, err := loads.CompareAndSetStatus(ctx, domain.AcceptChange(load.ID, loader.ID, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, accepted.Status)
		assert.Equal(t, loader.ID, accepted.AssignedTo())
		assert.False(t, accepted.StatusChangedAt.Before(load.PostedAt))

		moving, err := loads.CompareAndSetStatus(ctx, domain.StatusChange{
			LoadID:  load.ID,
			From:    domain.StatusActive,
			To:      domain.StatusInTransit,
			Event:   domain.EventStartTransit,
			ActorID: loader.ID,
			At:      time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInTransit, moving.Status)
		assert.Equal(t, loader.ID, moving.AssignedTo(), "assignment is kept when no loader is given")

		history, err := loads.History(ctx, load.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, domain.EventPost, history[0].Event)
		assert.Equal(t, domain.StatusStandBy, history[0].To)
		assert.Equal(t, domain.EventAccept, history[1].Event)
		assert.Equal(t, domain.StatusStandBy, history[1].From)
		assert.Equal(t, loader.ID, history[1].ActorID)
		assert.Equal(t, domain.EventStartTransit, history[2].Event)
		assert.Equal(t, domain.StatusInTransit, history[2].To)
	})

	t.Run("compare and set reports conflict and missing load", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipper := CreateUser(t, users, domain.RoleShipper)
		loader := CreateUser(t, users, domain.RoleLoader)
		load := mustCreate(t, loads, shipper.ID)

		_, err := loads.CompareAndSetStatus(ctx, domain.StatusChange{
			LoadID: load.ID,
			From:   domain.StatusActive,
			To:     domain.StatusInTransit,
			Event:  domain.EventStartTransit,
		})
		assert.ErrorIs(t, err, domain.ErrStatusConflict)

		_, err = loads.CompareAndSetStatus(ctx, domain.AcceptChange(uuid.NewString(), loader.ID, time.Now()))
		assert.ErrorIs(t, err, domain.ErrLoadNotFound)

		got, err := loads.GetByID(ctx, load.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusStandBy, got.Status)

		history, err := loads.History(ctx, load.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1, "failed writes leave no history")
	})

	t.Run("cancelling an active load keeps the former loader", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipper := CreateUser(t, users, domain.RoleShipper)
		loader := CreateUser(t, users, domain.RoleLoader)
		load := mustCreate(t, loads, shipper.ID)

		_, err := loads.CompareAndSetStatus(ctx, domain.AcceptChange(load.ID, loader.ID, time.Now()))
		require.NoError(t, err)

		cancelled, err := loads.CompareAndSetStatus(ctx, domain.StatusChange{
			LoadID:  load.ID,
			From:    domain.StatusActive,
			To:      domain.StatusCancelled,
			Event:   domain.EventCancel,
			ActorID: shipper.ID,
			At:      time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
		assert.Equal(t, loader.ID, cancelled.AssignedTo())

		stored, err := loads.GetByID(ctx, load.ID)
		require.NoError(t, err)
		assert.Equal(t, loader.ID, stored.AssignedTo())

		all, err := loads.ListByLoader(ctx, loader.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{load.ID}, ids(all, load))

		working, err := loads.ListByLoader(ctx, loader.ID, domain.StatusActive, domain.StatusInTransit)
		require.NoError(t, err)
		assert.Empty(t, ids(working, load))
	})

	t.Run("history of unknown load", func(t *testing.T) {
		loads, _ := factory(t)
		_, err := loads.History(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrLoadNotFound)
	})

	t.Run("concurrent accepts have a single winner", func(t *testing.T) {
		loads, users := factory(t)
		ctx := context.Background()
		shipper := CreateUser(t, users, domain.RoleShipper)
		load := mustCreate(t, loads, shipper.ID)

		const contenders = 16
		loaders := make([]*domain.User, contenders)
		for i := range loaders {
			loaders[i] = CreateUser(t, users, domain.RoleLoader)
		}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []string
			lost    int
		)
		start := make(chan struct{})
		for _, loader := range loaders {
			wg.Add(1)
			go func(loaderID string) {
				defer wg.Done()
				<-start
				_, err := loads.CompareAndSetStatus(ctx, domain.AcceptChange(load.ID, loaderID, time.Now()))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					winners = append(winners, loaderID)
				case domain.IsDomainError(err, domain.ErrCodeConflict):
					lost++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(loader.ID)
		}
		close(start)
		wg.Wait()

		require.Len(t, winners, 1)
		assert.Equal(t, contenders-1, lost)

		got, err := loads.GetByID(ctx, load.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)
		assert.Equal(t, winners[0], got.AssignedTo())

		history, err := loads.History(ctx, load.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})
}

// RunUserRepository exercises the user store contract.
func RunUserRepository(t *testing.T, factory Factory) {
	t.Run("create and look up", func(t *testing.T) {
		_, users := factory(t)
		ctx := context.Background()

		created, err := users.Create(ctx, &domain.User{
			Email:        "  Ravi@Example.COM ",
			UserName:     "ravi",
			Role:         domain.RoleShipper,
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "ravi@example.com", created.Email)

		byID, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ravi", byID.UserName)
		assert.Equal(t, domain.RoleShipper, byID.Role)
		assert.Equal(t, "hash", byID.PasswordHash)

		byEmail, err := users.GetByEmail(ctx, "RAVI@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, users := factory(t)
		ctx := context.Background()
		_, err := users.Create(ctx, &domain.User{Email: "dup@example.com", UserName: "a", Role: domain.RoleLoader})
		require.NoError(t, err)

		_, err = users.Create(ctx, &domain.User{Email: "DUP@example.com", UserName: "b", Role: domain.RoleShipper})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, users := factory(t)
		_, err := users.GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = users.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

// CreateUser stores a user with a unique email and the given role.
func CreateUser(t *testing.T, users repository.UserRepository, role domain.Role) *domain.User {
	t.Helper()
	id := uuid.NewString()
	user, err := users.Create(context.Background(), &domain.User{
		Email:        id + "@example.com",
		UserName:     string(role) + "-" + id[:8],
		Role:         role,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

// Draft returns a valid unsaved load for shipperID.
func Draft(shipperID string) *domain.Load {
	return domain.NewLoad(domain.LoadDraft{
		Origin:       "Pune",
		Destination:  "Mumbai",
		MaterialType: "steel",
		Weight:       12.5,
		Description:  "coils",
	}, shipperID)
}

func mustCreate(t *testing.T, loads repository.LoadRepository, shipperID string) *domain.Load {
	t.Helper()
	load, err := loads.Create(context.Background(), Draft(shipperID))
	require.NoError(t, err)
	return load
}

// ids returns the ids of loads that belong to the given set, in listing
// order, so shared databases with leftover rows do not affect assertions.
func ids(loads []domain.Load, set ...*domain.Load) []string {
	known := make(map[string]bool, len(set))
	for _, l := range set {
		known[l.ID] = true
	}
	out := make([]string, 0, len(loads))
	for _, l := range loads {
		if known[l.ID] {
			out = append(out, l.ID)
		}
	}
	return out
}
