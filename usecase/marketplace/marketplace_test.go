package marketplace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository/memory"
	"github.com/truckmitra/backend/repository/repotest"
	"github.com/truckmitra/backend/usecase/load"
	"github.com/truckmitra/backend/usecase/marketplace"
)

func caller(u *domain.User) domain.Caller {
	return domain.Caller{UserID: u.ID, Role: u.Role}
}

func loadIDs(loads []domain.Load) []string {
	ids := make([]string, 0, len(loads))
	for _, l := range loads {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestBoardViews(t *testing.T) {
	ctx := context.Background()
	loads := memory.NewLoadRepository()
	users := memory.NewUserRepository()
	engine := load.New(loads, users, nil)
	market := marketplace.New(loads)

	shipper := caller(repotest.CreateUser(t, users, domain.RoleShipper))
	l1 := caller(repotest.CreateUser(t, users, domain.RoleLoader))
	l2 := caller(repotest.CreateUser(t, users, domain.RoleLoader))

	post := func() *domain.Load {
		created, err := engine.Create(ctx, shipper, domain.LoadDraft{
			Origin: "Mumbai", Destination: "Delhi", MaterialType: "grain", Weight: 5000,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		return created
	}
	first, second, third := post(), post(), post()

	available, err := market.Available(ctx, l1)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, loadIDs(available))

	mine, err := market.MyPosted(ctx, shipper)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	for _, l := range mine {
		assert.Equal(t, domain.StatusStandBy, l.Status)
	}

	_, err = engine.Accept(ctx, l1, second.ID)
	require.NoError(t, err)
	_, err = engine.Accept(ctx, l1, first.ID)
	require.NoError(t, err)
	_, err = engine.StartTransit(ctx, l1, first.ID)
	require.NoError(t, err)
	_, err = engine.MarkDelivered(ctx, l1, first.ID)
	require.NoError(t, err)

	available, err = market.Available(ctx, l2)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID}, loadIDs(available))

	active, err := market.MyActive(ctx, l1)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, loadIDs(active))

	history, err := market.MyHistory(ctx, l1)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, loadIDs(history))

	other, err := market.MyActive(ctx, l2)
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err = market.MyPosted(ctx, shipper)
	require.NoError(t, err)
	statuses := map[string]domain.Status{}
	for _, l := range mine {
		statuses[l.ID] = l.Status
	}
	assert.Equal(t, domain.StatusDelivered, statuses[first.ID])
	assert.Equal(t, domain.StatusActive, statuses[second.ID])
	assert.Equal(t, domain.StatusStandBy, statuses[third.ID])
}

func TestBoardViewsEnforceRoles(t *testing.T) {
	ctx := context.Background()
	market := marketplace.New(memory.NewLoadRepository())
	shipper := domain.Caller{UserID: "s", Role: domain.RoleShipper}
	loader := domain.Caller{UserID: "l", Role: domain.RoleLoader}

	_, err := market.Available(ctx, shipper)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	_, err = market.MyActive(ctx, shipper)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	_, err = market.MyHistory(ctx, shipper)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	_, err = market.MyPosted(ctx, loader)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	empty, err := market.Available(ctx, loader)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
