package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
	"github.com/truckmitra/backend/repository/memory"
	"github.com/truckmitra/backend/repository/repotest"
)

func factory(t *testing.T) (repository.LoadRepository, repository.UserRepository) {
	return memory.NewLoadRepository(), memory.NewUserRepository()
}

func TestLoadRepository(t *testing.T) {
	repotest.RunLoadRepository(t, factory)
}

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepository(t, factory)
}

func TestLoadRepositoryHonoursCancelledContext(t *testing.T) {
	repo := memory.NewLoadRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListByStatus(ctx, domain.StatusStandBy)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionRepository(t *testing.T) {
	repotest.RunSessionRepository(t, memory.NewSessionRepository(time.Minute))
}

func TestSessionPurge(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository(time.Minute)

	live := &domain.Session{ID: "live", UserID: "u1", Role: domain.RoleLoader, ExpiresAt: time.Now().Add(time.Minute)}
	stale := &domain.Session{ID: "stale", UserID: "u2", Role: domain.RoleShipper, CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Save(ctx, live))
	require.NoError(t, repo.Save(ctx, stale))

	got, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = repo.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Equal(t, 1, repo.Purge(time.Now()))

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Get(ctx, "live")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
