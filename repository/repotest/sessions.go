package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/repository"
)

// RunSessionRepository exercises the session store contract.
func RunSessionRepository(t *testing.T, sessions repository.SessionRepository) {
	ctx := context.Background()

	t.Run("save get delete", func(t *testing.T) {
		session := &domain.Session{
			ID:        uuid.NewString(),
			UserID:    uuid.NewString(),
			Role:      domain.RoleLoader,
			ExpiresAt: time.Now().Add(time.Minute),
		}
		require.NoError(t, sessions.Save(ctx, session))
		assert.False(t, session.CreatedAt.IsZero())

		got, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, got.UserID)
		assert.Equal(t, domain.RoleLoader, got.Role)

		require.NoError(t, sessions.Delete(ctx, session.ID))
		_, err = sessions.Get(ctx, session.ID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, sessions.Delete(ctx, session.ID))
	})

	t.Run("unknown and invalid", func(t *testing.T) {
		_, err := sessions.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.ErrorIs(t, sessions.Save(ctx, nil), domain.ErrInvalidPayload)
		assert.ErrorIs(t, sessions.Save(ctx, &domain.Session{}), domain.ErrInvalidPayload)
	})

	t.Run("expired session is hidden", func(t *testing.T) {
		session := &domain.Session{
			ID:        uuid.NewString(),
			UserID:    uuid.NewString(),
			Role:      domain.RoleShipper,
			CreatedAt: time.Now().Add(-time.Minute),
			ExpiresAt: time.Now().Add(150 * time.Millisecond),
		}
		require.NoError(t, sessions.Save(ctx, session))
		_, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			_, err := sessions.Get(ctx, session.ID)
			return err != nil
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, sessions.Ping(ctx))
	})
}
