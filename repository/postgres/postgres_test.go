package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/repository"
	"github.com/truckmitra/backend/repository/postgres"
	"github.com/truckmitra/backend/repository/repotest"
)

// Runs against a migrated database when TEST_POSTGRES_URL is set.
func openPool(t *testing.T) *pgxpool.Pool {
	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func factory(t *testing.T) (repository.LoadRepository, repository.UserRepository) {
	pool := openPool(t)
	return postgres.NewLoadRepository(pool), postgres.NewUserRepository(pool)
}

func TestLoadRepository(t *testing.T) {
	repotest.RunLoadRepository(t, factory)
}

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepository(t, factory)
}
