package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/repository"
	"github.com/truckmitra/backend/repository/bolt"
	"github.com/truckmitra/backend/repository/repotest"
)

func factory(t *testing.T) (repository.LoadRepository, repository.UserRepository) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "data", "truckmitra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return bolt.NewLoadRepository(db), bolt.NewUserRepository(db)
}

func TestLoadRepository(t *testing.T) {
	repotest.RunLoadRepository(t, factory)
}

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepository(t, factory)
}
