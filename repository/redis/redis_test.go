package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/repository/redis"
	"github.com/truckmitra/backend/repository/repotest"
)

// Runs against a live server when TEST_REDIS_URL is set.
func TestSessionRepository(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)

	client := redislib.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	repotest.RunSessionRepository(t, redis.NewSessionRepository(client, time.Minute))
}
