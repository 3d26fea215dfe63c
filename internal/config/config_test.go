package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "JWT_SECRET", "DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
		"STORE_DRIVER", "SESSION_DRIVER", "ACCESS_TOKEN_TTL", "SERVER_HOST", "SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, SessionRedis, cfg.Session.Driver)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "development-secret", cfg.JWT.Secret)
	assert.Equal(t, "postgres://truckmitra:@localhost:5432/truckmitra?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("STORE_DRIVER", "BOLT")
	t.Setenv("SESSION_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBolt, cfg.Store.Driver)
	assert.Equal(t, SessionMemory, cfg.Session.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 2*time.Second, cfg.Context.RequestTimeout)
}

func TestLoadRejectsMissingSecretInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateUnknownDrivers(t *testing.T) {
	cfg := &Config{
		Store:   StoreConfig{Driver: "sqlite"},
		Session: SessionConfig{Driver: "memcached"},
		JWT:     JWTConfig{Secret: "s", AccessTTL: time.Minute},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "SESSION_DRIVER")
}
