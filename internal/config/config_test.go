package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8081", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, TxIsolationReadCommitted, cfg.Postgres.TxIsolation)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 3, cfg.Registration.MaxAttempts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_TX_ISOLATION", "SERIALIZABLE")
	t.Setenv("POSTGRES_MAX_CONNS", "25")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_CACHE_TTL_SECONDS", "5")
	t.Setenv("REGISTRATION_MAX_ATTEMPTS", "5")
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, TxIsolationSerializable, cfg.Postgres.TxIsolation)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL())
	assert.Equal(t, 5, cfg.Registration.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL())
}

func TestLoadRejectsUnknownIsolation(t *testing.T) {
	t.Setenv("POSTGRES_TX_ISOLATION", "chaos")

	_, err := Load()
	require.Error(t, err)
}
