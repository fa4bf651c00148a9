package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "3306", cfg.DB.Port)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	require.Equal(t, "local", cfg.Storage.Driver)
	require.Equal(t, "inventory.events", cfg.Queue.Name)
	require.Equal(t, 60, cfg.RateLimit.Capacity)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	require.Error(t, err)
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, Burst: 10, RefillTokens: 0, RefillEvery: 2 * time.Second, TTL: time.Second}
	n := c.normalize()
	require.Equal(t, 10, n.Capacity)
	require.Equal(t, 1, n.RefillTokens)
	require.Equal(t, 2*time.Second, n.RefillInterval)
	require.Equal(t, 10*time.Second, n.TTL)
}

func TestRedisAddress(t *testing.T) {
	require.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380", Addr: "x:1"}.Address())
	require.Equal(t, "x:1", RedisConfig{Host: "cache", Addr: "x:1"}.Address())
}
