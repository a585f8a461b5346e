package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CART_BACKEND", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, CartBackendMemory, cfg.CartBackend)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 8, cfg.CheckoutConcurrency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg := Load()
	assert.Equal(t, CartBackendRedis, cfg.CartBackend)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.RunMigrations)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	t.Setenv("CART_LOCK_TTL", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.CartLockTTL)
}

func TestLoad_JWTSecret(t *testing.T) {
	t.Run("dev falls back", func(t *testing.T) {
		t.Setenv("APP_ENV", "dev")
		t.Setenv("JWT_SECRET", "")
		cfg := Load()
		assert.Equal(t, devJWTSecret, cfg.JWTSecret)
		assert.NoError(t, cfg.Validate())
	})
	t.Run("prod requires it", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		t.Setenv("JWT_SECRET", "")
		cfg := Load()
		assert.Empty(t, cfg.JWTSecret)
		require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
	})
	t.Run("prod with secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		t.Setenv("JWT_SECRET", "s3cr3t")
		cfg := Load()
		assert.Equal(t, "s3cr3t", cfg.JWTSecret)
		assert.NoError(t, cfg.Validate())
	})
}
