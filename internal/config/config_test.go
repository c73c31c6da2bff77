package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "JWT_SECRET", "SESSION_TTL", "STORE_DRIVER", "SESSION_BACKEND", "REDIS_ADDR", "REDIS_PASS", "REDIS_DB", "LOG_LEVEL", "IS_PROD"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, SessionsMemory, cfg.SessionBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProd)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("STORE_DRIVER", StoreSQLite)
	t.Setenv("SESSION_BACKEND", SessionsRedis)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IS_PROD", "true")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, SessionsRedis, cfg.SessionBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsProd)
}

func TestFromEnvIgnoresBadTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	assert.Equal(t, 24*time.Hour, FromEnv().SessionTTL)

	t.Setenv("SESSION_TTL", "-5m")
	assert.Equal(t, 24*time.Hour, FromEnv().SessionTTL)
}
