package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("LIST_MAX_COUNT", "not-a-number")
	t.Setenv("MQ_BACKEND", "RabbitMQ")
	t.Setenv("JWT_SECRET", "  s3cret  ")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, time.Duration(0), cfg.Auth.TokenTTL)
	assert.Equal(t, 100, cfg.ListMaxCount)
	assert.Equal(t, MQRabbitMQ, cfg.MQ.Backend)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_DURATION", "90s")
	t.Setenv("CFG_TEST_BOOL", "true")
	t.Setenv("CFG_TEST_BAD_BOOL", "maybe")

	assert.Equal(t, 90*time.Second, getEnvDuration("CFG_TEST_DURATION", time.Second))
	assert.True(t, getEnvBool("CFG_TEST_BOOL", false))
	assert.False(t, getEnvBool("CFG_TEST_BAD_BOOL", false))
	assert.Equal(t, "fallback", getEnv("CFG_TEST_UNSET_KEY", "fallback"))
}
