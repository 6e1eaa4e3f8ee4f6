package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.RedisAddr)
	assert.NotEmpty(t, cfg.RefDBPath)
	assert.Equal(t, 300*time.Millisecond, cfg.SuggestWindow)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REF_DB_PATH", "/custom/buildings.db")
	t.Setenv("SUGGEST_WINDOW", "150ms")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, "/custom/buildings.db", cfg.RefDBPath)
	assert.Equal(t, 150*time.Millisecond, cfg.SuggestWindow)
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("SUGGEST_WINDOW", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 300*time.Millisecond, cfg.SuggestWindow)
}
