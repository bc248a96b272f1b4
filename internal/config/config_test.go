package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.MessageRetention)
	assert.Equal(t, 2*time.Minute, cfg.OnlineThreshold)
	assert.Equal(t, 5*time.Minute, cfg.UserMaxAge)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MESSAGE_RETENTION", "30m")
	t.Setenv("ONLINE_THRESHOLD", "45s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.MessageRetention)
	assert.Equal(t, 45*time.Second, cfg.OnlineThreshold)
}

func TestGetDurationEnvInvalid(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "not-a-duration")

	d := GetDurationEnv("SWEEP_INTERVAL", 5*time.Minute)
	assert.Equal(t, 5*time.Minute, d, "unparseable duration falls back to the default")
}
