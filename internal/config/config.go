package config

import (
	"os"
	"time"
)

type Config struct {
	Port string

	LogLevel string
	Env      string

	RedisURL string

	// MessageRetention is how long messages stay visible before the sweeper
	// may remove them.
	MessageRetention time.Duration

	// OnlineThreshold derives "online" from a user's last heartbeat.
	// Independent from UserMaxAge: a user can show offline long before the
	// sweeper evicts their directory entry.
	OnlineThreshold time.Duration

	// UserMaxAge is the inactivity limit after which the sweeper evicts a
	// presence record entirely.
	UserMaxAge time.Duration

	// SweepInterval caps how often the opportunistic maintenance pass runs.
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	return &Config{
		Port:             GetEnv("PORT", "8081"),
		RedisURL:         GetEnv("REDIS_URL", "redis://localhost:6379"),
		Env:              GetEnv("ENV", "development"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		MessageRetention: GetDurationEnv("MESSAGE_RETENTION", time.Hour),
		OnlineThreshold:  GetDurationEnv("ONLINE_THRESHOLD", 2*time.Minute),
		UserMaxAge:       GetDurationEnv("USER_MAX_AGE", 5*time.Minute),
		SweepInterval:    GetDurationEnv("SWEEP_INTERVAL", 5*time.Minute),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDurationEnv parses a Go duration string ("90s", "1h"). Unset or
// unparseable values fall back to the default.
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
