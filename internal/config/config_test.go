package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"EPI_API_URL", "DATABASE_URL", "PORT", "GO_ENV", "FETCH_LOG_RETENTION",
		"MAINTENANCE_SCHEDULE", "SESSION_TTL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "http://localhost:8000", cfg.EpiAPIURL)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.FetchLogRetention)
	assert.Equal(t, "@every 1h", cfg.MaintenanceSchedule)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EPI_API_URL", "http://analytics:9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FETCH_LOG_RETENTION", "not-a-duration")

	cfg := FromEnv()
	assert.Equal(t, "http://analytics:9000", cfg.EpiAPIURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.FetchLogRetention)
}
