package config

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration
type Config struct {
	EpiAPIURL           string
	DatabaseURL         string
	Port                string
	Env                 string
	FetchLogRetention   time.Duration
	MaintenanceSchedule string
	SessionTTL          time.Duration
	LogLevel            slog.Level
}

// Load reads .env when present, then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only
func FromEnv() *Config {
	return &Config{
		EpiAPIURL:           getEnv("EPI_API_URL", "http://localhost:8000"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("GO_ENV", "development"),
		FetchLogRetention:   getDuration("FETCH_LOG_RETENTION", 7*24*time.Hour),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "@every 1h"),
		SessionTTL:          getDuration("SESSION_TTL", 2*time.Hour),
		LogLevel:            getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		log.Printf("Invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return level
}
