package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database. Empty DatabaseURL selects the embedded SQLite store.
	DatabaseURL string
	SQLitePath  string

	// Redis facts cache. Empty RedisURL disables caching.
	RedisURL      string
	FactsCacheTTL time.Duration

	// RabbitMQ. Empty RabbitMQURL keeps events on the in-process bus.
	RabbitMQURL string

	// Planning engine
	MaxPlacementDays int
	LunchSpanHours   float64
	LunchCutoffHour  float64
	LunchBreakHours  float64
	FallbackEndHour  float64

	// Organization default schedule
	OrgDayStartHour float64
	OrgDayEndHour   float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("PEOPLIX_SQLITE_PATH", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		FactsCacheTTL: getDurationEnv("FACTS_CACHE_TTL", 5*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		MaxPlacementDays: getIntEnv("PLANNING_MAX_PLACEMENT_DAYS", 1500),
		LunchSpanHours:   getFloatEnv("PLANNING_LUNCH_SPAN_HOURS", 8),
		LunchCutoffHour:  getFloatEnv("PLANNING_LUNCH_CUTOFF_HOUR", 14),
		LunchBreakHours:  getFloatEnv("PLANNING_LUNCH_BREAK_HOURS", 1),
		FallbackEndHour:  getFloatEnv("PLANNING_FALLBACK_END_HOUR", 18),

		OrgDayStartHour: getFloatEnv("ORG_DAY_START_HOUR", 9),
		OrgDayEndHour:   getFloatEnv("ORG_DAY_END_HOUR", 18),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
