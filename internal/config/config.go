package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port            string
	AllowedOrigins  []string
	LogLevel        string
	Environment     string
	DatabaseURL     string
	DatabaseReadURL string // Read replica URL for SELECT queries
	RedisURL        string
	AutoMigrate     bool
	AdminJWTSecret  string

	ChallongeAPIKey  string
	ChallongeBaseURL string
	RiotAPIKey       string
	RiotBaseURL      string // {host} is replaced by the platform or routing host
	ProviderTimeout  time.Duration

	MatchHistoryCount       int
	MatchHistoryConcurrency int
	RetentionDays           int
	SweepHourUTC            int
	LockTTL                 time.Duration
	RankCacheTTL            time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseReadURL: getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:        getEnv("REDIS_URL", ""),
		AutoMigrate:     getBoolEnv("AUTO_MIGRATE", false),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),

		ChallongeAPIKey:  getEnv("CHALLONGE_API_KEY", ""),
		ChallongeBaseURL: getEnv("CHALLONGE_BASE_URL", "https://api.challonge.com/v1"),
		RiotAPIKey:       getEnv("RIOT_API_KEY", ""),
		RiotBaseURL:      getEnv("RIOT_BASE_URL", "https://{host}.api.riotgames.com"),
		ProviderTimeout:  getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second),

		MatchHistoryCount:       getIntEnv("MATCH_HISTORY_COUNT", 20),
		MatchHistoryConcurrency: getIntEnv("MATCH_HISTORY_CONCURRENCY", 5),
		RetentionDays:           getIntEnv("RETENTION_DAYS", 7),
		SweepHourUTC:            getIntEnv("SWEEP_HOUR_UTC", 0),
		LockTTL:                 getDurationEnv("LOCK_TTL", 30*time.Second),
		RankCacheTTL:            getDurationEnv("RANK_CACHE_TTL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MatchHistoryConcurrency < 1 {
		return fmt.Errorf("MATCH_HISTORY_CONCURRENCY must be positive, got %d", c.MatchHistoryConcurrency)
	}
	if c.MatchHistoryCount < 1 || c.MatchHistoryCount > 100 {
		return fmt.Errorf("MATCH_HISTORY_COUNT must be between 1 and 100, got %d", c.MatchHistoryCount)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be positive, got %d", c.RetentionDays)
	}
	if c.SweepHourUTC < 0 || c.SweepHourUTC > 23 {
		return fmt.Errorf("SWEEP_HOUR_UTC must be between 0 and 23, got %d", c.SweepHourUTC)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// RetentionWindow is how long finished tournaments are kept
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
