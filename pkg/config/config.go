package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Swapi      SwapiConfig
	Statistics StatisticsConfig
	OTEL       OTELConfig
	Env        string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SwapiConfig holds upstream Star Wars API configuration
type SwapiConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	SearchPeopleTTL int
	SearchMoviesTTL int
	DetailPeopleTTL int
	DetailMoviesTTL int
}

// StatisticsConfig holds statistics job configuration
type StatisticsConfig struct {
	Interval          time.Duration
	SnapshotKeepCount int
	LogRetentionDays  int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "swapi_explorer"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Swapi: SwapiConfig{
			BaseURL:        getEnv("SWAPI_BASE_URL", "https://www.swapi.tech/api"),
			RequestTimeout: getEnvAsDuration("SWAPI_TIMEOUT", 10*time.Second),
			MaxRetries:     getEnvAsInt("SWAPI_MAX_RETRIES", 2),
			RetryBaseDelay: getEnvAsDuration("SWAPI_RETRY_BASE_DELAY", 100*time.Millisecond),

			// TTLs in seconds: people data is volatile, film data is immutable
			SearchPeopleTTL: getEnvAsInt("CACHE_TTL_SEARCH_PEOPLE", 3600),
			SearchMoviesTTL: getEnvAsInt("CACHE_TTL_SEARCH_MOVIES", 86400),
			DetailPeopleTTL: getEnvAsInt("CACHE_TTL_DETAIL_PEOPLE", 3600),
			DetailMoviesTTL: getEnvAsInt("CACHE_TTL_DETAIL_MOVIES", 86400),
		},
		Statistics: StatisticsConfig{
			Interval:          getEnvAsDuration("STATS_INTERVAL", 5*time.Minute),
			SnapshotKeepCount: getEnvAsInt("STATS_SNAPSHOT_KEEP", 10),
			// 0 keeps the raw query log forever
			LogRetentionDays: getEnvAsInt("QUERY_LOG_RETENTION_DAYS", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "swapi-explorer"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
