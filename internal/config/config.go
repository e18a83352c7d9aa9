package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blog-comments-api/internal/models"
	"github.com/joho/godotenv"
)

// Rate limit policies
const (
	RateLimitNone        = "none"
	RateLimitTokenBucket = "token_bucket"
	RateLimitFixedWindow = "fixed_window"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Redis configuration, used by the fixed window limiter
	Redis RedisConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	TrustedProxies  []string // proxies whose X-Forwarded-For is honored
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	QueryTimeout   time.Duration
	MigrationsPath string
}

// RateLimitConfig selects and tunes the comment creation limiter
type RateLimitConfig struct {
	Policy string // "none", "token_bucket" or "fixed_window"

	// Token bucket
	RPS   float64
	Burst int

	// Fixed window
	Window time.Duration
	Max    int64
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxBodyBytes:    getInt64Env("MAX_BODY_BYTES", models.MaxEncodedBodyBytes),
			TrustedProxies:  getListEnv("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "blog_comments"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:   getDurationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		RateLimit: RateLimitConfig{
			Policy: getEnv("RATE_LIMIT_POLICY", RateLimitNone),
			RPS:    getFloatEnv("RATE_LIMIT_RPS", 1),
			Burst:  getIntEnv("RATE_LIMIT_BURST", 5),
			Window: getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Max:    getInt64Env("RATE_LIMIT_MAX", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	switch c.RateLimit.Policy {
	case RateLimitNone:
	case RateLimitTokenBucket:
		if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
		}
	case RateLimitFixedWindow:
		if c.RateLimit.Window <= 0 || c.RateLimit.Max <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX must be positive")
		}
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the fixed_window policy")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_POLICY %q (none, token_bucket, fixed_window)", c.RateLimit.Policy)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
