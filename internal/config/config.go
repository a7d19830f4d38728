// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecoexchange/recycle/internal/db"
)

// EnvProduction hides error detail from API responses.
const EnvProduction = "production"

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Blob      BlobConfig
	RateLimit RateLimitConfig
	Mock      MockConfig
}

// DatabaseConfig selects the SQL driver and data source.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Env        string
	JWTSecret  string
	LogFile    string
	LogLevel   string
	AdminEmail string
}

// BlobConfig selects where listing photos are stored.
type BlobConfig struct {
	Driver      string
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
}

// RateLimitConfig bounds requests per client IP. Requests <= 0 disables it.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// MockConfig configures the standalone mock-store mode.
type MockConfig struct {
	Standalone bool
	Dir        string
	Latency    bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", db.DriverSQLite),
			DSN:    getEnv("DB_DSN", "recycle.sqlite3"),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":5000"),
		},
		App: AppConfig{
			Env:        getEnv("APP_ENV", "development"),
			JWTSecret:  getEnv("JWT_SECRET", ""),
			LogFile:    getEnv("LOG_FILE", ""),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			AdminEmail: getEnv("ADMIN_EMAIL", "admin@recycle.local"),
		},
		Blob: BlobConfig{
			Driver:      getEnv("BLOB_DRIVER", "fs"),
			Dir:         getEnv("BLOB_DIR", "./blobdata"),
			S3Bucket:    getEnv("BLOB_S3_BUCKET", ""),
			S3Region:    getEnv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("BLOB_S3_ENDPOINT", ""),
			S3AccessKey: getEnv("BLOB_S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("BLOB_S3_SECRET_KEY", ""),
		},
		Mock: MockConfig{
			Dir: getEnv("MOCK_DIR", ""),
		},
	}

	var err error
	if cfg.Blob.S3PathStyle, err = getBool("BLOB_S3_PATH_STYLE", false); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Requests, err = getInt("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Mock.Standalone, err = getBool("STANDALONE", false); err != nil {
		return nil, err
	}
	if cfg.Mock.Latency, err = getBool("MOCK_LATENCY", true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, c.Database.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// Production reports whether error detail must be withheld from clients.
func (c *Config) Production() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
