package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes.
const (
	AuthModeFirebase = "firebase"
	AuthModeHeader   = "header"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Ingest    IngestConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int

	// AutoMigrate applies the embedded schema at startup.
	AutoMigrate bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RedisConfig holds the caller-context cache connection.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	CallerTTL time.Duration
}

// AuthConfig selects how bearer identities are verified.
type AuthConfig struct {
	Mode                    string
	FirebaseCredentialsPath string
}

// StorageConfig points at the object store used for uploaded source files.
// An empty URL disables uploads.
type StorageConfig struct {
	URL     string
	APIKey  string
	Bucket  string
	Timeout time.Duration
}

// IngestConfig bounds spreadsheet uploads.
type IngestConfig struct {
	MaxUploadMB   int
	RatePerMinute int
}

// SchedulerConfig controls the promotion lifecycle job.
type SchedulerConfig struct {
	Enabled           bool
	PromotionSchedule string
}

// Load reads configuration from an optional .env file and the environment.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "estatedesk")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CALLER_CACHE_TTL", "5m")
	v.SetDefault("AUTH_MODE", AuthModeHeader)
	v.SetDefault("STORAGE_BUCKET", "project-files")
	v.SetDefault("STORAGE_TIMEOUT", "30s")
	v.SetDefault("INGEST_MAX_UPLOAD_MB", 10)
	v.SetDefault("INGEST_RATE_PER_MIN", 30)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("PROMOTION_SCHEDULE", "@every 1m")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			PoolMin:     v.GetInt("DB_POOL_MIN"),
			PoolMax:     v.GetInt("DB_POOL_MAX"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			CallerTTL: v.GetDuration("CALLER_CACHE_TTL"),
		},
		Auth: AuthConfig{
			Mode:                    strings.ToLower(strings.TrimSpace(v.GetString("AUTH_MODE"))),
			FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		},
		Storage: StorageConfig{
			URL:     strings.TrimRight(v.GetString("STORAGE_URL"), "/"),
			APIKey:  v.GetString("STORAGE_KEY"),
			Bucket:  v.GetString("STORAGE_BUCKET"),
			Timeout: v.GetDuration("STORAGE_TIMEOUT"),
		},
		Ingest: IngestConfig{
			MaxUploadMB:   v.GetInt("INGEST_MAX_UPLOAD_MB"),
			RatePerMinute: v.GetInt("INGEST_RATE_PER_MIN"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("SCHEDULER_ENABLED"),
			PromotionSchedule: v.GetString("PROMOTION_SCHEDULE"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Validate cache config
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative")
	}
	if c.Redis.CallerTTL < 0 {
		return fmt.Errorf("CALLER_CACHE_TTL must be non-negative")
	}

	// Validate auth config
	switch c.Auth.Mode {
	case AuthModeFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	case AuthModeHeader:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=header is not allowed in production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q", AuthModeFirebase, AuthModeHeader)
	}

	// Validate storage config
	if c.Storage.URL != "" && c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required when STORAGE_URL is set")
	}

	// Validate ingest config
	if c.Ingest.MaxUploadMB < 1 {
		return fmt.Errorf("INGEST_MAX_UPLOAD_MB must be at least 1")
	}
	if c.Ingest.RatePerMinute < 0 {
		return fmt.Errorf("INGEST_RATE_PER_MIN must be non-negative")
	}

	// Validate scheduler config
	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.PromotionSchedule) == "" {
		return fmt.Errorf("PROMOTION_SCHEDULE is required when the scheduler is enabled")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
