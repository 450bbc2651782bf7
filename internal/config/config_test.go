package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear all environment variables
	clearConfigEnvVars()

	// Set only required env var (password has no default)
	t.Setenv("DB_PASSWORD", "testpass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "estatedesk" {
		t.Errorf("Expected db name estatedesk, got %s", cfg.Database.Name)
	}
	if cfg.Database.PoolMin != 2 || cfg.Database.PoolMax != 10 {
		t.Errorf("Expected pool 2..10, got %d..%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Expected migrations to run by default")
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Expected redis disabled by default, got %s", cfg.Redis.Addr)
	}
	if cfg.Redis.CallerTTL != 5*time.Minute {
		t.Errorf("Expected caller TTL 5m, got %s", cfg.Redis.CallerTTL)
	}
	if cfg.Auth.Mode != AuthModeHeader {
		t.Errorf("Expected auth mode header, got %s", cfg.Auth.Mode)
	}
	if cfg.Storage.URL != "" {
		t.Errorf("Expected storage disabled by default, got %s", cfg.Storage.URL)
	}
	if cfg.Storage.Timeout != 30*time.Second {
		t.Errorf("Expected storage timeout 30s, got %s", cfg.Storage.Timeout)
	}
	if cfg.Ingest.MaxUploadMB != 10 {
		t.Errorf("Expected max upload 10MB, got %d", cfg.Ingest.MaxUploadMB)
	}
	if cfg.Ingest.RatePerMinute != 30 {
		t.Errorf("Expected 30 ingests per minute, got %d", cfg.Ingest.RatePerMinute)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.PromotionSchedule != "@every 1m" {
		t.Errorf("Unexpected scheduler config %+v", cfg.Scheduler)
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()

	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CALLER_CACHE_TTL", "90s")
	t.Setenv("AUTH_MODE", "Firebase")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/secrets/firebase.json")
	t.Setenv("STORAGE_URL", "https://storage.example.com/")
	t.Setenv("STORAGE_KEY", "secret")
	t.Setenv("STORAGE_BUCKET", "brochures")
	t.Setenv("INGEST_MAX_UPLOAD_MB", "25")
	t.Setenv("INGEST_RATE_PER_MIN", "0")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify all values from environment
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Server.LogLevel)
	}
	if !cfg.IsProduction() {
		t.Errorf("Expected production env, got %s", cfg.Server.Env)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != "5433" || cfg.Database.Name != "testdb" {
		t.Errorf("Unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.PoolMin != 5 || cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool 5..20, got %d..%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Unexpected CORS origins %v", cfg.CORS.Origins)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 || cfg.Redis.CallerTTL != 90*time.Second {
		t.Errorf("Unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Auth.Mode != AuthModeFirebase || cfg.Auth.FirebaseCredentialsPath != "/secrets/firebase.json" {
		t.Errorf("Unexpected auth config %+v", cfg.Auth)
	}
	if cfg.Storage.URL != "https://storage.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Storage.URL)
	}
	if cfg.Storage.Bucket != "brochures" || cfg.Storage.APIKey != "secret" {
		t.Errorf("Unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Ingest.MaxUploadMB != 25 || cfg.Ingest.RatePerMinute != 0 {
		t.Errorf("Unexpected ingest config %+v", cfg.Ingest)
	}
	if cfg.Scheduler.Enabled {
		t.Error("Expected scheduler disabled")
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	// Clear all environment variables (password has no default)
	clearConfigEnvVars()

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_PASSWORD is missing")
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }},
		{name: "missing CORS origins", mutate: func(c *Config) { c.CORS.Origins = []string{} }},
		{name: "negative redis db", mutate: func(c *Config) { c.Redis.DB = -1 }},
		{name: "negative caller ttl", mutate: func(c *Config) { c.Redis.CallerTTL = -time.Second }},
		{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "basic" }},
		{name: "firebase without credentials", mutate: func(c *Config) { c.Auth.Mode = AuthModeFirebase }},
		{name: "header auth in production", mutate: func(c *Config) { c.Server.Env = "production" }},
		{name: "storage without bucket", mutate: func(c *Config) { c.Storage.URL = "http://s3"; c.Storage.Bucket = "" }},
		{name: "zero upload size", mutate: func(c *Config) { c.Ingest.MaxUploadMB = 0 }},
		{name: "negative ingest rate", mutate: func(c *Config) { c.Ingest.RatePerMinute = -1 }},
		{name: "scheduler without schedule", mutate: func(c *Config) { c.Scheduler.PromotionSchedule = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "single origin",
			input:  "http://localhost:3000",
			expect: []string{"http://localhost:3000"},
		},
		{
			name:   "origins with spaces",
			input:  " http://localhost:3000 , http://localhost:5173 ",
			expect: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		{
			name:   "empty string",
			input:  "",
			expect: []string{},
		},
		{
			name:   "only commas",
			input:  ",,,",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "estatedesk",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS:      CORSConfig{Origins: []string{"http://localhost:3000"}},
		Redis:     RedisConfig{CallerTTL: time.Minute},
		Auth:      AuthConfig{Mode: AuthModeHeader},
		Storage:   StorageConfig{Bucket: "project-files"},
		Ingest:    IngestConfig{MaxUploadMB: 10, RatePerMinute: 30},
		Scheduler: SchedulerConfig{Enabled: true, PromotionSchedule: "@every 1m"},
	}
}

// Helper function to clear all config-related environment variables
func clearConfigEnvVars() {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_POOL_MIN", "DB_POOL_MAX", "DB_AUTO_MIGRATE",
		"CORS_ORIGINS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CALLER_CACHE_TTL",
		"AUTH_MODE", "FIREBASE_CREDENTIALS_PATH",
		"STORAGE_URL", "STORAGE_KEY", "STORAGE_BUCKET", "STORAGE_TIMEOUT",
		"INGEST_MAX_UPLOAD_MB", "INGEST_RATE_PER_MIN",
		"SCHEDULER_ENABLED", "PROMOTION_SCHEDULE",
	} {
		os.Unsetenv(key)
	}
}
