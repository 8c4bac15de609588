// Package config provides centralized configuration management for the tracker.
// It loads configuration from environment variables with defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Sheets   SheetsConfig
	Sync     SyncConfig
	Security SecurityConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout also bounds the wait for a running sync (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for ordinary requests.
	// Sync requests are bounded by SYNC_TIMEOUT instead.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required for the postgres backend.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// EnsureSchema creates missing tables and views on startup (default: true)
	EnsureSchema bool `env:"DB_ENSURE_SCHEMA" default:"true"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	// Backend is postgres or mongo (default: postgres)
	Backend string `env:"STORE_BACKEND" default:"postgres"`

	MongoURI            string        `env:"MONGODB_URI" envAlt:"MONGO_URI"`
	MongoDatabase       string        `env:"MONGODB_DATABASE" default:"impact_tracker"`
	MongoConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" default:"10s"`
}

// SheetsConfig holds the Google Sheets source settings. Credentials are
// tried in field order: key file, inline JSON, email plus private key.
type SheetsConfig struct {
	SpreadsheetID       string `env:"GOOGLE_SHEETS_ID" envAlt:"SPREADSHEET_ID"`
	Range               string `env:"GOOGLE_SHEETS_RANGE" default:"Tracker!A:Z"`
	CredentialsFile     string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	CredentialsJSON     string `env:"GOOGLE_CREDENTIALS_JSON"`
	ServiceAccountEmail string `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey          string `env:"GOOGLE_PRIVATE_KEY"`
}

// Configured reports whether a spreadsheet id is set.
func (c *SheetsConfig) Configured() bool {
	return c.SpreadsheetID != ""
}

// SyncConfig holds the scheduled sync settings.
type SyncConfig struct {
	// Enabled starts the scheduler with the server (default: true)
	Enabled bool `env:"SYNC_ENABLED" default:"true"`

	// Source is the source the scheduler syncs (default: google-sheets)
	Source string `env:"SYNC_SOURCE" default:"google-sheets"`

	Interval   time.Duration `env:"SYNC_INTERVAL" default:"6h"`
	RunOnStart bool          `env:"SYNC_RUN_ON_START" default:"false"`

	// MaxWait is how long a scheduled sync waits for a running one (default: 2m)
	MaxWait time.Duration `env:"SYNC_MAX_WAIT" default:"2m"`

	// Timeout bounds a single sync run (default: 10m)
	Timeout time.Duration `env:"SYNC_TIMEOUT" default:"10m"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey protects the sync trigger endpoints (default: true)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"true"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// SyncLimit is requests per minute for sync trigger endpoints (default: 5)
	SyncLimit int `env:"RATE_LIMIT_SYNC" default:"5"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
