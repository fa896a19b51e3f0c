// Package config defines the global configuration structure for the FloodAura
// service. Configuration is loaded once at process initialization and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import (
	"time"

	"floodaura/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the FloodAura service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"floodaura-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server    ServerConfig
	Database  DatabaseConfig
	Weather   WeatherConfig
	Geocoder  GeocoderConfig
	Assistant AssistantConfig
	Security  SecurityConfig
	Archive   ArchiveConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"20s"`
	RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// WeatherConfig holds the live weather data source settings. The service
// degrades to seasonal estimates when the source is unreachable, so none of
// these are required.
type WeatherConfig struct {
	BaseURL string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com/v1"`
	Timeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"5s"`
}

// GeocoderConfig holds the forward-geocoding source settings.
type GeocoderConfig struct {
	BaseURL  string        `envconfig:"GEOCODER_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	Timeout  time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"5s"`
	CacheTTL time.Duration `envconfig:"GEOCODER_CACHE_TTL" default:"24h"`
}

// AssistantConfig holds the AI assistant passthrough credentials.
type AssistantConfig struct {
	APIKey  SecretString  `envconfig:"ASSISTANT_API_KEY"`
	BaseURL string        `envconfig:"ASSISTANT_BASE_URL"` // empty uses the provider default
	Model   string        `envconfig:"ASSISTANT_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"30s"`
}

// SecurityConfig holds admin access and CORS settings. AdminAPIKeyHash is a
// bcrypt hash of the ingest key, never the key itself.
type SecurityConfig struct {
	AdminAPIKeyHash    SecretString `envconfig:"ADMIN_API_KEY_HASH" validate:"required"`
	CorsAllowedOrigins []string     `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ArchiveConfig holds settings for the flood-event archival job.
type ArchiveConfig struct {
	OutputDir        string        `envconfig:"ARCHIVE_OUTPUT_DIR" default:"/var/lib/floodaura/archive"`
	RetentionPeriod  time.Duration `envconfig:"ARCHIVE_RETENTION" default:"2160h"` // 90 days
	CompressionLevel int           `envconfig:"ARCHIVE_COMPRESSION_LEVEL" default:"3"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
