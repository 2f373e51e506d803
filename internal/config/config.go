// Package config provides configuration management for the hoopslines application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Features      FeaturesConfig      `mapstructure:"features" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Predictor     PredictorConfig     `mapstructure:"predictor"`
	Export        ExportConfig        `mapstructure:"export" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Teams         TeamsConfig         `mapstructure:"teams"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
	// SourceSchema holds the raw game log and betting line tables.
	SourceSchema string `mapstructure:"source_schema" validate:"required"`
	// FeatureSchema receives the derived feature and analytics tables.
	FeatureSchema string `mapstructure:"feature_schema" validate:"required"`
	// AnalyticsSchema receives the line analytics tables.
	AnalyticsSchema string `mapstructure:"analytics_schema" validate:"required"`
}

// FeaturesConfig controls the rolling window aggregation
type FeaturesConfig struct {
	WindowSize int    `mapstructure:"window_size" validate:"required,gt=0"`
	Mode       string `mapstructure:"mode" validate:"required,windowmode"`
	Workers    int    `mapstructure:"workers" validate:"gte=0"`
	WriteMode  string `mapstructure:"write_mode" validate:"required,oneof=replace append"`
	// FirstSeason drops older seasons before aggregation when non-zero.
	FirstSeason int `mapstructure:"first_season" validate:"gte=0"`
}

// DataIngestionConfig represents data ingestion configuration
type DataIngestionConfig struct {
	Season   int                `mapstructure:"season" validate:"required,gt=1946"`
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	Retry    RetryConfig        `mapstructure:"retry" validate:"required"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
}

// DataSourceConfig represents a single data source configuration
type DataSourceConfig struct {
	Name           string  `mapstructure:"name" validate:"required"`
	Type           string  `mapstructure:"type" validate:"required,oneof=gamelog lines csv lines_csv"`
	Enabled        bool    `mapstructure:"enabled"`
	URL            string  `mapstructure:"url" validate:"omitempty,url"`
	Path           string  `mapstructure:"path"`
	APIKey         string  `mapstructure:"api_key"`
	BatchSize      int     `mapstructure:"batch_size" validate:"omitempty,gt=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// RetryConfig bounds fetch retries against external sources
type RetryConfig struct {
	MaxAttempts   int `mapstructure:"max_attempts" validate:"required,gt=0"`
	BackoffMillis int `mapstructure:"backoff_millis" validate:"gte=0"`
}

// Backoff returns the fixed delay between attempts.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMillis) * time.Millisecond
}

// ScheduleConfig represents refresh scheduling
type ScheduleConfig struct {
	Refresh string `mapstructure:"refresh" validate:"required,schedule"`
	Rebuild string `mapstructure:"rebuild" validate:"omitempty,schedule"`
}

// PredictorConfig represents the external regressor service
type PredictorConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Transport       string `mapstructure:"transport" validate:"omitempty,oneof=grpc http"`
	GRPCAddress     string `mapstructure:"grpc_address"`
	HTTPAddress     string `mapstructure:"http_address" validate:"omitempty,url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	// BreakerFailures opens the circuit after this many failures within
	// BreakerWindowSeconds. Zero disables the breaker.
	BreakerFailures        int `mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerWindowSeconds   int `mapstructure:"breaker_window_seconds" validate:"gte=0"`
	BreakerCooldownSeconds int `mapstructure:"breaker_cooldown_seconds" validate:"gte=0"`
}

// ExportConfig controls analytics report exports
type ExportConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
	Format    string `mapstructure:"format" validate:"required,oneof=csv html both"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// TeamsConfig holds extra team abbreviation aliases
type TeamsConfig struct {
	Aliases map[string]string `mapstructure:"aliases"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns a PostgreSQL connection string for this database configuration
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// Source returns the named data source configuration, if present.
func (c *Config) Source(name string) (DataSourceConfig, bool) {
	for _, s := range c.DataIngestion.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return DataSourceConfig{}, false
}
