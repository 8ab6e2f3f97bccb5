// Package config provides centralized configuration management for
// regtrace. It defines configuration structures for all components with
// validation, default values, and environment-based loading.
package config

import (
	"fmt"
	"time"
)

// ============================================================================
// Main Configuration Structure
// ============================================================================

// Config represents the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`

	// Redis configuration
	Redis RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`

	// Kafka event bus configuration
	Kafka KafkaConfig `mapstructure:"kafka" yaml:"kafka" json:"kafka"`

	// Evidence object storage configuration
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`

	// Observability configuration
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability" json:"observability"`

	// Engine tuning knobs
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`
}

// ============================================================================
// Server Configuration
// ============================================================================

// ServerConfig defines HTTP server configuration
type ServerConfig struct {
	// Host to bind to
	Host string `mapstructure:"host" yaml:"host" json:"host"`

	// Port to listen on
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// Mode (development, production)
	Mode string `mapstructure:"mode" yaml:"mode" json:"mode"`

	// Read timeout
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`

	// Write timeout
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// CORS allowed origins
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// Enable pprof endpoints
	EnablePprof bool `mapstructure:"enable_pprof" yaml:"enable_pprof" json:"enable_pprof"`

	// JWT signing secret for the bearer-token middleware
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret" json:"-"`

	// Requests per second per client for the rate limiter
	RateLimitRPS float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps"`

	// Rate limiter burst size
	RateLimitBurst int `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// ============================================================================
// Database Configuration
// ============================================================================

// DatabaseConfig defines PostgreSQL database configuration
type DatabaseConfig struct {
	// Host address
	Host string `mapstructure:"host" yaml:"host" json:"host"`

	// Port number
	Port int `mapstructure:"port" yaml:"port" json:"port"`

	// Database name
	Database string `mapstructure:"database" yaml:"database" json:"database"`

	// Username
	Username string `mapstructure:"username" yaml:"username" json:"username"`

	// Password
	Password string `mapstructure:"password" yaml:"password" json:"-"`

	// SSL mode (disable, require, verify-ca, verify-full)
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode" json:"ssl_mode"`

	// Maximum open connections
	MaxOpenConns int `mapstructure:"max_open_conns" yaml:"max_open_conns" json:"max_open_conns"`

	// Maximum idle connections
	MaxIdleConns int `mapstructure:"max_idle_conns" yaml:"max_idle_conns" json:"max_idle_conns"`

	// Connection max lifetime
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" json:"conn_max_lifetime"`

	// Enable auto migration
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate" json:"auto_migrate"`
}

// DSN builds the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

// ============================================================================
// Redis Configuration
// ============================================================================

// RedisConfig defines Redis cache configuration
type RedisConfig struct {
	// Address (host:port)
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`

	// Password
	Password string `mapstructure:"password" yaml:"password" json:"-"`

	// Database number
	DB int `mapstructure:"db" yaml:"db" json:"db"`

	// Connection pool size
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size" json:"pool_size"`

	// Key prefix for all cache entries
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix" json:"key_prefix"`

	// Default TTL for cached read models
	DefaultTTL time.Duration `mapstructure:"default_ttl" yaml:"default_ttl" json:"default_ttl"`
}

// ============================================================================
// Kafka Configuration
// ============================================================================

// KafkaConfig defines event bus configuration
type KafkaConfig struct {
	// Broker address list
	Brokers []string `mapstructure:"brokers" yaml:"brokers" json:"brokers"`

	// Client identifier
	ClientID string `mapstructure:"client_id" yaml:"client_id" json:"client_id"`

	// Topic for drift events
	DriftTopic string `mapstructure:"drift_topic" yaml:"drift_topic" json:"drift_topic"`

	// Topic for gap events
	GapTopic string `mapstructure:"gap_topic" yaml:"gap_topic" json:"gap_topic"`

	// Producer retries
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`

	// Disable publishing entirely (single-node deployments)
	Disabled bool `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
}

// ============================================================================
// Storage Configuration
// ============================================================================

// StorageConfig defines MinIO evidence store configuration
type StorageConfig struct {
	// Endpoint address
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// Access key
	AccessKeyID string `mapstructure:"access_key_id" yaml:"access_key_id" json:"-"`

	// Secret key
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key" json:"-"`

	// Use TLS
	UseSSL bool `mapstructure:"use_ssl" yaml:"use_ssl" json:"use_ssl"`

	// Bucket holding direct evidence objects
	EvidenceBucket string `mapstructure:"evidence_bucket" yaml:"evidence_bucket" json:"evidence_bucket"`

	// Presigned URL lifetime
	PresignExpiry time.Duration `mapstructure:"presign_expiry" yaml:"presign_expiry" json:"presign_expiry"`
}

// ============================================================================
// Observability Configuration
// ============================================================================

// ObservabilityConfig groups logging, metrics and tracing settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level" json:"level"`

	// Format (json, console)
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// Log file path (empty for stdout only)
	File string `mapstructure:"file" yaml:"file" json:"file"`

	// Max size per log file in MB before rotation
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`

	// Max rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`

	// Max age of rotated files in days
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
}

// MetricsConfig defines metrics exposition configuration
type MetricsConfig struct {
	// Enable the /metrics endpoint
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Namespace for all metrics
	Namespace string `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
}

// TracingConfig defines tracing configuration
type TracingConfig struct {
	// Enable trace export
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// OTLP gRPC endpoint
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// Sample ratio in [0,1]
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio" json:"sample_ratio"`
}

// ============================================================================
// Engine Configuration
// ============================================================================

// EngineConfig holds the tunable thresholds of the crosswalk and drift
// engine. These are heuristics, not contracts, so they live in config
// rather than as package constants.
type EngineConfig struct {
	// Coverage below this marks a requirement as an insufficient-coverage gap
	GapCoverageThreshold int `mapstructure:"gap_coverage_threshold" yaml:"gap_coverage_threshold" json:"gap_coverage_threshold"`

	// Coverage below this escalates an insufficient-coverage gap to high severity
	GapHighSeverityCoverage int `mapstructure:"gap_high_severity_coverage" yaml:"gap_high_severity_coverage" json:"gap_high_severity_coverage"`

	// Keyword overlap fraction required to auto-match a control to a new requirement
	AutoMapOverlapThreshold float64 `mapstructure:"automap_overlap_threshold" yaml:"automap_overlap_threshold" json:"automap_overlap_threshold"`

	// Number of top candidate controls kept per new requirement
	AutoMapTopK int `mapstructure:"automap_top_k" yaml:"automap_top_k" json:"automap_top_k"`

	// Days granted after the effective date when a version has no transition deadline
	TransitionGraceDays int `mapstructure:"transition_grace_days" yaml:"transition_grace_days" json:"transition_grace_days"`
}

// ============================================================================
// Defaults and Validation
// ============================================================================

// Default returns a configuration populated with sane development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "regtrace",
			Username:        "regtrace",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			KeyPrefix:  "regtrace:",
			DefaultTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:    []string{"localhost:9092"},
			ClientID:   "regtrace",
			DriftTopic: "regtrace.drift.events",
			GapTopic:   "regtrace.gap.events",
			MaxRetries: 3,
		},
		Storage: StorageConfig{
			Endpoint:       "localhost:9000",
			EvidenceBucket: "regtrace-evidence",
			PresignExpiry:  15 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:      "info",
				Format:     "json",
				MaxSizeMB:  100,
				MaxBackups: 5,
				MaxAgeDays: 30,
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "regtrace",
			},
			Tracing: TracingConfig{
				Endpoint:    "localhost:4317",
				SampleRatio: 0.1,
			},
		},
		Engine: EngineConfig{
			GapCoverageThreshold:    80,
			GapHighSeverityCoverage: 50,
			AutoMapOverlapThreshold: 0.30,
			AutoMapTopK:             5,
			TransitionGraceDays:     180,
		},
	}
}

// Validate checks the configuration for obvious misconfiguration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Engine.GapCoverageThreshold < 0 || c.Engine.GapCoverageThreshold > 100 {
		return fmt.Errorf("gap coverage threshold must be in [0,100], got %d", c.Engine.GapCoverageThreshold)
	}
	if c.Engine.GapHighSeverityCoverage > c.Engine.GapCoverageThreshold {
		return fmt.Errorf("high-severity coverage bound %d exceeds gap threshold %d",
			c.Engine.GapHighSeverityCoverage, c.Engine.GapCoverageThreshold)
	}
	if c.Engine.AutoMapOverlapThreshold < 0 || c.Engine.AutoMapOverlapThreshold > 1 {
		return fmt.Errorf("automap overlap threshold must be in [0,1], got %f", c.Engine.AutoMapOverlapThreshold)
	}
	if c.Engine.AutoMapTopK <= 0 {
		return fmt.Errorf("automap top-k must be positive, got %d", c.Engine.AutoMapTopK)
	}
	return nil
}
