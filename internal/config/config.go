// Package config defines the application configuration and its loading rules.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"    validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// CacheConfig contains the Redis connection settings and the TTL applied
// to cached task listings.
type CacheConfig struct {
	Addr              string `mapstructure:"addr"                validate:"required"`
	Password          string `mapstructure:"password"`
	ListingTTLSeconds int    `mapstructure:"listing_ttl_seconds" validate:"required,gt=0"`
}

// AuthConfig contains authentication and token issuance settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SMTPConfig contains the mail transport settings. The transport is an
// external collaborator; empty values are tolerated so the service can run
// without outbound mail in development.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// JobsConfig contains the notification job runner settings.
type JobsConfig struct {
	WorkerCount        int `mapstructure:"worker_count"         validate:"required,gt=0"`
	QueueSize          int `mapstructure:"queue_size"           validate:"required,gt=0"`
	MaxAttempts        int `mapstructure:"max_attempts"         validate:"required,gt=0"`
	BackoffBaseSeconds int `mapstructure:"backoff_base_seconds" validate:"required,gt=0"`
	BackoffCapSeconds  int `mapstructure:"backoff_cap_seconds"  validate:"required,gt=0"`
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
}
