package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load.
// E.g. TASKAPI_SERVER_PORT maps to server.port.
const envPrefix = "TASKAPI"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; absence is not an error.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not make viper aware of keys that only exist in the
	// environment, so bind every known key explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"cache.addr",
		"cache.password",
		"cache.listing_ttl_seconds",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"smtp.host",
		"smtp.port",
		"smtp.username",
		"smtp.password",
		"smtp.from",
		"jobs.worker_count",
		"jobs.queue_size",
		"jobs.max_attempts",
		"jobs.backoff_base_seconds",
		"jobs.backoff_cap_seconds",
		"jobs.stuck_job_age_minutes",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for settings that have sensible
// out-of-the-box behavior. Secrets and connection URLs have no defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.listing_ttl_seconds", 300)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.max_attempts", 3)
	v.SetDefault("jobs.backoff_base_seconds", 5)
	v.SetDefault("jobs.backoff_cap_seconds", 300)
	v.SetDefault("jobs.stuck_job_age_minutes", 30)
}
