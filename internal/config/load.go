package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables (prefix HANZI_, dots replaced by
// underscores, e.g. HANZI_SERVER_PORT) take precedence over file values.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("HANZI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults carry the load.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers fallback values for everything that has a sane one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/hanzi-review.db")
	v.SetDefault("store.url", "")

	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("remote.probe_interval_seconds", 15)

	v.SetDefault("sync.max_attempts", 5)
	v.SetDefault("sync.retry_interval_seconds", 30)

	v.SetDefault("quiz.batch_size", 10)
	v.SetDefault("quiz.auto_advance_seconds", 3)

	// Empty defaults register the keys so viper's Unmarshal can see
	// env-only values; validation rejects the empties that matter.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.passcode_hash", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("generation.gemini_api_key", "")
	v.SetDefault("generation.model_name", "gemini-2.0-flash")
}
