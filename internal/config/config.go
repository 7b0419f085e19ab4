package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Store      StoreConfig      `mapstructure:"store"      validate:"required"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and configures the local durable store backend.
type StoreConfig struct {
	// Driver is the local store backend: sqlite for on-device use,
	// postgres for synced desktop deployments.
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	// Path is the sqlite database file path.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	// URL is the postgres connection string.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres"`
}

// RemoteConfig configures the remote store client and connectivity probing.
// An empty BaseURL runs the app fully offline; the sync queue accumulates.
type RemoteConfig struct {
	BaseURL              string `mapstructure:"base_url"               validate:"omitempty,url"`
	Token                string `mapstructure:"token"`
	TimeoutSeconds       int    `mapstructure:"timeout_seconds"        validate:"gte=0"`
	ProbeIntervalSeconds int    `mapstructure:"probe_interval_seconds" validate:"gte=0"`
}

// SyncConfig tunes the sync queue's retry policy.
type SyncConfig struct {
	MaxAttempts          int `mapstructure:"max_attempts"           validate:"gte=0"`
	RetryIntervalSeconds int `mapstructure:"retry_interval_seconds" validate:"gte=0"`
}

// QuizConfig tunes session behavior.
type QuizConfig struct {
	BatchSize          int `mapstructure:"batch_size"           validate:"gte=0"`
	AutoAdvanceSeconds int `mapstructure:"auto_advance_seconds" validate:"gte=0"`
}

// AuthConfig contains the settings protecting the local API surface.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
	// PasscodeHash is the bcrypt hash of the device passcode. Empty
	// disables the login endpoint.
	PasscodeHash string `mapstructure:"passcode_hash"`
}

// GenerationConfig configures the example-sentence generator. An empty API
// key disables generation; sentence lookups then rely on the remote alone.
type GenerationConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
