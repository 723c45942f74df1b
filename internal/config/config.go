// Package config loads the CLI and server settings from defaults, an optional
// YAML file and TURING_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment overrides (TURING_MAX_STEPS, ...).
const EnvPrefix = "TURING"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	LogFile  string        `mapstructure:"log_file"`
	MaxSteps int           `mapstructure:"max_steps"`
	Store    StoreConfig   `mapstructure:"store"`
	Library  LibraryConfig `mapstructure:"library"`
	HTTP     HTTPConfig    `mapstructure:"http"`
}

// StoreConfig selects where run snapshots are persisted.
type StoreConfig struct {
	Backend   string        `mapstructure:"backend"`
	Dir       string        `mapstructure:"dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`

	// EncryptionKey seals snapshots at rest when set (hex or base64, 32 bytes).
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

// LibraryConfig points at a directory of machine documents.
type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

// HTTPConfig configures `turing serve`.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		MaxSteps: 100000,
		Store: StoreConfig{
			Backend:   BackendFile,
			Dir:       ".turing/runs",
			RedisAddr: "localhost:6379",
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// New returns a viper instance primed with defaults and environment bindings.
// Callers bind their cobra flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("max_steps", defaults.MaxSteps)
	v.SetDefault("store.backend", defaults.Store.Backend)
	v.SetDefault("store.dir", defaults.Store.Dir)
	v.SetDefault("store.redis_addr", defaults.Store.RedisAddr)
	v.SetDefault("store.ttl", defaults.Store.TTL)
	v.SetDefault("store.encryption_key", defaults.Store.EncryptionKey)
	v.SetDefault("library.dir", defaults.Library.Dir)
	v.SetDefault("http.addr", defaults.HTTP.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (expected memory, file or redis)", c.Store.Backend)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}
