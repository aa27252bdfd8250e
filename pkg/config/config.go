package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/api"
	"github.com/marmos91/dittolist/pkg/listing/cache"
	"github.com/spf13/viper"
)

// Config represents the complete DittoList configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOLIST_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type. The Store
// section carries one map per implementation (store.badger, store.memory)
// and only the one matching store.type is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging logger.Config `mapstructure:"logging"`

	// Server contains process-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Listing tunes the listing engine
	Listing ListingConfig `mapstructure:"listing"`

	// Cache configures the listing result cache
	Cache cache.Config `mapstructure:"cache"`

	// API configures the HTTP API adapter
	API api.Config `mapstructure:"api"`

	// Store selects bookmark and recent directory persistence
	Store StoreConfig `mapstructure:"store"`

	// Recent bounds the recently visited directories list
	Recent RecentConfig `mapstructure:"recent"`

	// Search bounds name searches
	Search SearchConfig `mapstructure:"search"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled starts the metrics adapter and registers collectors
	Enabled bool `mapstructure:"enabled"`

	// Port is the TCP port of the metrics endpoint
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// ListingConfig tunes the listing engine.
type ListingConfig struct {
	// StreamingThreshold is the entry count above which a directory is streamed
	StreamingThreshold int `mapstructure:"streaming_threshold" validate:"gt=0"`

	// BatchSize is the number of entries resolved concurrently in bulk mode
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`

	// MaxPageSize bounds the page size a client may request
	MaxPageSize int `mapstructure:"max_page_size" validate:"gt=0,lte=5000"`

	// DefaultPageSize is used when a request omits pageSize
	DefaultPageSize int `mapstructure:"default_page_size" validate:"gt=0"`

	// OverscanLimit is how many names past the page are counted before a
	// streaming scan stops. Negative disables the limit.
	OverscanLimit int `mapstructure:"overscan_limit"`

	// StreamTimeout bounds one streaming scan
	StreamTimeout time.Duration `mapstructure:"stream_timeout" validate:"gt=0"`

	// SkipMode is what a streaming scan does on a skip-policy match
	SkipMode string `mapstructure:"skip_mode" validate:"oneof=abort continue"`
}

// StoreConfig selects the bookmark and recent directory store.
type StoreConfig struct {
	// Type specifies which store implementation to use
	// Valid values: badger, memory
	Type string `mapstructure:"type" validate:"required,oneof=badger memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`
}

// RecentConfig bounds the recent directories list.
type RecentConfig struct {
	// MaxEntries is the number of recent directories kept
	MaxEntries int `mapstructure:"max_entries" validate:"gt=0"`
}

// SearchConfig bounds name searches.
type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gt=0"`
	MaxLimit     int `mapstructure:"max_limit" validate:"gt=0,lte=1000"`
	QuickLimit   int `mapstructure:"quick_limit" validate:"gt=0"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTOLIST_*)
//  2. Configuration file
//  3. Default values
//
// A missing configuration file is not an error: defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTOLIST_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DITTOLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Zero values of these keys are meaningful, so their defaults cannot be
	// applied after unmarshalling.
	v.SetDefault("listing.overscan_limit", defaultOverscanLimit)
	v.SetDefault("cache.enabled", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittolist")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittolist")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
