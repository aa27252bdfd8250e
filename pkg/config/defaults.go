package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittolist/pkg/api"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/listing/cache"
	"github.com/marmos91/dittolist/pkg/search"
	"github.com/marmos91/dittolist/pkg/store"
)

const (
	defaultOverscanLimit   = listing.DefaultOverscanLimit
	defaultShutdownTimeout = 30 * time.Second
	defaultMetricsPort     = 9090
	defaultAPIPort         = 3000
	defaultBadgerPath      = "./data"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
// listing.overscan_limit and cache.enabled are the exceptions: their zero
// values are valid settings, so their defaults come from the loader (see
// Load) or GetDefaultConfig.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(cfg)
	applyServerDefaults(&cfg.Server)
	applyListingDefaults(&cfg.Listing)
	applyCacheDefaults(&cfg.Cache)
	applyAPIDefaults(&cfg.API)
	applyStoreDefaults(&cfg.Store)

	if cfg.Recent.MaxEntries == 0 {
		cfg.Recent.MaxEntries = store.DefaultMaxRecent
	}
	applySearchDefaults(&cfg.Search)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = defaultMetricsPort
	}
}

func applyListingDefaults(cfg *ListingConfig) {
	if cfg.StreamingThreshold == 0 {
		cfg.StreamingThreshold = listing.DefaultStreamingThreshold
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = listing.DefaultBatchSize
	}
	if cfg.MaxPageSize == 0 {
		cfg.MaxPageSize = listing.DefaultMaxPageSize
	}
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = api.DefaultLimits().DefaultPageSize
	}
	if cfg.StreamTimeout == 0 {
		cfg.StreamTimeout = listing.DefaultStreamTimeout
	}
	if cfg.SkipMode == "" {
		cfg.SkipMode = string(listing.SkipAbort)
	}
	cfg.SkipMode = strings.ToLower(cfg.SkipMode)
}

// applyCacheDefaults fills the cache section. cache.enabled defaults to true
// in the loader, where an explicit false can still be told apart.
func applyCacheDefaults(cfg *cache.Config) {
	if cfg.TTL == 0 {
		cfg.TTL = cache.DefaultTTL
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = cache.DefaultMaxEntries
	}
}

func applyAPIDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = defaultAPIPort
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Must outlast a streaming scan so the partial page can be written
		cfg.WriteTimeout = 90 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 2 * time.Minute
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = defaultBadgerPath
	}
}

func applySearchDefaults(cfg *SearchConfig) {
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = search.DefaultLimit
	}
	if cfg.MaxLimit == 0 {
		cfg.MaxLimit = search.MaxLimit
	}
	if cfg.QuickLimit == 0 {
		cfg.QuickLimit = search.DefaultQuickLimit
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Listing: ListingConfig{
			OverscanLimit: defaultOverscanLimit,
		},
		Cache: cache.DefaultConfig(),
	}

	ApplyDefaults(cfg)
	return cfg
}
