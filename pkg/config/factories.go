package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/api"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/listing/cache"
	"github.com/marmos91/dittolist/pkg/search"
	"github.com/marmos91/dittolist/pkg/store"
	"github.com/marmos91/dittolist/pkg/store/badger"
	"github.com/marmos91/dittolist/pkg/store/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateStore creates the bookmark and recent directory store.
//
// The Type field selects the implementation; the matching type-specific map
// is decoded into that implementation's Config. recent.max_entries always
// overrides a max_recent set in the type-specific section.
//
// Supported types:
//   - "badger": pkg/store/badger (persistent)
//   - "memory": pkg/store/memory (process lifetime only)
func CreateStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "badger":
		return createBadgerStore(ctx, cfg.Store.Badger, cfg.Recent.MaxEntries)
	case "memory":
		return createMemoryStore(cfg.Store.Memory, cfg.Recent.MaxEntries)
	default:
		return nil, fmt.Errorf("unknown store type: %q (supported: badger, memory)", cfg.Store.Type)
	}
}

func createBadgerStore(ctx context.Context, options map[string]any, maxRecent int) (store.Store, error) {
	var storeCfg badger.Config
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store options: %w", err)
	}
	storeCfg.MaxRecent = maxRecent

	if storeCfg.DBPath == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger store: db_path is required")
	}

	s, err := badger.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	logger.Info("Badger store opened at %s", storeCfg.DBPath)
	return s, nil
}

func createMemoryStore(options map[string]any, maxRecent int) (store.Store, error) {
	var storeCfg memory.Config
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory store options: %w", err)
	}
	storeCfg.MaxRecent = maxRecent

	logger.Info("Using in-memory store: bookmarks are lost on restart")
	return memory.New(storeCfg), nil
}

// decodeOptions decodes a type-specific map into a store Config, accepting
// the loose typing of YAML and environment values.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}

// CreateCache creates the listing result cache, or nil when it is disabled.
func CreateCache(cfg *Config) listing.Cache {
	if !cfg.Cache.Enabled {
		logger.Info("Listing cache disabled")
		return nil
	}
	return cache.New(cfg.Cache.MaxEntries)
}

// ListingOptions converts the listing and cache sections into service options.
func ListingOptions(cfg *Config) listing.Options {
	return listing.Options{
		StreamingThreshold: cfg.Listing.StreamingThreshold,
		BatchSize:          cfg.Listing.BatchSize,
		MaxPageSize:        cfg.Listing.MaxPageSize,
		CacheTTL:           cfg.Cache.TTL,
		Stream: listing.StreamOptions{
			Timeout:       cfg.Listing.StreamTimeout,
			OverscanLimit: cfg.Listing.OverscanLimit,
			SkipMode:      listing.SkipMode(cfg.Listing.SkipMode),
		},
	}
}

// CreateListingService creates the listing engine. A nil metrics means no-op.
func CreateListingService(cfg *Config, resolver listing.Resolver, metrics listing.Metrics) *listing.Service {
	return listing.NewService(resolver, CreateCache(cfg), listing.NewInFlight(), ListingOptions(cfg), metrics)
}

// APILimits converts the listing and search sections into handler limits.
func APILimits(cfg *Config) api.Limits {
	return api.Limits{
		DefaultPageSize:    cfg.Listing.DefaultPageSize,
		SearchDefaultLimit: cfg.Search.DefaultLimit,
		SearchMaxLimit:     cfg.Search.MaxLimit,
		QuickSearchLimit:   cfg.Search.QuickLimit,
	}
}

// CreateAPIAdapter wires the listing service, a searcher and the store into
// the HTTP API adapter.
func CreateAPIAdapter(cfg *Config, svc *listing.Service, resolver listing.Resolver, st store.Store, metrics api.Metrics) *api.HTTPAdapter {
	handler := api.NewHandler(svc, search.New(resolver), st, cfg.API, APILimits(cfg), metrics)
	return api.NewHTTPAdapter(cfg.API, handler)
}
