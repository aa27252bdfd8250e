package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/dittolist/pkg/store/badger"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Struct tags cover per-field ranges and enumerations; validateCustomRules
// covers constraints that relate fields of different sections.
//
// Log level normalization is handled in ApplyDefaults, not here. Validation
// accepts both uppercase and lowercase log levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if cfg.Cache.Enabled && cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache: max_entries must be positive when the cache is enabled")
	}

	if cfg.Listing.DefaultPageSize > cfg.Listing.MaxPageSize {
		return fmt.Errorf("listing: default_page_size (%d) exceeds max_page_size (%d)",
			cfg.Listing.DefaultPageSize, cfg.Listing.MaxPageSize)
	}

	// A partial page from a timed-out scan must still fit in the response window
	if cfg.API.WriteTimeout > 0 && cfg.API.WriteTimeout <= cfg.Listing.StreamTimeout {
		return fmt.Errorf("api: write_timeout (%s) must exceed listing.stream_timeout (%s)",
			cfg.API.WriteTimeout, cfg.Listing.StreamTimeout)
	}

	if cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return fmt.Errorf("search: default_limit (%d) exceeds max_limit (%d)",
			cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Search.QuickLimit > cfg.Search.MaxLimit {
		return fmt.Errorf("search: quick_limit (%d) exceeds max_limit (%d)",
			cfg.Search.QuickLimit, cfg.Search.MaxLimit)
	}

	if cfg.Store.Type == "badger" {
		if err := validateBadgerOptions(cfg.Store.Badger); err != nil {
			return err
		}
	}

	if cfg.Server.Metrics.Enabled && cfg.Server.Metrics.Port == cfg.API.Port {
		return fmt.Errorf("server.metrics: port %d is already used by the api", cfg.API.Port)
	}

	return nil
}

// validateBadgerOptions checks the badger store section before it is decoded.
func validateBadgerOptions(options map[string]any) error {
	var opts badger.Config
	if err := decodeOptions(options, &opts); err != nil {
		return fmt.Errorf("store.badger: %w", err)
	}
	if opts.DBPath == "" && !opts.InMemory {
		return errors.New("store.badger: db_path is required")
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
