package api

import (
	"time"

	"github.com/marmos91/dittolist/pkg/search"
)

// Config configures the HTTP API adapter.
type Config struct {
	// Port is the TCP port to listen on
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds reading a whole request
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gte=0"`

	// WriteTimeout bounds writing a response. It must exceed the streaming
	// timeout so that a partial listing can still be delivered.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`

	// IdleTimeout bounds keep-alive connections between requests
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`

	// RateLimit bounds requests per client IP
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// CORS controls cross-origin access
	CORS CORSConfig `mapstructure:"cors"`
}

// RateLimitConfig configures per-client rate limiting. Zero means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
	Burst             uint `mapstructure:"burst"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API; "*" allows all
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Limits are the request defaults and bounds applied by the handlers.
type Limits struct {
	// DefaultPageSize is used when a listing request omits pageSize
	DefaultPageSize int

	// SearchDefaultLimit is used when a search omits limit
	SearchDefaultLimit int

	// SearchMaxLimit bounds the search limit
	SearchMaxLimit int

	// QuickSearchLimit is used when a quick search omits limit
	QuickSearchLimit int
}

// DefaultLimits returns the stock request limits.
func DefaultLimits() Limits {
	return Limits{
		DefaultPageSize:    1000,
		SearchDefaultLimit: search.DefaultLimit,
		SearchMaxLimit:     search.MaxLimit,
		QuickSearchLimit:   search.DefaultQuickLimit,
	}
}

func (l *Limits) applyDefaults() {
	d := DefaultLimits()
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = d.DefaultPageSize
	}
	if l.SearchDefaultLimit <= 0 {
		l.SearchDefaultLimit = d.SearchDefaultLimit
	}
	if l.SearchMaxLimit <= 0 {
		l.SearchMaxLimit = d.SearchMaxLimit
	}
	if l.QuickSearchLimit <= 0 {
		l.QuickSearchLimit = d.QuickSearchLimit
	}
}
