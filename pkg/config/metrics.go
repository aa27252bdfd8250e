package config

import (
	"github.com/marmos91/dittolist/pkg/api"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Listing collects listing engine metrics (nil if disabled, meaning no-op)
	Listing listing.Metrics

	// API collects HTTP request metrics (nil if disabled, meaning no-op)
	API api.Metrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed collectors for the listing engine and the API
//
// If metrics are disabled every field is nil and components fall back to
// their no-op implementations.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Port: cfg.Server.Metrics.Port,
		}),
		Listing: metrics.NewListingMetrics(),
		API:     metrics.NewAPIMetrics(),
	}
}
