// Package metrics provides Prometheus collectors for DittoList components.
//
// Metrics are optional. Until InitRegistry is called the constructors return
// nil, and the listing service and API handler fall back to no-op
// implementations:
//
//	metrics.InitRegistry()
//	svc := listing.NewService(resolver, cache, nil, opts, metrics.NewListingMetrics())
//	handler := api.NewHandler(svc, searcher, st, cfg, limits, metrics.NewAPIMetrics())
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the process registry. Later calls are no-ops.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the process registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
