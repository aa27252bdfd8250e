package metrics

import (
	"time"

	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// listingMetrics is the Prometheus implementation of listing.Metrics.
type listingMetrics struct {
	listingsTotal   *prometheus.CounterVec
	listingDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	droppedEntries  *prometheus.CounterVec
	partialResults  *prometheus.CounterVec
	conflicts       prometheus.Counter
}

// NewListingMetrics creates a Prometheus-backed listing.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes the listing service use its no-op implementation.
func NewListingMetrics() listing.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newListingMetrics(GetRegistry())
}

func newListingMetrics(reg prometheus.Registerer) *listingMetrics {
	return &listingMetrics{
		listingsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_listings_total",
				Help: "Total number of directory traversals by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		listingDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittolist_listing_duration_seconds",
				Help: "Duration of directory traversals in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					15.0,  // 15s
					60.0,  // 60s, the stream timeout
				},
			},
			[]string{"strategy"},
		),
		cacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_listing_cache_lookups_total",
				Help: "Total number of listing cache lookups by result",
			},
			[]string{"result"},
		),
		droppedEntries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_dropped_entries_total",
				Help: "Total number of entries omitted because their metadata could not be read",
			},
			[]string{"strategy"},
		),
		partialResults: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittolist_partial_listings_total",
				Help: "Total number of streaming listings that ended early, by reason",
			},
			[]string{"reason"},
		),
		conflicts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittolist_listing_conflicts_total",
				Help: "Total number of streaming listings rejected because the path was already being read",
			},
		),
	}
}

// ObserveListing implements listing.Metrics.ObserveListing
func (m *listingMetrics) ObserveListing(strategy listing.Strategy, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.listingsTotal.WithLabelValues(string(strategy), status).Inc()
	m.listingDuration.WithLabelValues(string(strategy)).Observe(duration.Seconds())
}

// RecordCacheHit implements listing.Metrics.RecordCacheHit
func (m *listingMetrics) RecordCacheHit() {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// RecordCacheMiss implements listing.Metrics.RecordCacheMiss
func (m *listingMetrics) RecordCacheMiss() {
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordDroppedEntry implements listing.Metrics.RecordDroppedEntry
func (m *listingMetrics) RecordDroppedEntry(strategy listing.Strategy) {
	m.droppedEntries.WithLabelValues(string(strategy)).Inc()
}

// RecordPartial implements listing.Metrics.RecordPartial
func (m *listingMetrics) RecordPartial(reason listing.PartialReason) {
	m.partialResults.WithLabelValues(string(reason)).Inc()
}

// RecordConflict implements listing.Metrics.RecordConflict
func (m *listingMetrics) RecordConflict() {
	m.conflicts.Inc()
}
