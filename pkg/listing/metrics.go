package listing

import "time"

// Metrics provides observability for listing operations.
//
// This interface is optional: a Service built without one uses a no-op
// implementation. The Prometheus implementation lives in pkg/metrics.
type Metrics interface {
	// ObserveListing records one completed GetListing traversal (cache hits
	// are not traversals and are not observed here).
	ObserveListing(strategy Strategy, duration time.Duration, err error)

	// RecordCacheHit records a result cache hit.
	RecordCacheHit()

	// RecordCacheMiss records a result cache miss.
	RecordCacheMiss()

	// RecordDroppedEntry records an entry dropped because its metadata could
	// not be resolved.
	RecordDroppedEntry(strategy Strategy)

	// RecordPartial records a streaming scan that ended early.
	RecordPartial(reason PartialReason)

	// RecordConflict records a request denied by the in-flight guard.
	RecordConflict()
}

type noopMetrics struct{}

func (noopMetrics) ObserveListing(Strategy, time.Duration, error) {}
func (noopMetrics) RecordCacheHit()                               {}
func (noopMetrics) RecordCacheMiss()                              {}
func (noopMetrics) RecordDroppedEntry(Strategy)                   {}
func (noopMetrics) RecordPartial(PartialReason)                   {}
func (noopMetrics) RecordConflict()                               {}
