package api

import "time"

// Metrics provides observability for the HTTP API.
//
// This interface is optional: a Handler built without one uses a no-op
// implementation. The Prometheus implementation lives in pkg/metrics.
type Metrics interface {
	// ObserveRequest records a completed request. route is the registered
	// pattern (e.g. "/api/bookmarks/byId/:id"), not the raw URL, to keep
	// label cardinality bounded.
	ObserveRequest(route, method string, status int, duration time.Duration)

	// RecordRateLimited records a request rejected by the rate limiter.
	RecordRateLimited(route string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRequest(string, string, int, time.Duration) {}
func (noopMetrics) RecordRateLimited(string)                          {}
