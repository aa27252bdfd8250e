// Package adapter defines the contract between DittoList front ends (the
// HTTP API, the metrics endpoint) and the server that runs them.
package adapter

import "context"

// Adapter is a network front end managed by server.Server.
//
// Lifecycle:
//  1. Creation: the adapter is built with its configuration and the shared
//     listing service and stores
//  2. Startup: Serve() starts listening and blocks until shutdown
//  3. Shutdown: Stop() initiates graceful shutdown with a timeout
//
// Thread safety:
// Stop() may be called concurrently with Serve() and more than once.
type Adapter interface {
	// Serve starts the front end and blocks until the context is cancelled
	// or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must stop accepting requests, let
	// in-flight requests finish (bounded by a timeout), and return nil or
	// context.Canceled. If Serve returns before cancellation, the server
	// treats it as fatal and stops every other adapter.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown. It must be idempotent and respect
	// the context deadline.
	Stop(ctx context.Context) error

	// Protocol returns the name used in logs, e.g. "http" or "metrics".
	Protocol() string

	// Port returns the TCP port the adapter listens on.
	Port() int
}
