package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/adapter"
)

// DefaultStopTimeout bounds the graceful shutdown of all adapters.
const DefaultStopTimeout = 30 * time.Second

// ErrAlreadyServed is returned by Serve on a second call.
var ErrAlreadyServed = errors.New("server: Serve has already been called")

// Server manages the lifecycle of the DittoList front ends.
//
// Lifecycle:
//  1. Creation: New()
//  2. Registration: AddAdapter() for the HTTP API and, when enabled, the
//     metrics endpoint
//  3. Startup: Serve() starts all adapters concurrently
//  4. Shutdown: context cancellation, or the failure of any adapter, stops
//     all adapters in reverse registration order
//
// Example usage:
//
//	srv := server.New(cfg.Server.ShutdownTimeout)
//	srv.AddAdapter(api.NewHTTPAdapter(apiCfg, handler))
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Fatal(err)
//	}
type Server struct {
	stopTimeout time.Duration

	mu       sync.RWMutex
	adapters []adapter.Adapter
	served   bool
}

// New creates a Server. A non-positive stopTimeout means DefaultStopTimeout.
func New(stopTimeout time.Duration) *Server {
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Server{
		stopTimeout: stopTimeout,
		adapters:    make([]adapter.Adapter, 0, 2),
	}
}

// AddAdapter registers an adapter.
//
// Returns an error if the protocol is already registered, the port is taken
// by another adapter, or Serve has already been called.
func (s *Server) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		return errors.New("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		return errors.New("cannot add adapter after Serve() has been called")
	}

	protocol := a.Protocol()
	port := a.Port()

	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		if existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	s.adapters = append(s.adapters, a)

	logger.Info("Registered %s adapter on port %d", protocol, port)

	return nil
}

// Serve starts all registered adapters and blocks until the context is
// cancelled or an adapter fails.
//
// Returns:
//   - ctx.Err() if shutdown was triggered by the context
//   - the wrapped adapter error if an adapter failed
//   - ErrAlreadyServed on a second call
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		return ErrAlreadyServed
	}
	s.served = true
	if len(s.adapters) == 0 {
		s.mu.Unlock()
		return errors.New("no adapters registered; call AddAdapter() before Serve()")
	}
	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	s.mu.Unlock()

	logger.Info("Starting DittoList server with %d adapter(s)", len(adapters))

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so failing adapters never block
	errChan := make(chan adapterError, len(adapters))

	var wg sync.WaitGroup
	for _, adp := range adapters {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()

			protocol := a.Protocol()
			logger.Info("Starting %s adapter on port %d", protocol, a.Port())

			err := a.Serve(serveCtx)
			switch {
			case err != nil && !errors.Is(err, context.Canceled) && serveCtx.Err() == nil:
				logger.Error("%s adapter failed: %v", protocol, err)
				errChan <- adapterError{protocol: protocol, err: err}
			case serveCtx.Err() == nil:
				// Returned early without error: still fatal for the server
				errChan <- adapterError{protocol: protocol, err: errors.New("stopped unexpectedly")}
			default:
				logger.Debug("%s adapter stopped", protocol)
			}
		}(adp)
	}

	var shutdownErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received (reason: %v)", ctx.Err())
		shutdownErr = ctx.Err()

	case adapterErr := <-errChan:
		logger.Error("Adapter %s failed: %v - initiating shutdown of all adapters",
			adapterErr.protocol, adapterErr.err)
		shutdownErr = fmt.Errorf("%s adapter error: %w", adapterErr.protocol, adapterErr.err)
	}

	cancel()
	s.stopAll(adapters)

	logger.Debug("Waiting for all adapters to complete shutdown")
	wg.Wait()

	logger.Info("DittoList server stopped")

	return shutdownErr
}

// adapterError pairs an adapter protocol name with its error.
type adapterError struct {
	protocol string
	err      error
}

// stopAll calls Stop on every adapter in reverse registration order, sharing
// one stop timeout. Errors are logged and do not interrupt the sequence.
func (s *Server) stopAll(adapters []adapter.Adapter) {
	ctx, cancel := context.WithTimeout(context.Background(), s.stopTimeout)
	defer cancel()

	logger.Info("Initiating graceful shutdown of %d adapter(s)", len(adapters))

	for i := len(adapters) - 1; i >= 0; i-- {
		adp := adapters[i]
		if err := adp.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Error stopping %s adapter: %v", adp.Protocol(), err)
		}
	}
}

// Adapters returns a snapshot of the registered adapters.
func (s *Server) Adapters() []adapter.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	return adapters
}
