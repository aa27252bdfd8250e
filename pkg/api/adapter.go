package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/marmos91/dittolist/internal/logger"
)

// HTTPAdapter serves a Handler over HTTP and implements adapter.Adapter.
type HTTPAdapter struct {
	server       *http.Server
	port         int
	shutdownOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPAdapter creates an adapter serving handler on cfg.Port.
func NewHTTPAdapter(cfg Config, handler http.Handler) *HTTPAdapter {
	return &HTTPAdapter{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		port: cfg.Port,
	}
}

// Serve listens on the configured port and blocks until ctx is cancelled or
// the listener fails. Cancellation triggers a graceful shutdown whose
// deadline is left to the caller's Stop.
func (a *HTTPAdapter) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("http api listen on port %d: %w", a.port, err)
	}
	return a.serveListener(ctx, ln)
}

func (a *HTTPAdapter) serveListener(ctx context.Context, ln net.Listener) error {
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", ln.Addr())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		logger.Info("HTTP API shutdown signal received")
		return ctx.Err()
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("http api failed: %w", err)
	}
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires. It is safe to call more than once.
func (a *HTTPAdapter) Stop(ctx context.Context) error {
	var shutdownErr error
	a.shutdownOnce.Do(func() {
		logger.Debug("HTTP API shutdown initiated")
		if err := a.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("http api shutdown error: %w", err)
			logger.Error("HTTP API shutdown error: %v", err)
			return
		}
		logger.Info("HTTP API stopped gracefully")
	})
	return shutdownErr
}

// Addr returns the bound listener address, or nil before Serve.
func (a *HTTPAdapter) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Protocol implements adapter.Adapter.
func (a *HTTPAdapter) Protocol() string {
	return "http"
}

// Port implements adapter.Adapter.
func (a *HTTPAdapter) Port() int {
	return a.port
}
