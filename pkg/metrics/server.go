package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/marmos91/dittolist/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultMetricsPort = 9090

	// Scrapes are small; these only guard against stuck clients.
	scrapeReadTimeout  = 10 * time.Second
	scrapeWriteTimeout = 10 * time.Second
	scrapeIdleTimeout  = 60 * time.Second
)

// ServerConfig configures the metrics HTTP server.
type ServerConfig struct {
	// Port to listen on. Zero means 9090.
	Port int
}

// Server exposes the registry on GET /metrics and implements
// adapter.Adapter so it runs next to the API.
//
// When metrics are disabled (InitRegistry not called) /metrics answers 503.
type Server struct {
	server       *http.Server
	port         int
	shutdownOnce sync.Once
}

// NewServer creates a stopped metrics server. Call Serve to start it.
func NewServer(config ServerConfig) *Server {
	if config.Port <= 0 {
		config.Port = defaultMetricsPort
	}

	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", scrapeHandler())
	router.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintf(w, "DittoList metrics server\nScrape http://<host>:%d/metrics\n", config.Port)
	})

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      router,
			ReadTimeout:  scrapeReadTimeout,
			WriteTimeout: scrapeWriteTimeout,
			IdleTimeout:  scrapeIdleTimeout,
		},
		port: config.Port,
	}
}

func scrapeHandler() http.Handler {
	if reg := GetRegistry(); reg != nil {
		return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	}

	logger.Debug("Metrics collection disabled")
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintln(w, "Metrics collection is disabled")
	})
}

// Handler returns the HTTP handler serving /metrics and the index page.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve listens on the configured port and blocks until ctx is cancelled or
// the listener fails. Shutdown is left to Stop.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen on port %d: %w", s.port, err)
	}
	return s.serveListener(ctx, ln)
}

func (s *Server) serveListener(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Metrics server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("metrics server shutdown error: %w", err)
			logger.Error("Metrics server shutdown error: %v", err)
			return
		}
		logger.Info("Metrics server stopped")
	})
	return shutdownErr
}

// Protocol implements adapter.Adapter.
func (s *Server) Protocol() string {
	return "metrics"
}

// Port implements adapter.Adapter.
func (s *Server) Port() int {
	return s.port
}
