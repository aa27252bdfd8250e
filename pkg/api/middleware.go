package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/marmos91/dittolist/internal/logger"
	"github.com/rs/cors"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers fn for method and pattern wrapped in recovery, rate
// limiting, request logging and metrics. The pattern is the metrics label.
func (h *Handler) route(method, pattern string, fn httprouter.Handle) {
	h.router.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic serving %s %s: %v", r.Method, r.URL.Path, p)
				writeError(rec, http.StatusInternalServerError, "Internal server error", "")
			}

			duration := time.Since(start)
			h.metrics.ObserveRequest(pattern, method, rec.status, duration)
			logger.Info("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, duration)
		}()

		if !h.limiter.Unlimited() {
			key := clientIP(r)
			if !h.limiter.Allow(key) {
				h.metrics.RecordRateLimited(pattern)
				retry := int(math.Ceil(h.limiter.RetryAfter(key).Seconds()))
				rec.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				writeError(rec, http.StatusTooManyRequests, "Too many requests",
					"Too many requests from this IP, please try again later.")
				return
			}
		}

		fn(rec, r, ps)
	})
}

// clientIP returns the request's remote IP without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// withSecurityHeaders sets conservative response headers on every response.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "SAMEORIGIN")
		hdr.Set("Referrer-Policy", "no-referrer")
		hdr.Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// withCORS wraps next with rs/cors. No configured origins means any origin.
func withCORS(cfg CORSConfig, next http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Retry-After"},
	}).Handler(next)
}
