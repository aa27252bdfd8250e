// Package api implements the DittoList HTTP API: directory listings,
// bookmarks, recent directories and name search.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/internal/ratelimiter"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/search"
	"github.com/marmos91/dittolist/pkg/store"
)

// Lister produces directory listings. *listing.Service implements it.
type Lister interface {
	GetListing(ctx context.Context, path string, page, pageSize int) (*listing.Listing, error)
}

// Searcher finds entries by name. *search.Searcher implements it.
type Searcher interface {
	Search(ctx context.Context, dir, term string, limit int) (*search.Result, error)
}

// Handler serves the API routes.
type Handler struct {
	lister   Lister
	searcher Searcher
	store    store.Store
	limits   Limits
	limiter  *ratelimiter.RateLimiter
	metrics  Metrics
	decoder  *requestDecoder
	router   *httprouter.Router
	started  time.Time
	root     http.Handler
}

// NewHandler builds the API handler. A nil metrics disables request metrics.
func NewHandler(lister Lister, searcher Searcher, st store.Store, cfg Config, limits Limits, metrics Metrics) *Handler {
	limits.applyDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}

	h := &Handler{
		lister:   lister,
		searcher: searcher,
		store:    st,
		limits:   limits,
		limiter:  ratelimiter.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, ratelimiter.DefaultIdleTTL),
		metrics:  metrics,
		decoder:  newRequestDecoder(),
		router:   httprouter.New(),
		started:  time.Now(),
	}

	h.routes()
	h.root = withCORS(cfg.CORS, withSecurityHeaders(h.router))

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.route(http.MethodGet, "/api/directoryListing/directory", h.getDirectoryListing)

	h.route(http.MethodGet, "/api/bookmarks/all", h.listBookmarks)
	h.route(http.MethodGet, "/api/bookmarks/byId/:id", h.getBookmark)
	h.route(http.MethodPost, "/api/bookmarks/add", h.addBookmark)
	h.route(http.MethodDelete, "/api/bookmarks/delete/:id", h.deleteBookmark)
	h.route(http.MethodPatch, "/api/bookmarks/update/:id/access", h.touchBookmark)

	h.route(http.MethodGet, "/api/search/directory", h.searchDirectory)
	h.route(http.MethodGet, "/api/search/quick", h.quickSearch)

	h.route(http.MethodGet, "/api/recent", h.listRecent)
	h.route(http.MethodDelete, "/api/recent", h.clearRecent)

	h.route(http.MethodGet, "/health", h.health)

	h.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found",
			fmt.Sprintf("The requested endpoint %s does not exist", r.URL.Path))
	})
	h.router.HandleMethodNotAllowed = false
}

func (h *Handler) getDirectoryListing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := listingQuery{Page: 1, PageSize: h.limits.DefaultPageSize}
	if err := h.decoder.query(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	result, err := h.lister.GetListing(r.Context(), q.Path, q.Page, q.PageSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if _, err := h.store.RecordVisit(r.Context(), q.Path); err != nil {
		logger.Warn("Failed to record recent directory %s: %v", q.Path, err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listBookmarks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookmarks, err := h.store.ListBookmarks(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *Handler) getBookmark(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.store.GetBookmark(r.Context(), ps.ByName("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) addBookmark(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addBookmarkRequest
	if err := h.decoder.body(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Name and path are required", err.Error())
		return
	}

	b, err := h.store.AddBookmark(r.Context(), req.Name, req.Path)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.Info("Bookmark added: %s -> %s", b.Name, b.Path)
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) deleteBookmark(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.store.RemoveBookmark(r.Context(), ps.ByName("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) touchBookmark(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.store.TouchBookmark(r.Context(), ps.ByName("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) searchDirectory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := searchQuery{Limit: h.limits.SearchDefaultLimit}
	if err := h.decoder.query(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if q.Limit > h.limits.SearchMaxLimit {
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("Limit must be between 1 and %d", h.limits.SearchMaxLimit))
		return
	}

	h.runSearch(w, r, q.Path, q.Term, q.Limit)
}

func (h *Handler) quickSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := quickSearchQuery{Limit: h.limits.QuickSearchLimit}
	if err := h.decoder.query(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	h.runSearch(w, r, q.Path, q.Term, min(q.Limit, h.limits.SearchMaxLimit))
}

func (h *Handler) runSearch(w http.ResponseWriter, r *http.Request, dir, term string, limit int) {
	result, err := h.searcher.Search(r.Context(), dir, term, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listRecent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q recentQuery
	if err := h.decoder.query(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	recent, err := h.store.ListRecent(r.Context(), q.Limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

func (h *Handler) clearRecent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.store.ClearRecent(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Seconds(),
	})
}
