package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/search"
	"github.com/marmos91/dittolist/pkg/store"
)

// retryAfterSeconds is sent with 409 responses for a directory that is
// already being streamed.
const retryAfterSeconds = "1"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to encode response: %v", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, errorBody{Error: title, Message: message})
}

// writeDomainError maps an error from the listing engine, the stores or the
// searcher onto an HTTP response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var le *listing.ListingError
	if errors.As(err, &le) {
		status, title := statusForCode(le.Code)
		if le.Code == listing.ErrAlreadyInProgress {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
		}
		writeError(w, status, title, le.Error())
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Bookmark not found", "")
	case errors.Is(err, store.ErrInvalidBookmark):
		writeError(w, http.StatusBadRequest, "Name and path are required", "")
	case errors.Is(err, search.ErrEmptyTerm):
		writeError(w, http.StatusBadRequest, "Search term is required", "")
	default:
		logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error",
			"An unexpected error occurred: "+err.Error())
	}
}

// statusForCode returns the HTTP status and error title for a listing error.
func statusForCode(code listing.ErrorCode) (int, string) {
	switch code {
	case listing.ErrInvalidPageParams:
		return http.StatusBadRequest, "Invalid page parameters"
	case listing.ErrNotAbsolutePath:
		return http.StatusBadRequest, "Directory path must be absolute"
	case listing.ErrNotFound:
		return http.StatusNotFound, "Directory not found"
	case listing.ErrNotADirectory:
		return http.StatusBadRequest, "Path is not a directory"
	case listing.ErrPermissionDenied:
		return http.StatusForbidden, "Permission denied"
	case listing.ErrAlreadyInProgress:
		return http.StatusConflict, "Directory is already being read"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
