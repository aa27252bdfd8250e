// Package search finds entries of one directory whose names contain a term.
package search

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/pkg/errors"
)

const (
	// DefaultLimit is the result bound of a regular search.
	DefaultLimit = 100

	// DefaultQuickLimit is the result bound of a quick (type-ahead) search.
	DefaultQuickLimit = 50

	// MaxLimit is the largest accepted limit.
	MaxLimit = 1000
)

// ErrEmptyTerm is returned when the search term is empty.
var ErrEmptyTerm = errors.New("search term is required")

// Result is the outcome of one search.
type Result struct {
	Term       string           `json:"term"`
	Directory  string           `json:"directory"`
	Results    []*listing.Entry `json:"results"`
	TotalCount int              `json:"totalCount"`
	HasMore    bool             `json:"hasMore"`
}

// Searcher matches names in a single directory level.
//
// Matching is a case-insensitive substring test on the entry name. Only
// matching entries are resolved, and the scan stops as soon as limit
// matches have been collected, so a search in a huge directory costs what it
// returns rather than the directory size.
type Searcher struct {
	resolver listing.Resolver
}

// New creates a Searcher that resolves matches with resolver.
func New(resolver listing.Resolver) *Searcher {
	return &Searcher{resolver: resolver}
}

// Search returns up to limit entries of dir whose name contains term.
//
// A limit outside [1, MaxLimit] is clamped. HasMore is true when the limit
// was reached, in which case more matches may exist. Entries whose metadata
// cannot be read are logged and skipped.
func (s *Searcher) Search(ctx context.Context, dir, term string, limit int) (*Result, error) {
	if term == "" {
		return nil, ErrEmptyTerm
	}
	if err := listing.ValidatePath(dir); err != nil {
		return nil, err
	}
	limit = min(max(limit, 1), MaxLimit)

	needle := strings.ToLower(term)
	results := make([]*listing.Entry, 0, min(limit, 64))

	err := listing.ScanNames(ctx, dir, func(name string) bool {
		if !strings.Contains(strings.ToLower(name), needle) {
			return true
		}

		fullPath := filepath.Join(dir, name)
		entry, err := s.resolver.Resolve(ctx, fullPath, name)
		if err != nil {
			logger.Warn("Error processing file %s: %v", name, err)
			return true
		}

		results = append(results, entry)
		return len(results) < limit
	})
	if err != nil {
		return nil, errors.Wrapf(err, "search failed in %s", dir)
	}

	logger.Debug("Search for %q in %s: %d result(s)", term, dir, len(results))

	return &Result{
		Term:       term,
		Directory:  dir,
		Results:    results,
		TotalCount: len(results),
		HasMore:    len(results) == limit,
	}, nil
}
