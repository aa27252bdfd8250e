// Package listing implements adaptive, paginated directory enumeration.
//
// A Service answers GetListing requests for absolute directory paths. Small
// directories are resolved in full with a batched concurrent stat fan-out
// (BulkLister); directories above the streaming threshold are scanned as a
// pull-based name stream that only resolves entries inside the requested
// page window (StreamLister). Results are cached per (path, page, pageSize)
// and a streaming traversal of a given path is never run twice concurrently.
package listing

import (
	"time"
)

// FileType is the coarse kind reported for an entry.
type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
)

// DirectoryExtension is the Extension reported for directories. Real
// extensions always carry a leading dot, so it cannot collide with one.
const DirectoryExtension = "directory"

// Attribute is one kind predicate that holds for an entry.
type Attribute string

const (
	AttrFile            Attribute = "file"
	AttrDirectory       Attribute = "directory"
	AttrSymlink         Attribute = "symlink"
	AttrBlockDevice     Attribute = "block-device"
	AttrCharacterDevice Attribute = "character-device"
	AttrFIFO            Attribute = "fifo"
	AttrSocket          Attribute = "socket"
)

// Entry is an immutable snapshot of one directory member.
type Entry struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Size        int64       `json:"size"`
	Extension   string      `json:"extension"`
	Type        FileType    `json:"type"`
	Created     time.Time   `json:"created"`
	Permissions string      `json:"permissions"`
	Attributes  []Attribute `json:"attributes"`
}

// Strategy identifies which lister produced a Listing.
type Strategy string

const (
	StrategyBulk      Strategy = "bulk"
	StrategyStreaming Strategy = "streaming"
)

// PartialReason explains why a streaming scan stopped before the end of the
// directory.
type PartialReason string

const (
	PartialTimeout  PartialReason = "timeout"
	PartialOverscan PartialReason = "overscan"
	PartialSkip     PartialReason = "skip"
)

// Listing is the result of a directory read.
//
// Bulk listings are unpaginated: Page, PageSize and TotalPages stay zero and
// are omitted from the JSON form. A Listing is never mutated once returned;
// the cache hands the same pointer to every reader.
type Listing struct {
	Path       string   `json:"path"`
	Items      []*Entry `json:"items"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
	TotalPages int      `json:"totalPages,omitempty"`

	// Partial is set when the scan was cut short (timeout, over-scan, skip
	// policy). TotalCount then only counts the names actually scanned.
	Partial       bool          `json:"partial,omitempty"`
	PartialReason PartialReason `json:"partialReason,omitempty"`

	Strategy Strategy `json:"-"`
}

// totalPages returns ceil(count / pageSize).
func totalPages(count, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
