package badger

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so keys are prefixed to separate the data
// types stored in one database.
//
// Data Type          Prefix   Key Format          Value Type
// ================================================================
// Bookmarks          "b:"     b:<uuid>            bookmarkRecord (JSON)
// Recent Dirs        "r:"     r:<absolute path>   recentRecord (JSON)
//
// Bookmarks are looked up by ID and listed with a prefix scan; the scan order
// (by UUID) carries no meaning, ordering is applied after the scan.
//
// Recent directories are keyed by path so a revisit overwrites the same
// entry. Their order is carried by a sequence number in the value.

const (
	prefixBookmark = "b:"
	prefixRecent   = "r:"
)

func keyBookmark(id string) []byte {
	return []byte(prefixBookmark + id)
}

func keyRecent(path string) []byte {
	return []byte(prefixRecent + path)
}
