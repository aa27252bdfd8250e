package listing

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxPageSize is the largest page a caller may request.
const DefaultMaxPageSize = 5000

// ValidatePath confirms that path is absolute, exists, and is a directory.
//
// Checks run in that order and the first violation is returned:
//   - empty or relative path: ErrNotAbsolutePath
//   - stat fails with not-exist: ErrNotFound
//   - stat refused: ErrPermissionDenied
//   - not a directory: ErrNotADirectory
func ValidatePath(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return newError(ErrNotAbsolutePath, path, "directory path must be absolute")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ListingError{Code: ErrNotFound, Message: "directory does not exist", Path: path, Err: err}
		}
		return translateError(path, err)
	}

	if !info.IsDir() {
		return newError(ErrNotADirectory, path, "path is not a directory")
	}

	return nil
}

// ValidatePageParams checks page >= 1 and 1 <= pageSize <= maxPageSize.
//
// A non-positive maxPageSize means DefaultMaxPageSize, which is also the
// ceiling for any larger value.
func ValidatePageParams(page, pageSize, maxPageSize int) error {
	if maxPageSize <= 0 || maxPageSize > DefaultMaxPageSize {
		maxPageSize = DefaultMaxPageSize
	}
	if page < 1 {
		return newError(ErrInvalidPageParams, "", "page must be greater than 0 (got %d)", page)
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return newError(ErrInvalidPageParams, "", "page size must be between 1 and %d (got %d)", maxPageSize, pageSize)
	}
	return nil
}
