package listing

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ListingError represents a domain error from a listing operation.
//
// These are the failures callers are expected to handle (bad parameters,
// missing directory, conflicting traversal). Per-entry metadata failures are
// never surfaced as ListingError: they are logged and the entry is dropped.
//
// The HTTP layer translates ListingError codes into status codes.
type ListingError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the directory the error relates to (if applicable)
	Path string

	// Err is the underlying filesystem error, if any
	Err error
}

// Error implements the error interface.
func (e *ListingError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = msg + ": " + e.Path
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying filesystem error.
func (e *ListingError) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a listing error.
type ErrorCode int

const (
	// ErrInvalidPageParams indicates page < 1 or pageSize outside [1, max]
	ErrInvalidPageParams ErrorCode = iota

	// ErrNotAbsolutePath indicates an empty or relative directory path
	ErrNotAbsolutePath

	// ErrNotFound indicates the directory does not exist
	ErrNotFound

	// ErrNotADirectory indicates the path exists but is not a directory
	ErrNotADirectory

	// ErrPermissionDenied indicates the process may not read the directory
	ErrPermissionDenied

	// ErrAlreadyInProgress indicates a streaming traversal of the same path
	// is running. Callers should retry later.
	ErrAlreadyInProgress

	// ErrIOError indicates an underlying read or stat failure
	ErrIOError
)

// String returns the stable name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidPageParams:
		return "InvalidPageParams"
	case ErrNotAbsolutePath:
		return "NotAbsolutePath"
	case ErrNotFound:
		return "NotFound"
	case ErrNotADirectory:
		return "NotADirectory"
	case ErrPermissionDenied:
		return "PermissionDenied"
	case ErrAlreadyInProgress:
		return "AlreadyInProgress"
	case ErrIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

func newError(code ErrorCode, path, format string, args ...any) *ListingError {
	return &ListingError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// IsCode reports whether err is a ListingError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var le *ListingError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// IsRetryable reports whether the caller may retry the same request later.
//
// Only AlreadyInProgress is retryable; every other failure is permanent for
// the given input.
func IsRetryable(err error) bool {
	return IsCode(err, ErrAlreadyInProgress)
}

// translateError normalizes a filesystem error into the listing taxonomy.
//
// Errors detected while reading (rather than during validation) map onto the
// same codes validation uses, so callers handle one set of kinds no matter
// when the failure was observed. Errors that are already ListingErrors pass
// through unchanged.
func translateError(path string, err error) error {
	if err == nil {
		return nil
	}

	var le *ListingError
	if errors.As(err, &le) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &ListingError{Code: ErrNotFound, Message: "directory not found", Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &ListingError{Code: ErrPermissionDenied, Message: "permission denied", Path: path, Err: err}
	case errors.Is(err, syscall.ENOTDIR):
		return &ListingError{Code: ErrNotADirectory, Message: "path is not a directory", Path: path, Err: err}
	default:
		return &ListingError{Code: ErrIOError, Message: "failed to read directory", Path: path, Err: err}
	}
}
