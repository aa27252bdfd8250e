package listing

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingError_Error(t *testing.T) {
	err := &ListingError{Code: ErrNotFound, Message: "directory not found", Path: "/missing", Err: fs.ErrNotExist}
	assert.Equal(t, "directory not found: /missing: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bare := newError(ErrInvalidPageParams, "", "page must be greater than 0 (got %d)", 0)
	assert.Equal(t, "page must be greater than 0 (got 0)", bare.Error())
}

func TestErrorCode_String(t *testing.T) {
	codes := map[ErrorCode]string{
		ErrInvalidPageParams: "InvalidPageParams",
		ErrNotAbsolutePath:   "NotAbsolutePath",
		ErrNotFound:          "NotFound",
		ErrNotADirectory:     "NotADirectory",
		ErrPermissionDenied:  "PermissionDenied",
		ErrAlreadyInProgress: "AlreadyInProgress",
		ErrIOError:           "IOError",
		ErrorCode(99):        "Unknown",
	}
	for code, want := range codes {
		assert.Equal(t, want, code.String())
	}
}

func TestIsCode(t *testing.T) {
	err := newError(ErrNotADirectory, "/etc/hosts", "path is not a directory")

	assert.True(t, IsCode(err, ErrNotADirectory))
	assert.False(t, IsCode(err, ErrNotFound))
	assert.True(t, IsCode(fmt.Errorf("wrapped: %w", err), ErrNotADirectory))
	assert.False(t, IsCode(errors.New("plain"), ErrNotADirectory))
	assert.False(t, IsCode(nil, ErrNotADirectory))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(newError(ErrAlreadyInProgress, "/big", "directory is already being read")))
	for _, code := range []ErrorCode{ErrInvalidPageParams, ErrNotAbsolutePath, ErrNotFound, ErrNotADirectory, ErrPermissionDenied, ErrIOError} {
		assert.False(t, IsRetryable(newError(code, "/x", "failure")), code.String())
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, ErrNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, ErrPermissionDenied},
		{"not a directory", &fs.PathError{Op: "readdirent", Path: "/x", Err: syscall.ENOTDIR}, ErrNotADirectory},
		{"other", &fs.PathError{Op: "readdirent", Path: "/x", Err: syscall.EIO}, ErrIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError("/x", tt.err)
			require.Error(t, err)
			assert.True(t, IsCode(err, tt.want), "got %v", err)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, translateError("/x", nil))

	original := newError(ErrAlreadyInProgress, "/x", "busy")
	assert.Same(t, original, translateError("/x", original))
}
