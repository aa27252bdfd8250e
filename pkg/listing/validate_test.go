package listing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		path string
		code ErrorCode
		ok   bool
	}{
		{name: "directory", path: dir, ok: true},
		{name: "empty", path: "", code: ErrNotAbsolutePath},
		{name: "relative", path: "some/dir", code: ErrNotAbsolutePath},
		{name: "missing", path: filepath.Join(dir, "nope"), code: ErrNotFound},
		{name: "regular file", path: file, code: ErrNotADirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestValidatePath_MissingMessage(t *testing.T) {
	err := ValidatePath(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory does not exist")
}

func TestValidatePageParams(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		max      int
		ok       bool
	}{
		{"first page", 1, 1000, 5000, true},
		{"max page size", 3, 5000, 5000, true},
		{"page zero", 0, 10, 5000, false},
		{"negative page", -1, 10, 5000, false},
		{"page size zero", 1, 0, 5000, false},
		{"page size above max", 1, 5001, 5000, false},
		{"custom max", 1, 200, 100, false},
		{"default max when unset", 1, 5000, 0, true},
		{"default max exceeded", 1, 5001, 0, false},
		{"max above ceiling", 1, 5001, 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePageParams(tt.page, tt.pageSize, tt.max)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsCode(err, ErrInvalidPageParams), "got %v", err)
			}
		})
	}
}
