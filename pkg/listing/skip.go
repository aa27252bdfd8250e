package listing

import (
	"path/filepath"
	"strings"
)

// SkipMode decides what the streaming lister does when it meets a name that
// matches the skip policy.
type SkipMode string

const (
	// SkipAbort ends the whole scan at the first matching name and returns
	// what was collected so far. This is the default.
	SkipAbort SkipMode = "abort"

	// SkipContinue counts the matching name but does not resolve it, and the
	// scan goes on.
	SkipContinue SkipMode = "continue"
)

var systemFiles = map[string]struct{}{
	"Thumbs.db":   {},
	".DS_Store":   {},
	"desktop.ini": {},
}

var systemExtensions = map[string]struct{}{
	".sys": {},
	".dll": {},
	".exe": {},
	".ini": {},
}

// ShouldSkip reports whether name is a dotfile, a known desktop metadata
// file, or carries a system-style extension.
func ShouldSkip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := systemFiles[name]; ok {
		return true
	}
	_, ok := systemExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
