package listing

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mutagen-io/extstat"
)

// Resolver builds an Entry for one directory member.
//
// Both listers share a Resolver. Implementations must be safe for concurrent
// use: the bulk lister calls Resolve from one goroutine per batch member.
type Resolver interface {
	// Resolve stats fullPath and returns an immutable Entry named name.
	// Failures are returned as ErrIOError ListingErrors.
	Resolve(ctx context.Context, fullPath, name string) (*Entry, error)
}

// FileResolver resolves entries against the local filesystem.
//
// Symbolic links are followed exactly one level: the link itself is detected
// with Lstat and the target's kind, size and mode come from Stat. A dangling
// link is reported with the link's own metadata.
type FileResolver struct{}

// NewFileResolver returns a Resolver backed by os.Lstat and os.Stat.
func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(ctx context.Context, fullPath, name string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ListingError{Code: ErrIOError, Message: "resolution cancelled", Path: fullPath, Err: err}
	}

	linfo, err := os.Lstat(fullPath)
	if err != nil {
		return nil, &ListingError{Code: ErrIOError, Message: "failed to get file stats", Path: fullPath, Err: err}
	}

	info := linfo
	isLink := linfo.Mode()&fs.ModeSymlink != 0
	if isLink {
		if target, err := os.Stat(fullPath); err == nil {
			info = target
		}
	}

	isDir := info.IsDir()

	entry := &Entry{
		Name:        name,
		Path:        fullPath,
		Size:        info.Size(),
		Created:     creationTime(fullPath, info),
		Permissions: FormatPermissions(info.Mode()),
		Attributes:  attributesOf(info.Mode(), isLink),
	}

	if isDir {
		entry.Type = FileTypeDirectory
		entry.Extension = DirectoryExtension
	} else {
		entry.Type = FileTypeFile
		entry.Extension = strings.ToLower(filepath.Ext(name))
	}

	return entry, nil
}

// creationTime returns the birth time when the platform records one, and
// the modification time otherwise.
func creationTime(fullPath string, info fs.FileInfo) time.Time {
	stat, err := extstat.NewFromFileName(fullPath)
	if err != nil || stat.BirthTime.IsZero() {
		return info.ModTime()
	}
	return stat.BirthTime
}

// FormatPermissions renders mode as a 10-character POSIX permission string:
// the kind flag ('d' or '-') followed by owner, group and other rwx triplets.
func FormatPermissions(mode fs.FileMode) string {
	const rwx = "rwxrwxrwx"

	buf := make([]byte, 10)
	if mode.IsDir() {
		buf[0] = 'd'
	} else {
		buf[0] = '-'
	}

	perm := mode.Perm()
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			buf[i+1] = rwx[i]
		} else {
			buf[i+1] = '-'
		}
	}
	return string(buf)
}

// attributesOf derives the attribute set from mode predicates. The order of
// the returned slice is fixed.
func attributesOf(mode fs.FileMode, isLink bool) []Attribute {
	attrs := make([]Attribute, 0, 2)

	if mode.IsDir() {
		attrs = append(attrs, AttrDirectory)
	}
	if mode.IsRegular() {
		attrs = append(attrs, AttrFile)
	}
	if isLink || mode&fs.ModeSymlink != 0 {
		attrs = append(attrs, AttrSymlink)
	}
	if mode&fs.ModeDevice != 0 {
		if mode&fs.ModeCharDevice != 0 {
			attrs = append(attrs, AttrCharacterDevice)
		} else {
			attrs = append(attrs, AttrBlockDevice)
		}
	}
	if mode&fs.ModeNamedPipe != 0 {
		attrs = append(attrs, AttrFIFO)
	}
	if mode&fs.ModeSocket != 0 {
		attrs = append(attrs, AttrSocket)
	}

	return attrs
}
