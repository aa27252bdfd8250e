package listing

import (
	"context"
	"io"
	"os"
	"sync"
)

// streamChunk is how many names are pulled from the kernel per
// Readdirnames call. The stream still hands names out one at a time.
const streamChunk = 256

// nameReader is the part of *os.File an entryStream reads from.
type nameReader interface {
	Readdirnames(n int) ([]string, error)
	Close() error
}

// entryStream is a pull-based iterator over the names in one directory.
//
// Nothing is read ahead beyond the current chunk: a consumer that stops
// calling Next stops the scan. Close releases the descriptor and is safe to
// call more than once and from more than one goroutine.
type entryStream struct {
	path string
	dir  nameReader

	buf []string
	pos int
	err error

	closeOnce sync.Once
	closeErr  error
}

// openEntryStream opens path for sequential name enumeration.
func openEntryStream(path string) (*entryStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, translateError(path, err)
	}
	return newEntryStream(path, f), nil
}

func newEntryStream(path string, dir nameReader) *entryStream {
	return &entryStream{path: path, dir: dir}
}

// Next returns the next name. It returns ok=false at the end of the
// directory or after an error, which Err then reports.
func (s *entryStream) Next() (name string, ok bool) {
	if s.pos < len(s.buf) {
		name = s.buf[s.pos]
		s.pos++
		return name, true
	}
	if s.err != nil {
		return "", false
	}

	names, err := s.dir.Readdirnames(streamChunk)
	if err != nil {
		if err != io.EOF {
			s.err = translateError(s.path, err)
		} else {
			s.err = io.EOF
		}
		if len(names) == 0 {
			return "", false
		}
	}

	s.buf = names
	s.pos = 1
	return names[0], true
}

// Err returns the error that ended the stream, or nil on a clean end.
func (s *entryStream) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Close releases the directory descriptor.
func (s *entryStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.dir.Close()
	})
	return s.closeErr
}

// readNames enumerates every name in path in one call.
func readNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, translateError(path, err)
	}
	defer func() { _ = f.Close() }()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, translateError(path, err)
	}
	return names, nil
}

// ScanNames calls fn with each name in path, in enumeration order, until fn
// returns false, the directory ends, or ctx is cancelled. Names are read
// incrementally, so stopping early never reads the rest of the directory.
//
// Errors are *ListingError values.
func ScanNames(ctx context.Context, path string, fn func(name string) bool) error {
	stream, err := openEntryStream(path)
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close() }()

	for {
		if err := ctx.Err(); err != nil {
			return &ListingError{Code: ErrIOError, Message: "listing cancelled", Path: path, Err: err}
		}
		name, ok := stream.Next()
		if !ok {
			return stream.Err()
		}
		if !fn(name) {
			return nil
		}
	}
}
