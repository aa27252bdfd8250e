package listing

import "sync"

// InFlight tracks which paths currently have a streaming traversal running.
//
// Acquisition never blocks: a second caller for the same path is denied and
// must retry later. Every successful TryAcquire must be paired with exactly
// one Release, typically via defer.
type InFlight struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewInFlight returns an empty marker table.
func NewInFlight() *InFlight {
	return &InFlight{paths: make(map[string]struct{})}
}

// TryAcquire marks path as in flight. It returns false if it already was.
func (f *InFlight) TryAcquire(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.paths[path]; busy {
		return false
	}
	f.paths[path] = struct{}{}
	return true
}

// Release clears the marker for path.
func (f *InFlight) Release(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, path)
}

// Active reports whether path is currently marked.
func (f *InFlight) Active(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.paths[path]
	return busy
}

// Len returns the number of paths currently marked.
func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}
