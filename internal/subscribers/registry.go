package subscribers

import "sync"

// Registry is the process-wide set of subscriber endpoint URLs. It is
// mutated only by registration and read on every fan-out; not persisted,
// lost on restart. There is no removal path.
type Registry struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{urls: map[string]struct{}{}}
}

// Add inserts url, failing with ErrAlreadyRegistered on duplicates without
// mutating the set.
func (r *Registry) Add(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.urls[url]; exists {
		return ErrAlreadyRegistered
	}
	r.urls[url] = struct{}{}
	return nil
}

// Contains reports whether url is registered.
func (r *Registry) Contains(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.urls[url]
	return ok
}

// List returns a snapshot of the registered URLs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]string, 0, len(r.urls))
	for url := range r.urls {
		items = append(items, url)
	}
	return items
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}
