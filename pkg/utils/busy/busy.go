// Package busy tracks keyed actions that are currently in flight so a second
// trigger of the same action can be rejected instead of issuing a duplicate request.
package busy

import (
	"slices"
	"sync"
)

// Set is a concurrency safe set of in-flight action keys. The zero value is ready to use.
type Set struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func New() *Set {
	return &Set{}
}

// TryAcquire marks key as in flight. It returns false when key is already in flight.
func (s *Set) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Release clears key. Releasing a key that is not held is a no-op.
func (s *Set) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

func (s *Set) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// Keys returns the in-flight keys in sorted order.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
