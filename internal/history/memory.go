package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	urls []string
}

// NewMemoryStore creates a MemoryStore seeded with urls.
func NewMemoryStore(urls ...string) *MemoryStore {
	return &MemoryStore{urls: slices.Clone(urls)}
}

// Load returns the recorded urls as a set.
func (s *MemoryStore) Load(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.urls))
	for _, u := range s.urls {
		seen[u] = struct{}{}
	}
	return seen, nil
}

// Append records urls in order.
func (s *MemoryStore) Append(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls = append(s.urls, urls...)
	return nil
}

// URLs returns every record in append order, including any duplicates a
// caller appended.
func (s *MemoryStore) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.urls)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
