package index

import (
	"sync"

	"github.com/verse-companion-api/internal/models"
)

// Store is the in-memory verse-id to embedding-entry mapping shared by
// request handlers. Readers take the read lock and copy what they need;
// ReplaceAll swaps a freshly built mapping in one critical section so a
// concurrent reader never observes a partially updated index.
type Store struct {
	mu      sync.RWMutex
	entries map[string]models.EmbeddingEntry
	version models.IndexVersion
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]models.EmbeddingEntry),
	}
}

// Len returns the number of indexed entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the entry for a verse id
func (s *Store) Get(verseID string) (models.EmbeddingEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[verseID]
	return e, ok
}

// Entries returns a snapshot slice of all entries. The slice is safe for
// the caller to iterate while writers mutate the store.
func (s *Store) Entries() []models.EmbeddingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmbeddingEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// SetWithVersion inserts or replaces a single entry and updates the
// version descriptor in the same critical section, so a concurrent reader
// never observes the new entry alongside the old stamp.
func (s *Store) SetWithVersion(entry models.EmbeddingEntry, version models.IndexVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.VerseID] = entry
	s.version = version
}

// ReplaceAll swaps in a new mapping and version descriptor atomically
func (s *Store) ReplaceAll(entries map[string]models.EmbeddingEntry, version models.IndexVersion) {
	if entries == nil {
		entries = make(map[string]models.EmbeddingEntry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.version = version
}

// Snapshot returns a copy of the entry map, for persistence
func (s *Store) Snapshot() map[string]models.EmbeddingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.EmbeddingEntry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Version returns the descriptor of the currently loaded index
func (s *Store) Version() models.IndexVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Stats returns the version descriptor and entry count from a single read
// of the store, so the pair is always mutually consistent.
func (s *Store) Stats() (models.IndexVersion, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, len(s.entries)
}
