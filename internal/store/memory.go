package store

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory PreferenceStore. It keeps the
// encoded document so callers never share state with it.
type MemoryStore struct {
	mu sync.RWMutex

	// key: document key, value: JSON document
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Load returns the saved preferences or ErrNotFound.
func (s *MemoryStore) Load(_ context.Context) (Preferences, error) {
	s.mu.RLock()
	doc, ok := s.data[PreferencesKey]
	s.mu.RUnlock()

	if !ok {
		return Preferences{}, ErrNotFound
	}
	return decode(doc)
}

// Save replaces the stored preferences.
func (s *MemoryStore) Save(_ context.Context, p Preferences) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[PreferencesKey] = doc
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
