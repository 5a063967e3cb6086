// Path: internal/storage/memory_storage.go
package storage

import (
	"context"
	"slices"
	"sync"

	"catalog-viewer/internal/domain"
)

// MemorySessionStorage keeps sessions for the life of the process.
// It is used when no database is configured.
type MemorySessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionDocument
}

func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{
		sessions: make(map[string]domain.SessionDocument),
	}
}

// Load implements the SessionStorage interface.
func (s *MemorySessionStorage) Load(ctx context.Context, id string) (*domain.SessionDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	doc.Favorites = slices.Clone(doc.Favorites)
	return &doc, nil
}

// Save implements the SessionStorage interface.
func (s *MemorySessionStorage) Save(ctx context.Context, doc domain.SessionDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.Favorites = slices.Clone(doc.Favorites)
	s.sessions[doc.ID] = doc
	return nil
}
