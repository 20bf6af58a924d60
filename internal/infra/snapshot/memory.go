package snapshot

import (
	"context"
	"sync"
	"time"

	"hactl/internal/domain"
)

type MemoryStore struct {
	mu        sync.RWMutex
	entities  []domain.Entity
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entities == nil || s.now().After(s.expiresAt) {
		return nil, false, nil
	}
	out := make([]domain.Entity, len(s.entities))
	copy(out, s.entities)
	return out, true, nil
}

func (s *MemoryStore) Save(_ context.Context, entities []domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make([]domain.Entity, len(entities))
	copy(s.entities, entities)
	s.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = nil
	return nil
}
