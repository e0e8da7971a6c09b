package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps revocations in process; fine for a single instance.
type MemoryStore struct {
	backend *gocache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &MemoryStore{backend: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.backend.Set(keyPrefix+sessionID, struct{}{}, ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	_, found := s.backend.Get(keyPrefix + sessionID)
	return found, nil
}
