package memory

import (
	"context"
	"sync"
	"time"
)

// ConsumedTokenStore implements ports.ConsumedTokenStore in memory.
type ConsumedTokenStore struct {
	mu       sync.Mutex
	consumed map[string]time.Time // token id -> marker expiry
	now      func() time.Time
}

// NewConsumedTokenStore creates an empty store.
func NewConsumedTokenStore() *ConsumedTokenStore {
	return &ConsumedTokenStore{consumed: make(map[string]time.Time), now: time.Now}
}

func (s *ConsumedTokenStore) MarkConsumed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.consumed[tokenID]; ok && now.Before(exp) {
		return false, nil
	}
	s.consumed[tokenID] = now.Add(ttl)

	// Opportunistic sweep of expired markers.
	for id, exp := range s.consumed {
		if !now.Before(exp) {
			delete(s.consumed, id)
		}
	}
	return true, nil
}

func (s *ConsumedTokenStore) Release(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.consumed, tokenID)
	return nil
}
