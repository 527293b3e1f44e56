package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ConsumedTokenStore implements ports.ConsumedTokenStore with SET NX markers.
// Markers outlive the approval token TTL so a spent token stays spent.
type ConsumedTokenStore struct {
	client goredis.Cmdable
	prefix string
}

func NewConsumedTokenStore(client goredis.Cmdable) *ConsumedTokenStore {
	return &ConsumedTokenStore{
		client: client,
		prefix: "approval:consumed:",
	}
}

// MarkConsumed returns true if this call placed the marker.
func (s *ConsumedTokenStore) MarkConsumed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	res, err := s.client.SetArgs(ctx, s.prefix+tokenID, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis mark consumed: %w", err)
	}
	return res == "OK", nil
}

func (s *ConsumedTokenStore) Release(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, s.prefix+tokenID).Err(); err != nil {
		return fmt.Errorf("redis release marker: %w", err)
	}
	return nil
}
