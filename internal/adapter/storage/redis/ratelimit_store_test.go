package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRateLimitStore(client)
	now := time.Unix(1_800_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			res, err := store.Allow(ctx, "merchant1:loans", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed, "request %d", i)
			assert.Equal(t, int64(3), res.Limit)
			assert.Equal(t, 3-i, res.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		res, err := store.Allow(ctx, "merchant1:loans", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, int64(0), res.Remaining)
		assert.Equal(t, (now.Unix()/60+1)*60, res.ResetAt)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		res, err := store.Allow(ctx, "merchant2:loans", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(4), res.Remaining)
	})

	t.Run("next window starts fresh", func(t *testing.T) {
		now = now.Add(time.Minute)
		res, err := store.Allow(ctx, "merchant1:loans", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(2), res.Remaining)
	})
}

func TestRateLimitStore_CountersExpire(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)
	store.now = func() time.Time { return time.Unix(1_800_000_000, 0) }

	_, err := store.Allow(context.Background(), "m:approvals", 10, time.Minute)
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, mr.TTL(keys[0]), time.Minute)
}

func TestRateLimitStore_Unavailable(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)
	mr.Close()

	_, err := store.Allow(context.Background(), "m:loans", 1, time.Minute)
	assert.Error(t, err)
}
