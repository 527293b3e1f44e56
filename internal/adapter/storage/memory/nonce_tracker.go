package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type reservation struct {
	nonce     uint64
	updatedAt time.Time
}

// NonceTracker implements ports.NonceTracker in memory. A reservation older
// than staleAfter is ignored so a dropped envelope cannot wedge the sender.
type NonceTracker struct {
	mu         sync.Mutex
	last       map[common.Address]reservation
	staleAfter time.Duration
	now        func() time.Time
}

// NewNonceTracker creates a tracker whose reservations expire after staleAfter.
func NewNonceTracker(staleAfter time.Duration) *NonceTracker {
	return &NonceTracker{
		last:       make(map[common.Address]reservation),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (t *NonceTracker) Reserve(ctx context.Context, address common.Address, chainNonce uint64) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	next := chainNonce
	if r, ok := t.last[address]; ok && now.Sub(r.updatedAt) < t.staleAfter && r.nonce+1 > next {
		next = r.nonce + 1
	}
	t.last[address] = reservation{nonce: next, updatedAt: now}
	return next, nil
}

func (t *NonceTracker) Rewind(ctx context.Context, address common.Address, nonce uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.last[address]
	if !ok || r.nonce != nonce {
		return nil
	}
	if nonce == 0 {
		delete(t.last, address)
		return nil
	}
	t.last[address] = reservation{nonce: nonce - 1, updatedAt: r.updatedAt}
	return nil
}
