package memory

import (
	"context"
	"sync"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
)

// MerchantDirectory implements ports.MerchantDirectory in memory.
type MerchantDirectory struct {
	mu        sync.RWMutex
	merchants map[string]domain.Merchant
}

// NewMerchantDirectory seeds a directory with the given merchants.
func NewMerchantDirectory(merchants ...domain.Merchant) *MerchantDirectory {
	d := &MerchantDirectory{merchants: make(map[string]domain.Merchant)}
	for _, m := range merchants {
		d.merchants[m.ID] = m
	}
	return d
}

func (d *MerchantDirectory) Get(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.merchants[merchantID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (d *MerchantDirectory) SetWallet(ctx context.Context, merchantID string, address common.Address, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.merchants[merchantID]
	if !ok {
		return apperror.ErrMerchantNotFound()
	}
	m.WalletAddress = address.Hex()
	m.WalletEnabled = enabled
	m.UpdatedAt = time.Now().UTC()
	d.merchants[merchantID] = m
	return nil
}
