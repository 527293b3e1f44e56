// Package memory holds process-local implementations of the storage ports,
// used for the memory vault backend, local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"
)

// WalletRepo implements ports.WalletRepository in memory.
type WalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]domain.Wallet
}

// NewWalletRepo creates an empty WalletRepo.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{wallets: make(map[string]domain.Wallet)}
}

func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.MerchantID]; ok {
		return apperror.ErrWalletExists()
	}
	r.wallets[w.MerchantID] = cloneWallet(*w)
	return nil
}

func (r *WalletRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[merchantID]
	if !ok {
		return nil, nil
	}
	out := cloneWallet(w)
	return &out, nil
}

// List returns wallets ordered by creation time, then merchant ID.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	r.mu.RLock()
	out := make([]domain.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		out = append(out, cloneWallet(w))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MerchantID < out[j].MerchantID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *WalletRepo) UpdateKeyBlob(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.wallets[w.MerchantID]
	if !ok {
		return apperror.ErrWalletNotFound()
	}
	existing.EncryptedKey = append([]byte(nil), w.EncryptedKey...)
	existing.IV = append([]byte(nil), w.IV...)
	existing.AuthTag = append([]byte(nil), w.AuthTag...)
	r.wallets[w.MerchantID] = existing
	return nil
}

// cloneWallet copies byte slices so callers cannot mutate stored blobs.
func cloneWallet(w domain.Wallet) domain.Wallet {
	w.EncryptedKey = append([]byte(nil), w.EncryptedKey...)
	w.IV = append([]byte(nil), w.IV...)
	w.AuthTag = append([]byte(nil), w.AuthTag...)
	return w
}
