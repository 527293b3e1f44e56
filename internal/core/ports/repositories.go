package ports

import (
	"context"
	"time"

	"diamond-custody-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// WalletRepository is the keyed store behind the Key Vault.
// GetByMerchantID returns (nil, nil) when no wallet exists.
type WalletRepository interface {
	// Create fails with apperror WAL_002 if the merchant already has a wallet.
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByMerchantID(ctx context.Context, merchantID string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	// UpdateKeyBlob re-wraps the encrypted key. Address and creation time are immutable.
	UpdateKeyBlob(ctx context.Context, wallet *domain.Wallet) error
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// MerchantDirectory is the document-store boundary for merchant records.
// Get returns (nil, nil) when the merchant is unknown.
type MerchantDirectory interface {
	Get(ctx context.Context, merchantID string) (*domain.Merchant, error)
	SetWallet(ctx context.Context, merchantID string, address common.Address, enabled bool) error
}

// ConsumedTokenStore records approval tokens that have been spent.
type ConsumedTokenStore interface {
	// MarkConsumed atomically records tokenID. Returns false if it was already consumed.
	MarkConsumed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	// Release drops the marker. Only valid when the ledger was never touched.
	Release(ctx context.Context, tokenID string) error
}

// NonceTracker keeps a per-address high-water mark of nonces handed out
// for envelopes that may not have reached the node's pending pool yet.
type NonceTracker interface {
	// Reserve returns max(chainNonce, last reserved + 1) and records it.
	Reserve(ctx context.Context, address common.Address, chainNonce uint64) (uint64, error)
	// Rewind forgets a reservation if it is still the latest one.
	Rewind(ctx context.Context, address common.Address, nonce uint64) error
}

// EventPublisher broadcasts confirmed custody events.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.CustodyEvent) error
}
