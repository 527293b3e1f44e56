package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Wallet is a merchant's custodial signing identity as stored at rest.
// The key blob is AES-256-GCM output split into its three parts.
type Wallet struct {
	MerchantID   string         `json:"merchant_id"`
	Address      common.Address `json:"address"`
	EncryptedKey []byte         `json:"-"` // Ciphertext, never expose
	IV           []byte         `json:"-"`
	AuthTag      []byte         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Info strips the key blob.
func (w *Wallet) Info() WalletInfo {
	return WalletInfo{
		MerchantID: w.MerchantID,
		Address:    w.Address,
		CreatedAt:  w.CreatedAt,
	}
}

// WalletInfo is the public view of a wallet.
type WalletInfo struct {
	MerchantID string         `json:"merchant_id"`
	Address    common.Address `json:"address"`
	CreatedAt  time.Time      `json:"created_at"`
}
