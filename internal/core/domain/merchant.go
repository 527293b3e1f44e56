package domain

import (
	"time"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive      MerchantStatus = "ACTIVE"
	MerchantStatusSuspended   MerchantStatus = "SUSPENDED"
	MerchantStatusDeactivated MerchantStatus = "DEACTIVATED"
)

// Merchant is the document-store record this subsystem reads and writes back to.
type Merchant struct {
	ID            string         `json:"id" bson:"_id"`
	Name          string         `json:"name" bson:"name"`
	Status        MerchantStatus `json:"status" bson:"status"`
	WalletAddress string         `json:"wallet_address,omitempty" bson:"walletAddress,omitempty"`
	WalletEnabled bool           `json:"wallet_enabled" bson:"walletEnabled"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updatedAt"`
}

// IsActive returns true if the merchant account is active.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}
