package domain

import "time"

// CustodyEventType names a published custody event.
type CustodyEventType string

const (
	EventCustodyEnabled  CustodyEventType = "custody_enabled"
	EventAssetRegistered CustodyEventType = "asset_registered"
	EventLoanRequested   CustodyEventType = "loan_requested"
	EventLoanApproved    CustodyEventType = "loan_approved"
	EventLoanCancelled   CustodyEventType = "loan_cancelled"
	EventAssetReturned   CustodyEventType = "asset_returned"
	EventOfferPlaced     CustodyEventType = "offer_placed"
	EventOfferAccepted   CustodyEventType = "offer_accepted"
	EventOfferRejected   CustodyEventType = "offer_rejected"
)

// CustodyEvent is emitted after a ledger operation is confirmed.
type CustodyEvent struct {
	Type       CustodyEventType  `json:"type"`
	MerchantID string            `json:"merchant_id"`
	TxHash     string            `json:"tx_hash,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
