package domain

import (
	"encoding/json"
	"time"
)

// ApprovalAction tags what an approval token authorizes.
type ApprovalAction string

const (
	ApprovalLoanRequest   ApprovalAction = "LOAN_REQUEST"
	ApprovalReturnRequest ApprovalAction = "RETURN_REQUEST"
	ApprovalOfferAccept   ApprovalAction = "OFFER_ACCEPT"
)

// Valid returns true for known action types.
func (a ApprovalAction) Valid() bool {
	switch a {
	case ApprovalLoanRequest, ApprovalReturnRequest, ApprovalOfferAccept:
		return true
	}
	return false
}

// ApprovalToken is a short-lived, content-bound bearer credential.
// Payload is stored in canonical form; Hash covers id, type, payload and issuedAt.
type ApprovalToken struct {
	ID        string          `json:"id"`
	Type      ApprovalAction  `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	IssuedAt  time.Time       `json:"issuedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Hash      string          `json:"hash"`
}

// VerifyReason explains why a token failed verification.
type VerifyReason string

const (
	VerifyHashMismatch VerifyReason = "HASH_MISMATCH"
	VerifyExpired      VerifyReason = "EXPIRED"
)

// Verification is the outcome of checking a presented token.
type Verification struct {
	Valid   bool            `json:"valid"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Reason  VerifyReason    `json:"reason,omitempty"`
}

// LoanTerms are the commercial terms attested by a loan approval.
type LoanTerms struct {
	Price string `json:"price"` // wei, decimal
}

// LoanRequestPayload is the snapshot a borrower approves.
type LoanRequestPayload struct {
	AssetID  string    `json:"assetId"`
	Lender   string    `json:"lender"`
	Borrower string    `json:"borrower"`
	Duration uint64    `json:"duration"`
	Terms    LoanTerms `json:"terms"`
}
