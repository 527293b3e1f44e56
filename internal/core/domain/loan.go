package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LoanStatus is the stable status vocabulary for on-chain loans.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusSold      LoanStatus = "SOLD"
	LoanStatusReturned  LoanStatus = "RETURNED"
	LoanStatusCancelled LoanStatus = "CANCELLED"
	LoanStatusUnknown   LoanStatus = "UNKNOWN"
)

// Order matches the marketplace contract's enum.
var loanStatusByIndex = []LoanStatus{
	LoanStatusPending,
	LoanStatusActive,
	LoanStatusSold,
	LoanStatusReturned,
	LoanStatusCancelled,
}

// LoanStatusFromIndex maps an on-chain enum index. Unrecognized indexes map to UNKNOWN.
func LoanStatusFromIndex(i uint8) LoanStatus {
	if int(i) >= len(loanStatusByIndex) {
		return LoanStatusUnknown
	}
	return loanStatusByIndex[i]
}

// LoanAction is a transition trigger on a loan.
type LoanAction string

const (
	LoanActionApprove LoanAction = "approve"
	LoanActionCancel  LoanAction = "cancel"
	LoanActionReturn  LoanAction = "return"
	LoanActionSell    LoanAction = "sell"
)

var loanTransitions = map[LoanStatus]map[LoanAction]LoanStatus{
	LoanStatusPending: {
		LoanActionApprove: LoanStatusActive,
		LoanActionCancel:  LoanStatusCancelled,
	},
	LoanStatusActive: {
		LoanActionReturn: LoanStatusReturned,
		LoanActionSell:   LoanStatusSold,
	},
}

// Next returns the state reached by applying action, or false if the
// transition is not allowed from s.
func (s LoanStatus) Next(action LoanAction) (LoanStatus, bool) {
	next, ok := loanTransitions[s][action]
	return next, ok
}

// Loan is a read of the on-chain loan record. The ledger owns it.
type Loan struct {
	ID           *big.Int
	AssetID      *big.Int
	Lender       common.Address
	Borrower     common.Address
	Duration     uint64
	StartTime    uint64
	Status       LoanStatus
	ApprovalHash common.Hash
}

// OfferStatus is the stable status vocabulary for on-chain offers.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
	OfferStatusExpired  OfferStatus = "EXPIRED"
	OfferStatusUnknown  OfferStatus = "UNKNOWN"
)

var offerStatusByIndex = []OfferStatus{
	OfferStatusPending,
	OfferStatusAccepted,
	OfferStatusRejected,
	OfferStatusExpired,
}

// OfferStatusFromIndex maps an on-chain enum index. Unrecognized indexes map to UNKNOWN.
func OfferStatusFromIndex(i uint8) OfferStatus {
	if int(i) >= len(offerStatusByIndex) {
		return OfferStatusUnknown
	}
	return offerStatusByIndex[i]
}

// Offer is a read of the on-chain offer record.
type Offer struct {
	ID        *big.Int
	LoanID    *big.Int
	Buyer     common.Address
	Price     *big.Int
	ExpiresAt uint64
	Status    OfferStatus
}

// Asset is a registered diamond token.
type Asset struct {
	TokenID       *big.Int
	CertificateID string
	Owner         common.Address
	MetadataHash  common.Hash
	OnLoan        bool
}
