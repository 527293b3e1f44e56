package dto

import (
	"encoding/json"
	"math/big"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
)

// Amounts, ids and durations that can exceed 2^53 travel as decimal strings.

// WalletResponse is the public view of a custodial wallet.
type WalletResponse struct {
	MerchantID string `json:"merchant_id"`
	Address    string `json:"address"`
	CreatedAt  string `json:"created_at"`
}

// BalanceResponse is the native balance of a wallet.
type BalanceResponse struct {
	Address string `json:"address"`
	Wei     string `json:"wei"`
}

// RegisterAssetRequest is the request body for diamond registration.
type RegisterAssetRequest struct {
	CertificateID string `json:"certificate_id" binding:"required,max=64,safe_id"`
	MetadataHash  string `json:"metadata_hash" binding:"required,bytes32_hex"`
}

// AssetCreatedResponse carries the minted token id.
type AssetCreatedResponse struct {
	TokenID string `json:"token_id"`
	TxHash  string `json:"tx_hash"`
}

// AssetResponse is a read of a registered diamond.
type AssetResponse struct {
	TokenID       string `json:"token_id"`
	CertificateID string `json:"certificate_id"`
	Owner         string `json:"owner"`
	MetadataHash  string `json:"metadata_hash"`
	OnLoan        bool   `json:"on_loan"`
}

// LoanRequest is the lender's request body for a new loan.
type LoanRequest struct {
	AssetID  string `json:"asset_id" binding:"required,uint256"`
	Borrower string `json:"borrower" binding:"required,eth_addr"`
	Duration uint64 `json:"duration" binding:"required,gt=0"`
	Price    string `json:"price" binding:"required,uint256"`
}

// ApprovalResponse is an issued approval token in every transport form.
type ApprovalResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	IssuedAt  string          `json:"issued_at"`
	ExpiresAt string          `json:"expires_at"`
	Hash      string          `json:"hash"`
	Encoded   string          `json:"encoded"`
	QRCode    string          `json:"qr_code"` // base64 PNG
}

// LoanCreatedResponse is returned to the lender, who shows the QR to the borrower.
type LoanCreatedResponse struct {
	LoanID   string           `json:"loan_id"`
	TxHash   string           `json:"tx_hash"`
	Approval ApprovalResponse `json:"approval"`
}

// ApproveLoanRequest is the borrower's presentation of a scanned token.
type ApproveLoanRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
	Hash  string `json:"hash" binding:"required,max=66"`
}

// LoanResponse is a read of an on-chain loan.
type LoanResponse struct {
	LoanID       string `json:"loan_id"`
	AssetID      string `json:"asset_id"`
	Lender       string `json:"lender"`
	Borrower     string `json:"borrower"`
	Duration     uint64 `json:"duration"`
	StartTime    uint64 `json:"start_time"`
	Status       string `json:"status"`
	ApprovalHash string `json:"approval_hash"`
}

// PlaceOfferRequest is the buyer's request body for an offer.
type PlaceOfferRequest struct {
	LoanID string `json:"loan_id" binding:"required,uint256"`
	Price  string `json:"price" binding:"required,uint256"`
}

// OfferCreatedResponse carries the new offer id.
type OfferCreatedResponse struct {
	OfferID string `json:"offer_id"`
	TxHash  string `json:"tx_hash"`
}

// OfferResponse is a read of an on-chain offer.
type OfferResponse struct {
	OfferID   string `json:"offer_id"`
	LoanID    string `json:"loan_id"`
	Buyer     string `json:"buyer"`
	Price     string `json:"price"`
	ExpiresAt uint64 `json:"expires_at"`
	Status    string `json:"status"`
}

// TxResponse identifies a confirmed transaction.
type TxResponse struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// IssueApprovalRequest asks for a token over an arbitrary payload.
type IssueApprovalRequest struct {
	Type    string          `json:"type" binding:"required,oneof=LOAN_REQUEST RETURN_REQUEST OFFER_ACCEPT"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// VerifyApprovalRequest checks a presented token against its hash.
type VerifyApprovalRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
	Hash  string `json:"hash" binding:"required,max=66"`
}

// VerifyApprovalResponse is the outcome of a verification.
type VerifyApprovalResponse struct {
	Valid   bool            `json:"valid"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

func NewWalletResponse(w *domain.WalletInfo) WalletResponse {
	return WalletResponse{
		MerchantID: w.MerchantID,
		Address:    w.Address.Hex(),
		CreatedAt:  w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBalanceResponse(b *ports.Balance) BalanceResponse {
	return BalanceResponse{Address: b.Address.Hex(), Wei: bigString(b.Wei)}
}

func NewAssetResponse(a *domain.Asset) AssetResponse {
	return AssetResponse{
		TokenID:       bigString(a.TokenID),
		CertificateID: a.CertificateID,
		Owner:         a.Owner.Hex(),
		MetadataHash:  a.MetadataHash.Hex(),
		OnLoan:        a.OnLoan,
	}
}

func NewApprovalResponse(a *ports.ApprovalResult) ApprovalResponse {
	return ApprovalResponse{
		ID:        a.Token.ID,
		Type:      string(a.Token.Type),
		Payload:   a.Token.Payload,
		IssuedAt:  a.Token.IssuedAt.UTC().Format(time.RFC3339Nano),
		ExpiresAt: a.Token.ExpiresAt.UTC().Format(time.RFC3339Nano),
		Hash:      a.Token.Hash,
		Encoded:   a.Encoded,
		QRCode:    a.QRCode,
	}
}

func NewLoanCreatedResponse(r *ports.LoanRequestResult) LoanCreatedResponse {
	return LoanCreatedResponse{
		LoanID:   bigString(r.LoanID),
		TxHash:   r.TxHash.Hex(),
		Approval: NewApprovalResponse(r.Approval),
	}
}

func NewLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:       bigString(l.ID),
		AssetID:      bigString(l.AssetID),
		Lender:       l.Lender.Hex(),
		Borrower:     l.Borrower.Hex(),
		Duration:     l.Duration,
		StartTime:    l.StartTime,
		Status:       string(l.Status),
		ApprovalHash: l.ApprovalHash.Hex(),
	}
}

func NewOfferResponse(o *domain.Offer) OfferResponse {
	return OfferResponse{
		OfferID:   bigString(o.ID),
		LoanID:    bigString(o.LoanID),
		Buyer:     o.Buyer.Hex(),
		Price:     bigString(o.Price),
		ExpiresAt: o.ExpiresAt,
		Status:    string(o.Status),
	}
}

func NewTxResponse(r *ports.TxResult) TxResponse {
	return TxResponse{TxHash: r.TxHash.Hex(), BlockNumber: r.BlockNumber}
}

func NewVerifyApprovalResponse(v *domain.Verification) VerifyApprovalResponse {
	return VerifyApprovalResponse{Valid: v.Valid, Payload: v.Payload, Reason: string(v.Reason)}
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
