package ports

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"time"

	"diamond-custody-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// KeyVault holds per-merchant signing keys encrypted at rest.
type KeyVault interface {
	CreateWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error)
	GetWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error)
	ImportWallet(ctx context.Context, merchantID string, privateKeyHex string) (*domain.WalletInfo, error)
	ListWallets(ctx context.Context) ([]domain.WalletInfo, error)
	// WithSigningKey decrypts the merchant's key and passes it to fn.
	// The key is wiped when fn returns and must not be retained by fn.
	WithSigningKey(ctx context.Context, merchantID string, fn func(address common.Address, key *ecdsa.PrivateKey) error) error
}

// TransactionSigner turns a contract call into a signed envelope.
type TransactionSigner interface {
	Sign(ctx context.Context, merchantID string, call domain.ContractCall) (*domain.SignedEnvelope, error)
	// Release gives back the envelope's nonce after the node refused it.
	Release(ctx context.Context, env *domain.SignedEnvelope) error
}

// LedgerGateway is the client of the ledger node.
type LedgerGateway interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, address common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	Balance(ctx context.Context, address common.Address) (*big.Int, error)
	EstimateGas(ctx context.Context, from common.Address, call domain.ContractCall) (uint64, error)
	// Submit sends the envelope once and waits for its receipt. It never resubmits.
	Submit(ctx context.Context, env *domain.SignedEnvelope) (*domain.Receipt, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	DecodeEvent(receipt *domain.Receipt, eventSignature string) (*domain.DecodedEvent, bool)
}

// ApprovalService issues and verifies QR approval tokens. It is stateless.
type ApprovalService interface {
	Issue(action domain.ApprovalAction, payload any) (*domain.ApprovalToken, error)
	Verify(token *domain.ApprovalToken, expectedHash string) domain.Verification
	Encode(token *domain.ApprovalToken) (string, error)
	Decode(encoded string) (*domain.ApprovalToken, error)
	// RenderQR returns a base64 PNG of the encoded token and its hash.
	RenderQR(token *domain.ApprovalToken) (string, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(merchantID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID string
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// CustodyService sequences vault, signer, gateway and approval calls
// into the loan/offer business operations.
type CustodyService interface {
	EnableCustody(ctx context.Context, merchantID string) (*domain.WalletInfo, error)
	GetWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error)
	GetBalance(ctx context.Context, merchantID string) (*Balance, error)

	RegisterAsset(ctx context.Context, req RegisterAssetRequest) (*AssetResult, error)
	RequestLoan(ctx context.Context, req LoanRequest) (*LoanRequestResult, error)
	ApproveLoan(ctx context.Context, req ApproveLoanRequest) (*TxResult, error)
	CancelLoan(ctx context.Context, merchantID string, loanID *big.Int) (*TxResult, error)
	ReturnAsset(ctx context.Context, merchantID string, loanID *big.Int) (*TxResult, error)
	PlaceOffer(ctx context.Context, req OfferRequest) (*OfferResult, error)
	AcceptOffer(ctx context.Context, merchantID string, offerID *big.Int) (*TxResult, error)
	RejectOffer(ctx context.Context, merchantID string, offerID *big.Int) (*TxResult, error)

	GetLoan(ctx context.Context, loanID *big.Int) (*domain.Loan, error)
	GetOffer(ctx context.Context, offerID *big.Int) (*domain.Offer, error)
	GetAsset(ctx context.Context, tokenID *big.Int) (*domain.Asset, error)

	IssueApproval(ctx context.Context, action domain.ApprovalAction, payload json.RawMessage) (*ApprovalResult, error)
	VerifyApproval(ctx context.Context, encodedToken, hash string) (*domain.Verification, error)
}

// Balance is a wallet's native balance.
type Balance struct {
	Address common.Address
	Wei     *big.Int
}

// RegisterAssetRequest holds validated input for asset registration.
type RegisterAssetRequest struct {
	MerchantID    string
	CertificateID string
	MetadataHash  common.Hash
}

// AssetResult carries the minted token id.
type AssetResult struct {
	TokenID *big.Int
	TxHash  common.Hash
}

// LoanRequest holds validated input for a loan request. The caller is the lender.
type LoanRequest struct {
	MerchantID string
	AssetID    *big.Int
	Borrower   common.Address
	Duration   uint64
	Price      *big.Int
}

// ApprovalResult is an issued token in every transport form.
type ApprovalResult struct {
	Token   *domain.ApprovalToken
	Encoded string
	QRCode  string // base64 PNG
}

// LoanRequestResult is returned to the lender, who shows the QR to the borrower.
type LoanRequestResult struct {
	LoanID   *big.Int
	TxHash   common.Hash
	Approval *ApprovalResult
}

// ApproveLoanRequest is the borrower's presentation of an approval token.
type ApproveLoanRequest struct {
	MerchantID string
	LoanID     *big.Int
	Token      string // encoded
	Hash       string
}

// OfferRequest holds validated input for placing an offer.
type OfferRequest struct {
	MerchantID string
	LoanID     *big.Int
	Price      *big.Int
}

// OfferResult carries the new offer id.
type OfferResult struct {
	OfferID *big.Int
	TxHash  common.Hash
}

// TxResult identifies a confirmed state-changing transaction.
type TxResult struct {
	TxHash      common.Hash
	BlockNumber uint64
}
