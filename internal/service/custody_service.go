package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"diamond-custody-gateway/internal/contract"
	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

const defaultConsumedMarkerTTL = 24 * time.Hour

// CustodyConfig tunes the orchestrator.
type CustodyConfig struct {
	GasHeadroomPercent uint64
	ConsumedMarkerTTL  time.Duration
}

// CustodyService implements ports.CustodyService. The ledger is the only
// source of truth for loan and offer state; nothing is cached here.
type CustodyService struct {
	vault     ports.KeyVault
	signer    ports.TransactionSigner
	gateway   ports.LedgerGateway
	approvals ports.ApprovalService
	consumed  ports.ConsumedTokenStore
	market    *contract.Marketplace
	directory ports.MerchantDirectory
	events    ports.EventPublisher
	cfg       CustodyConfig
	log       zerolog.Logger
	now       func() time.Time
}

// NewCustodyService creates a new orchestrator. directory and events may be nil.
func NewCustodyService(
	vault ports.KeyVault,
	signer ports.TransactionSigner,
	gateway ports.LedgerGateway,
	approvals ports.ApprovalService,
	consumed ports.ConsumedTokenStore,
	market *contract.Marketplace,
	directory ports.MerchantDirectory,
	events ports.EventPublisher,
	cfg CustodyConfig,
	log zerolog.Logger,
) *CustodyService {
	if cfg.ConsumedMarkerTTL <= 0 {
		cfg.ConsumedMarkerTTL = defaultConsumedMarkerTTL
	}
	return &CustodyService{
		vault:     vault,
		signer:    signer,
		gateway:   gateway,
		approvals: approvals,
		consumed:  consumed,
		market:    market,
		directory: directory,
		events:    events,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// ---- Wallets ----

// EnableCustody creates the merchant's wallet and records it in the merchant
// directory. A failed write-back is logged and does not undo the wallet.
func (s *CustodyService) EnableCustody(ctx context.Context, merchantID string) (*domain.WalletInfo, error) {
	if s.directory != nil {
		m, err := s.directory.Get(ctx, merchantID)
		if err != nil {
			return nil, storageError(err)
		}
		if m == nil {
			return nil, apperror.ErrMerchantNotFound()
		}
		if !m.IsActive() {
			return nil, apperror.ErrMerchantSuspended()
		}
	}

	info, err := s.vault.CreateWallet(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	if s.directory != nil {
		if err := s.directory.SetWallet(ctx, merchantID, info.Address, true); err != nil {
			s.log.Warn().Err(err).
				Str("merchant_id", merchantID).
				Str("address", info.Address.Hex()).
				Msg("failed to record wallet in merchant directory")
		}
	}

	s.publish(ctx, domain.EventCustodyEnabled, merchantID, common.Hash{}, map[string]string{
		"address": info.Address.Hex(),
	})
	return info, nil
}

func (s *CustodyService) GetWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error) {
	return s.vault.GetWallet(ctx, merchantID)
}

func (s *CustodyService) GetBalance(ctx context.Context, merchantID string) (*ports.Balance, error) {
	wallet, err := s.vault.GetWallet(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	wei, err := s.gateway.Balance(ctx, wallet.Address)
	if err != nil {
		return nil, err
	}
	return &ports.Balance{Address: wallet.Address, Wei: wei}, nil
}

// ---- Assets ----

// RegisterAsset mints a diamond token owned by the merchant's wallet.
func (s *CustodyService) RegisterAsset(ctx context.Context, req ports.RegisterAssetRequest) (*ports.AssetResult, error) {
	if strings.TrimSpace(req.CertificateID) == "" {
		return nil, apperror.Validation("certificate id is required")
	}
	call, err := s.market.RegisterDiamond(req.CertificateID, req.MetadataHash)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	receipt, ev, err := s.execute(ctx, req.MerchantID, call, contract.EventDiamondRegistered)
	if err != nil {
		return nil, err
	}
	tokenID, err := indexedID(receipt, ev, 0)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventAssetRegistered, req.MerchantID, receipt.TxHash, map[string]string{
		"token_id":       tokenID.String(),
		"certificate_id": req.CertificateID,
	})
	return &ports.AssetResult{TokenID: tokenID, TxHash: receipt.TxHash}, nil
}

func (s *CustodyService) GetAsset(ctx context.Context, tokenID *big.Int) (*domain.Asset, error) {
	if err := requireID(tokenID, "asset id"); err != nil {
		return nil, err
	}
	data, err := s.market.GetDiamondData(tokenID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	out, err := s.gateway.Call(ctx, s.market.Address(), data)
	if err != nil {
		return nil, err
	}
	asset, err := s.market.DecodeAsset(tokenID, out)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}
	return asset, nil
}

// ---- Loans ----

// RequestLoan issues a LOAN_REQUEST approval token and commits its hash
// on-chain with the loan request. The caller is the lender.
func (s *CustodyService) RequestLoan(ctx context.Context, req ports.LoanRequest) (*ports.LoanRequestResult, error) {
	if err := requireID(req.AssetID, "asset id"); err != nil {
		return nil, err
	}
	switch {
	case req.Duration == 0:
		return nil, apperror.Validation("duration must be positive")
	case req.Borrower == (common.Address{}):
		return nil, apperror.Validation("borrower address is required")
	case req.Price == nil || req.Price.Sign() < 0:
		return nil, apperror.Validation("price must not be negative")
	}

	lender, err := s.vault.GetWallet(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}

	approval, err := s.issue(domain.ApprovalLoanRequest, domain.LoanRequestPayload{
		AssetID:  req.AssetID.String(),
		Lender:   lender.Address.Hex(),
		Borrower: req.Borrower.Hex(),
		Duration: req.Duration,
		Terms:    domain.LoanTerms{Price: req.Price.String()},
	})
	if err != nil {
		return nil, err
	}

	call, err := s.market.CreateLoanRequest(req.AssetID, req.Borrower, req.Duration, req.Price, common.HexToHash(approval.Token.Hash))
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	receipt, ev, err := s.executeFrom(ctx, req.MerchantID, lender, call, contract.EventLoanRequested)
	if err != nil {
		return nil, err
	}
	loanID, err := indexedID(receipt, ev, 0)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventLoanRequested, req.MerchantID, receipt.TxHash, map[string]string{
		"loan_id":  loanID.String(),
		"asset_id": req.AssetID.String(),
		"borrower": req.Borrower.Hex(),
	})
	return &ports.LoanRequestResult{LoanID: loanID, TxHash: receipt.TxHash, Approval: approval}, nil
}

// ApproveLoan lets the borrower accept a pending loan by presenting the
// approval token. The token is verified against the hash recorded on-chain
// and can be spent once.
func (s *CustodyService) ApproveLoan(ctx context.Context, req ports.ApproveLoanRequest) (*ports.TxResult, error) {
	if err := requireID(req.LoanID, "loan id"); err != nil {
		return nil, err
	}
	token, err := s.approvals.Decode(req.Token)
	if err != nil {
		return nil, err
	}

	loan, err := s.GetLoan(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}

	committed := loan.ApprovalHash.Hex()
	if req.Hash != "" && !strings.EqualFold(strings.TrimSpace(req.Hash), committed) {
		return nil, apperror.ErrHashMismatch()
	}
	v := s.approvals.Verify(token, committed)
	if !v.Valid {
		s.log.Info().
			Str("merchant_id", req.MerchantID).
			Str("loan_id", req.LoanID.String()).
			Str("reason", string(v.Reason)).
			Msg("loan approval rejected")
		return nil, verificationError(v.Reason)
	}

	var payload domain.LoanRequestPayload
	if err := json.Unmarshal(v.Payload, &payload); err != nil {
		return nil, apperror.ErrMalformedToken(err)
	}

	borrower, err := s.vault.GetWallet(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(payload.Borrower, borrower.Address.Hex()) || loan.Borrower != borrower.Address {
		return nil, apperror.ErrNotApprover()
	}
	if _, ok := loan.Status.Next(domain.LoanActionApprove); !ok {
		return nil, apperror.ErrInvalidTransition(string(loan.Status), string(domain.LoanActionApprove))
	}

	fresh, err := s.consumed.MarkConsumed(ctx, token.ID, s.cfg.ConsumedMarkerTTL)
	if err != nil {
		return nil, storageError(err)
	}
	if !fresh {
		return nil, apperror.ErrTokenConsumed()
	}

	call, err := s.market.ApproveLoan(req.LoanID)
	if err != nil {
		s.releaseMarker(ctx, token.ID)
		return nil, apperror.InternalError(err)
	}
	env, err := s.prepare(ctx, req.MerchantID, borrower, call)
	if err != nil {
		s.releaseMarker(ctx, token.ID)
		return nil, err
	}
	receipt, _, err := s.submit(ctx, env, contract.EventLoanApproved)
	if err != nil {
		// Only a refused envelope proves the approval never landed.
		if apperror.IsCode(err, apperror.CodeSubmissionRejected) {
			s.releaseMarker(ctx, token.ID)
		}
		return nil, err
	}

	s.publish(ctx, domain.EventLoanApproved, req.MerchantID, receipt.TxHash, map[string]string{
		"loan_id":  req.LoanID.String(),
		"borrower": borrower.Address.Hex(),
	})
	return txResult(receipt), nil
}

// CancelLoan withdraws a pending loan. Whether it is still pending is left
// to the contract; a stale request fails at gas estimation.
func (s *CustodyService) CancelLoan(ctx context.Context, merchantID string, loanID *big.Int) (*ports.TxResult, error) {
	return s.loanAction(ctx, merchantID, loanID, domain.EventLoanCancelled, s.market.CancelLoan, contract.EventLoanCancelled)
}

// ReturnAsset ends an active loan, returning the diamond to the lender.
func (s *CustodyService) ReturnAsset(ctx context.Context, merchantID string, loanID *big.Int) (*ports.TxResult, error) {
	return s.loanAction(ctx, merchantID, loanID, domain.EventAssetReturned, s.market.ReturnDiamond, contract.EventDiamondReturned)
}

func (s *CustodyService) GetLoan(ctx context.Context, loanID *big.Int) (*domain.Loan, error) {
	if err := requireID(loanID, "loan id"); err != nil {
		return nil, err
	}
	data, err := s.market.GetLoanData(loanID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	out, err := s.gateway.Call(ctx, s.market.Address(), data)
	if err != nil {
		return nil, err
	}
	loan, err := s.market.DecodeLoan(loanID, out)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if loan == nil {
		return nil, apperror.ErrLoanNotFound()
	}
	return loan, nil
}

// ---- Offers ----

// PlaceOffer bids on an active loan's diamond.
func (s *CustodyService) PlaceOffer(ctx context.Context, req ports.OfferRequest) (*ports.OfferResult, error) {
	if err := requireID(req.LoanID, "loan id"); err != nil {
		return nil, err
	}
	if req.Price == nil || req.Price.Sign() <= 0 {
		return nil, apperror.Validation("price must be positive")
	}
	call, err := s.market.PlaceOffer(req.LoanID, req.Price)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	receipt, ev, err := s.execute(ctx, req.MerchantID, call, contract.EventOfferPlaced)
	if err != nil {
		return nil, err
	}
	offerID, err := indexedID(receipt, ev, 0)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventOfferPlaced, req.MerchantID, receipt.TxHash, map[string]string{
		"offer_id": offerID.String(),
		"loan_id":  req.LoanID.String(),
		"price":    req.Price.String(),
	})
	return &ports.OfferResult{OfferID: offerID, TxHash: receipt.TxHash}, nil
}

func (s *CustodyService) AcceptOffer(ctx context.Context, merchantID string, offerID *big.Int) (*ports.TxResult, error) {
	return s.offerAction(ctx, merchantID, offerID, domain.EventOfferAccepted, s.market.AcceptOffer, contract.EventOfferAccepted)
}

func (s *CustodyService) RejectOffer(ctx context.Context, merchantID string, offerID *big.Int) (*ports.TxResult, error) {
	return s.offerAction(ctx, merchantID, offerID, domain.EventOfferRejected, s.market.RejectOffer, contract.EventOfferRejected)
}

func (s *CustodyService) GetOffer(ctx context.Context, offerID *big.Int) (*domain.Offer, error) {
	if err := requireID(offerID, "offer id"); err != nil {
		return nil, err
	}
	data, err := s.market.GetOfferData(offerID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	out, err := s.gateway.Call(ctx, s.market.Address(), data)
	if err != nil {
		return nil, err
	}
	offer, err := s.market.DecodeOffer(offerID, out)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if offer == nil {
		return nil, apperror.ErrOfferNotFound()
	}
	return offer, nil
}

// ---- Approvals ----

// IssueApproval mints a standalone approval token for action.
func (s *CustodyService) IssueApproval(ctx context.Context, action domain.ApprovalAction, payload json.RawMessage) (*ports.ApprovalResult, error) {
	if len(payload) == 0 {
		return nil, apperror.Validation("payload is required")
	}
	return s.issue(action, payload)
}

// VerifyApproval checks an encoded token against hash without spending it.
func (s *CustodyService) VerifyApproval(ctx context.Context, encodedToken, hash string) (*domain.Verification, error) {
	token, err := s.approvals.Decode(encodedToken)
	if err != nil {
		return nil, err
	}
	v := s.approvals.Verify(token, hash)
	return &v, nil
}

// ---- Internals ----

type idCall func(id *big.Int) (domain.ContractCall, error)

func (s *CustodyService) loanAction(ctx context.Context, merchantID string, loanID *big.Int, evType domain.CustodyEventType, build idCall, eventSig string) (*ports.TxResult, error) {
	if err := requireID(loanID, "loan id"); err != nil {
		return nil, err
	}
	return s.simpleAction(ctx, merchantID, loanID, "loan_id", evType, build, eventSig)
}

func (s *CustodyService) offerAction(ctx context.Context, merchantID string, offerID *big.Int, evType domain.CustodyEventType, build idCall, eventSig string) (*ports.TxResult, error) {
	if err := requireID(offerID, "offer id"); err != nil {
		return nil, err
	}
	return s.simpleAction(ctx, merchantID, offerID, "offer_id", evType, build, eventSig)
}

func (s *CustodyService) simpleAction(ctx context.Context, merchantID string, id *big.Int, field string, evType domain.CustodyEventType, build idCall, eventSig string) (*ports.TxResult, error) {
	call, err := build(id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	receipt, _, err := s.execute(ctx, merchantID, call, eventSig)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evType, merchantID, receipt.TxHash, map[string]string{field: id.String()})
	return txResult(receipt), nil
}

func (s *CustodyService) execute(ctx context.Context, merchantID string, call domain.ContractCall, eventSig string) (*domain.Receipt, *domain.DecodedEvent, error) {
	wallet, err := s.vault.GetWallet(ctx, merchantID)
	if err != nil {
		return nil, nil, err
	}
	return s.executeFrom(ctx, merchantID, wallet, call, eventSig)
}

func (s *CustodyService) executeFrom(ctx context.Context, merchantID string, wallet *domain.WalletInfo, call domain.ContractCall, eventSig string) (*domain.Receipt, *domain.DecodedEvent, error) {
	env, err := s.prepare(ctx, merchantID, wallet, call)
	if err != nil {
		return nil, nil, err
	}
	return s.submit(ctx, env, eventSig)
}

// prepare estimates gas and signs. A call that would revert never reaches
// the signer.
func (s *CustodyService) prepare(ctx context.Context, merchantID string, wallet *domain.WalletInfo, call domain.ContractCall) (*domain.SignedEnvelope, error) {
	gas, err := s.gateway.EstimateGas(ctx, wallet.Address, call)
	if err != nil {
		if apperror.IsCode(err, apperror.CodeWouldRevert) {
			s.log.Info().
				Str("merchant_id", merchantID).
				Str("address", wallet.Address.Hex()).
				Msg("call would revert, not signing")
		}
		return nil, err
	}
	call.GasLimit = gas + gas*s.cfg.GasHeadroomPercent/100

	return s.signer.Sign(ctx, merchantID, call)
}

// submit sends env once and extracts eventSig from the receipt. A failed send
// hands the nonce back; if the node did accept it, the next reservation
// resyncs from the pending count.
func (s *CustodyService) submit(ctx context.Context, env *domain.SignedEnvelope, eventSig string) (*domain.Receipt, *domain.DecodedEvent, error) {
	receipt, err := s.gateway.Submit(ctx, env)
	if err != nil {
		if sendFailed(err) {
			if relErr := s.signer.Release(ctx, env); relErr != nil {
				s.log.Warn().Err(relErr).Str("tx_hash", env.Hash.Hex()).Msg("failed to release nonce")
			}
		}
		return nil, nil, err
	}

	ev, ok := s.gateway.DecodeEvent(receipt, eventSig)
	if !ok {
		s.log.Error().
			Str("tx_hash", receipt.TxHash.Hex()).
			Str("event", eventSig).
			Msg("expected event missing from receipt, manual reconciliation required")
		return nil, nil, apperror.ErrReceiptDecodeFailed(receipt.TxHash.Hex(), eventSig)
	}

	s.log.Info().
		Str("tx_hash", receipt.TxHash.Hex()).
		Uint64("block", receipt.BlockNumber).
		Str("event", eventSig).
		Msg("transaction confirmed")
	return receipt, ev, nil
}

func (s *CustodyService) issue(action domain.ApprovalAction, payload any) (*ports.ApprovalResult, error) {
	token, err := s.approvals.Issue(action, payload)
	if err != nil {
		return nil, err
	}
	encoded, err := s.approvals.Encode(token)
	if err != nil {
		return nil, err
	}
	qr, err := s.approvals.RenderQR(token)
	if err != nil {
		return nil, err
	}
	return &ports.ApprovalResult{Token: token, Encoded: encoded, QRCode: qr}, nil
}

func (s *CustodyService) releaseMarker(ctx context.Context, tokenID string) {
	if err := s.consumed.Release(ctx, tokenID); err != nil {
		s.log.Warn().Err(err).Str("token_id", tokenID).Msg("failed to release approval marker")
	}
}

func (s *CustodyService) publish(ctx context.Context, typ domain.CustodyEventType, merchantID string, txHash common.Hash, fields map[string]string) {
	if s.events == nil {
		return
	}
	ev := &domain.CustodyEvent{
		Type:       typ,
		MerchantID: merchantID,
		Fields:     fields,
		OccurredAt: s.now().UTC(),
	}
	if txHash != (common.Hash{}) {
		ev.TxHash = txHash.Hex()
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(typ)).Msg("failed to publish custody event")
	}
}

// sendFailed reports whether a Submit error came from the send call rather
// than the receipt wait.
func sendFailed(err error) bool {
	switch apperror.CodeOf(err) {
	case apperror.CodeSubmissionRejected, apperror.CodeLedgerUnavailable, apperror.CodeLedgerTimeout:
		return true
	}
	return false
}

func verificationError(reason domain.VerifyReason) error {
	if reason == domain.VerifyExpired {
		return apperror.ErrTokenExpired()
	}
	return apperror.ErrHashMismatch()
}

func indexedID(receipt *domain.Receipt, ev *domain.DecodedEvent, i int) (*big.Int, error) {
	id, ok := ev.IndexedBig(i)
	if !ok {
		return nil, apperror.ErrReceiptDecodeFailed(receipt.TxHash.Hex(), ev.Signature)
	}
	return id, nil
}

func requireID(id *big.Int, name string) error {
	if id == nil || id.Sign() <= 0 {
		return apperror.Validation(fmt.Sprintf("%s must be a positive integer", name))
	}
	return nil
}

func txResult(r *domain.Receipt) *ports.TxResult {
	return &ports.TxResult{TxHash: r.TxHash, BlockNumber: r.BlockNumber}
}
