package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"diamond-custody-gateway/internal/adapter/ledger"
	"diamond-custody-gateway/internal/adapter/ledger/ledgertest"
	"diamond-custody-gateway/internal/adapter/storage/memory"
	"diamond-custody-gateway/internal/contract"
	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/internal/core/ports/mocks"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CustodyEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, ev *domain.CustodyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) types() []domain.CustodyEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CustodyEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type custodyHarness struct {
	chain     *ledgertest.Chain
	svc       *CustodyService
	vault     *VaultService
	approvals *ApprovalService
	consumed  *memory.ConsumedTokenStore
	directory *memory.MerchantDirectory
	events    *recordingPublisher
	clock     *fakeClock
	wallets   map[string]common.Address
}

func newCustodyHarness(t *testing.T, gwCfg ledger.Config) *custodyHarness {
	t.Helper()

	chain, err := ledgertest.New(testChainID, testMarket)
	require.NoError(t, err)
	market, err := contract.NewMarketplace(testMarket)
	require.NoError(t, err)

	if gwCfg.ReceiptPollInterval == 0 {
		gwCfg.ReceiptPollInterval = 5 * time.Millisecond
	}
	gwCfg.RetryInitialInterval = time.Millisecond
	gw := ledger.NewGateway(chain, gwCfg, nil, zerolog.Nop())

	vault, _ := newTestVault(t)
	signer := NewSignerService(vault, gw, memory.NewNonceTracker(time.Minute), SignerConfig{
		DefaultGasLimit: 500_000,
	}, zerolog.Nop())

	approvals, clock := newTestApprovals(t)
	consumed := memory.NewConsumedTokenStore()
	directory := memory.NewMerchantDirectory(
		domain.Merchant{ID: "lender", Name: "Lender Co", Status: domain.MerchantStatusActive},
		domain.Merchant{ID: "borrower", Name: "Borrower Co", Status: domain.MerchantStatusActive},
		domain.Merchant{ID: "buyer", Name: "Buyer Co", Status: domain.MerchantStatusActive},
		domain.Merchant{ID: "frozen", Name: "Frozen Co", Status: domain.MerchantStatusSuspended},
	)
	events := &recordingPublisher{}

	svc := NewCustodyService(vault, signer, gw, approvals, consumed, market, directory, events,
		CustodyConfig{GasHeadroomPercent: 20}, zerolog.Nop())

	return &custodyHarness{
		chain:     chain,
		svc:       svc,
		vault:     vault,
		approvals: approvals,
		consumed:  consumed,
		directory: directory,
		events:    events,
		clock:     clock,
		wallets:   make(map[string]common.Address),
	}
}

func (h *custodyHarness) enable(t *testing.T, merchants ...string) {
	t.Helper()
	for _, m := range merchants {
		info, err := h.svc.EnableCustody(context.Background(), m)
		require.NoError(t, err)
		h.wallets[m] = info.Address
	}
}

// requestLoan registers a diamond as lender and asks borrower to borrow it.
func (h *custodyHarness) requestLoan(t *testing.T, cert string) (*ports.AssetResult, *ports.LoanRequestResult) {
	t.Helper()
	ctx := context.Background()

	asset, err := h.svc.RegisterAsset(ctx, ports.RegisterAssetRequest{
		MerchantID:    "lender",
		CertificateID: cert,
		MetadataHash:  crypto.Keccak256Hash([]byte(cert)),
	})
	require.NoError(t, err)

	res, err := h.svc.RequestLoan(ctx, ports.LoanRequest{
		MerchantID: "lender",
		AssetID:    asset.TokenID,
		Borrower:   h.wallets["borrower"],
		Duration:   30,
		Price:      big.NewInt(1_000_000),
	})
	require.NoError(t, err)
	return asset, res
}

func (h *custodyHarness) approve(ctx context.Context, res *ports.LoanRequestResult) (*ports.TxResult, error) {
	return h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{
		MerchantID: "borrower",
		LoanID:     res.LoanID,
		Token:      res.Approval.Encoded,
		Hash:       res.Approval.Token.Hash,
	})
}

func (h *custodyHarness) activeLoan(t *testing.T, cert string) (*ports.AssetResult, *ports.LoanRequestResult) {
	t.Helper()
	asset, res := h.requestLoan(t, cert)
	_, err := h.approve(context.Background(), res)
	require.NoError(t, err)
	return asset, res
}

func TestCustody_LoanApprovalScenario(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	asset, res := h.requestLoan(t, "GIA-2141438167")
	require.NotNil(t, asset.TokenID)

	var payload domain.LoanRequestPayload
	require.NoError(t, json.Unmarshal(res.Approval.Token.Payload, &payload))
	assert.Equal(t, asset.TokenID.String(), payload.AssetID)
	assert.Equal(t, uint64(30), payload.Duration)
	assert.Equal(t, h.wallets["lender"].Hex(), payload.Lender)
	assert.Equal(t, h.wallets["borrower"].Hex(), payload.Borrower)
	assert.NotEmpty(t, res.Approval.QRCode)

	loan, err := h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPending, loan.Status)
	assert.True(t, strings.EqualFold(res.Approval.Token.Hash, loan.ApprovalHash.Hex()))

	tx, err := h.approve(ctx, res)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, tx.TxHash)

	loan, err = h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.NotZero(t, loan.StartTime)

	sends := h.chain.Calls("SendTransaction")
	_, err = h.approve(ctx, res)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition), "got %v", err)
	assert.Equal(t, sends, h.chain.Calls("SendTransaction"))

	assert.Equal(t, []domain.CustodyEventType{
		domain.EventCustodyEnabled,
		domain.EventCustodyEnabled,
		domain.EventAssetRegistered,
		domain.EventLoanRequested,
		domain.EventLoanApproved,
	}, h.events.types())
}

func TestCustody_ApproveLoan_Rejections(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower", "buyer")
	ctx := context.Background()

	t.Run("wrong party", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-A")
		_, err := h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{
			MerchantID: "buyer",
			LoanID:     res.LoanID,
			Token:      res.Approval.Encoded,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeNotApprover))
	})

	t.Run("presented hash differs from commitment", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-B")
		_, err := h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{
			MerchantID: "borrower",
			LoanID:     res.LoanID,
			Token:      res.Approval.Encoded,
			Hash:       crypto.Keccak256Hash([]byte("other")).Hex(),
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeHashMismatch))
	})

	t.Run("altered terms", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-C")
		tampered := *res.Approval.Token
		var p domain.LoanRequestPayload
		require.NoError(t, json.Unmarshal(tampered.Payload, &p))
		p.Duration = 3650
		tampered.Payload, _ = json.Marshal(p)
		encoded, err := h.approvals.Encode(&tampered)
		require.NoError(t, err)

		_, err = h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{MerchantID: "borrower", LoanID: res.LoanID, Token: encoded})
		assert.True(t, apperror.IsCode(err, apperror.CodeHashMismatch))
	})

	t.Run("token for another loan", func(t *testing.T) {
		_, first := h.requestLoan(t, "GIA-D")
		_, second := h.requestLoan(t, "GIA-E")
		_, err := h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{
			MerchantID: "borrower",
			LoanID:     second.LoanID,
			Token:      first.Approval.Encoded,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeHashMismatch))
	})

	t.Run("expired", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-F")
		h.clock.Advance(16 * time.Minute)
		defer h.clock.Advance(-16 * time.Minute)

		_, err := h.approve(ctx, res)
		assert.True(t, apperror.IsCode(err, apperror.CodeTokenExpired))
	})

	t.Run("already being consumed", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-G")
		ok, err := h.consumed.MarkConsumed(ctx, res.Approval.Token.ID, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = h.approve(ctx, res)
		assert.True(t, apperror.IsCode(err, apperror.CodeTokenConsumed))

		loan, err := h.svc.GetLoan(ctx, res.LoanID)
		require.NoError(t, err)
		assert.Equal(t, domain.LoanStatusPending, loan.Status)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-H")
		_, err := h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{MerchantID: "borrower", LoanID: res.LoanID, Token: "%%%"})
		assert.True(t, apperror.IsCode(err, apperror.CodeMalformedToken))
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, res := h.requestLoan(t, "GIA-I")
		_, err := h.svc.ApproveLoan(ctx, ports.ApproveLoanRequest{MerchantID: "borrower", LoanID: big.NewInt(999), Token: res.Approval.Encoded})
		assert.True(t, apperror.IsCode(err, apperror.CodeLoanNotFound))
	})
}

func TestCustody_CancelledLoanCannotBeApproved(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	asset, res := h.requestLoan(t, "GIA-1")
	_, err := h.svc.CancelLoan(ctx, "lender", res.LoanID)
	require.NoError(t, err)

	loan, err := h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusCancelled, loan.Status)

	a, err := h.svc.GetAsset(ctx, asset.TokenID)
	require.NoError(t, err)
	assert.False(t, a.OnLoan)

	_, err = h.approve(ctx, res)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
}

func TestCustody_WouldRevertNeverSigns(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	_, res := h.requestLoan(t, "GIA-1")
	_, err := h.svc.CancelLoan(ctx, "lender", res.LoanID)
	require.NoError(t, err)

	lender := h.wallets["lender"]
	nonceBefore := h.chain.Nonce(lender)
	sendsBefore := h.chain.Calls("SendTransaction")

	_, err = h.svc.CancelLoan(ctx, "lender", res.LoanID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeWouldRevert, appErr.Code)
	assert.Equal(t, "loan not pending", appErr.Meta["reason"])

	_, err = h.svc.ReturnAsset(ctx, "borrower", res.LoanID)
	assert.True(t, apperror.IsCode(err, apperror.CodeWouldRevert))

	assert.Equal(t, nonceBefore, h.chain.Nonce(lender))
	assert.Equal(t, sendsBefore, h.chain.Calls("SendTransaction"))

	// No nonce was reserved: the next transaction uses the chain's nonce.
	_, err = h.svc.RegisterAsset(ctx, ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: "GIA-2"})
	require.NoError(t, err)
	assert.Equal(t, nonceBefore+1, h.chain.Nonce(lender))
}

func TestCustody_SubmissionTimeoutThenRetry(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{CallTimeout: 50 * time.Millisecond})
	h.enable(t, "lender")
	ctx := context.Background()
	lender := h.wallets["lender"]
	req := ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: "GIA-1"}

	h.chain.SetSendMode(ledgertest.SendDrop)
	_, err := h.svc.RegisterAsset(ctx, req)
	assert.True(t, apperror.IsUnavailable(err), "got %v", err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotEmpty(t, appErr.Meta["tx_hash"])
	assert.False(t, apperror.IsRetryable(err))
	assert.Equal(t, uint64(0), h.chain.Nonce(lender), "envelope never reached the node")

	estimates := h.chain.Calls("EstimateGas")
	nonceFetches := h.chain.Calls("PendingNonceAt")

	h.chain.SetSendMode(ledgertest.SendNormal)
	res, err := h.svc.RegisterAsset(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TokenID.Int64())
	assert.Equal(t, uint64(1), h.chain.Nonce(lender), "retry signed with nonce 0 again")
	assert.Equal(t, estimates+1, h.chain.Calls("EstimateGas"))
	assert.Equal(t, nonceFetches+1, h.chain.Calls("PendingNonceAt"))
}

func TestCustody_LostResponseRetryReEstimates(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{CallTimeout: 50 * time.Millisecond})
	h.enable(t, "lender")
	ctx := context.Background()
	req := ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: "GIA-1"}

	h.chain.SetSendMode(ledgertest.SendAcceptThenHang)
	_, err := h.svc.RegisterAsset(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLedgerTimeout, appErr.Code)
	assert.NotEmpty(t, appErr.Meta["tx_hash"])
	assert.False(t, apperror.IsRetryable(err))

	// The first envelope was mined; re-estimation catches the duplicate.
	h.chain.SetSendMode(ledgertest.SendNormal)
	_, err = h.svc.RegisterAsset(ctx, req)
	assert.True(t, apperror.IsCode(err, apperror.CodeWouldRevert))

	// Fresh nonce fetch sees the mined envelope.
	_, err = h.svc.RegisterAsset(ctx, ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: "GIA-2"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), h.chain.Nonce(h.wallets["lender"]))
}

func TestCustody_ConfirmationTimeoutKeepsMarker(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{ReceiptTimeout: 50 * time.Millisecond})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	_, res := h.requestLoan(t, "GIA-1")

	h.chain.HoldReceipts(true)
	_, err := h.approve(ctx, res)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeConfirmationTimeout, appErr.Code)
	assert.NotEmpty(t, appErr.Meta["tx_hash"])
	assert.False(t, apperror.IsRetryable(err))

	h.chain.HoldReceipts(false)
	_, err = h.approve(ctx, res)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition), "ledger already moved the loan on")
}

func TestCustody_SubmissionRejectedReleasesMarker(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	_, res := h.requestLoan(t, "GIA-1")

	h.chain.FailNextSend(&ledgertest.RPCError{Code: -32000, Message: "txpool is full"})
	_, err := h.approve(ctx, res)
	assert.True(t, apperror.IsCode(err, apperror.CodeSubmissionRejected))

	_, err = h.approve(ctx, res)
	require.NoError(t, err, "token is still spendable and the nonce was handed back")
}

func TestCustody_MissingEvent(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender")

	h.chain.OmitEvents(true)
	_, err := h.svc.RegisterAsset(context.Background(), ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: "GIA-1"})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeReceiptDecodeFailed, appErr.Code)
	assert.NotEmpty(t, appErr.Meta["tx_hash"])
	assert.Equal(t, contract.EventDiamondRegistered, appErr.Meta["event"])
}

func TestCustody_OfferAcceptedSellsDiamond(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower", "buyer")
	ctx := context.Background()

	asset, res := h.activeLoan(t, "GIA-1")

	offer, err := h.svc.PlaceOffer(ctx, ports.OfferRequest{MerchantID: "buyer", LoanID: res.LoanID, Price: big.NewInt(5_000)})
	require.NoError(t, err)

	o, err := h.svc.GetOffer(ctx, offer.OfferID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPending, o.Status)
	assert.Equal(t, h.wallets["buyer"], o.Buyer)
	assert.Equal(t, int64(5_000), o.Price.Int64())

	_, err = h.svc.AcceptOffer(ctx, "lender", offer.OfferID)
	require.NoError(t, err)

	o, err = h.svc.GetOffer(ctx, offer.OfferID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusAccepted, o.Status)

	loan, err := h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusSold, loan.Status)

	a, err := h.svc.GetAsset(ctx, asset.TokenID)
	require.NoError(t, err)
	assert.Equal(t, h.wallets["buyer"], a.Owner)

	_, err = h.svc.PlaceOffer(ctx, ports.OfferRequest{MerchantID: "buyer", LoanID: res.LoanID, Price: big.NewInt(1)})
	assert.True(t, apperror.IsCode(err, apperror.CodeWouldRevert))
}

func TestCustody_LostResponseOfferNotRetryable(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{CallTimeout: 50 * time.Millisecond})
	h.enable(t, "lender", "borrower", "buyer")
	ctx := context.Background()

	_, res := h.activeLoan(t, "GIA-1")

	h.chain.SetSendMode(ledgertest.SendAcceptThenHang)
	_, err := h.svc.PlaceOffer(ctx, ports.OfferRequest{MerchantID: "buyer", LoanID: res.LoanID, Price: big.NewInt(5_000)})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLedgerTimeout, appErr.Code)
	assert.NotEmpty(t, appErr.Meta["tx_hash"])
	assert.False(t, apperror.IsRetryable(err))

	// The offer landed even though the caller saw a timeout.
	h.chain.SetSendMode(ledgertest.SendNormal)
	o, err := h.svc.GetOffer(ctx, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPending, o.Status)
	assert.Equal(t, h.wallets["buyer"], o.Buyer)
	assert.Equal(t, int64(5_000), o.Price.Int64())
}

func TestCustody_OfferRejected(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower", "buyer")
	ctx := context.Background()

	_, res := h.activeLoan(t, "GIA-1")
	offer, err := h.svc.PlaceOffer(ctx, ports.OfferRequest{MerchantID: "buyer", LoanID: res.LoanID, Price: big.NewInt(10)})
	require.NoError(t, err)

	_, err = h.svc.AcceptOffer(ctx, "buyer", offer.OfferID)
	assert.True(t, apperror.IsCode(err, apperror.CodeWouldRevert), "only the lender decides")

	_, err = h.svc.RejectOffer(ctx, "lender", offer.OfferID)
	require.NoError(t, err)

	o, err := h.svc.GetOffer(ctx, offer.OfferID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusRejected, o.Status)

	loan, err := h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
}

func TestCustody_ReturnAsset(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender", "borrower")
	ctx := context.Background()

	asset, res := h.activeLoan(t, "GIA-1")

	_, err := h.svc.ReturnAsset(ctx, "borrower", res.LoanID)
	require.NoError(t, err)

	loan, err := h.svc.GetLoan(ctx, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, loan.Status)

	a, err := h.svc.GetAsset(ctx, asset.TokenID)
	require.NoError(t, err)
	assert.False(t, a.OnLoan)
	assert.Equal(t, h.wallets["lender"], a.Owner)
}

func TestCustody_ReadsNotFound(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	ctx := context.Background()

	_, err := h.svc.GetLoan(ctx, big.NewInt(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeLoanNotFound))
	_, err = h.svc.GetOffer(ctx, big.NewInt(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeOfferNotFound))
	_, err = h.svc.GetAsset(ctx, big.NewInt(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeAssetNotFound))

	_, err = h.svc.GetLoan(ctx, big.NewInt(0))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	_, err = h.svc.GetOffer(ctx, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCustody_InputValidation(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender")
	ctx := context.Background()
	sends := h.chain.Calls("SendTransaction")

	_, err := h.svc.RegisterAsset(ctx, ports.RegisterAssetRequest{MerchantID: "lender", CertificateID: " "})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	valid := ports.LoanRequest{
		MerchantID: "lender",
		AssetID:    big.NewInt(1),
		Borrower:   common.HexToAddress("0x02"),
		Duration:   30,
		Price:      big.NewInt(1),
	}
	for name, mutate := range map[string]func(r *ports.LoanRequest){
		"no asset":       func(r *ports.LoanRequest) { r.AssetID = nil },
		"zero duration":  func(r *ports.LoanRequest) { r.Duration = 0 },
		"no borrower":    func(r *ports.LoanRequest) { r.Borrower = common.Address{} },
		"negative price": func(r *ports.LoanRequest) { r.Price = big.NewInt(-1) },
	} {
		req := valid
		mutate(&req)
		_, err := h.svc.RequestLoan(ctx, req)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation), name)
	}

	_, err = h.svc.PlaceOffer(ctx, ports.OfferRequest{MerchantID: "lender", LoanID: big.NewInt(1), Price: big.NewInt(0)})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	assert.Equal(t, sends, h.chain.Calls("SendTransaction"))
}

func TestCustody_EnableCustody(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	ctx := context.Background()

	info, err := h.svc.EnableCustody(ctx, "lender")
	require.NoError(t, err)

	m, err := h.directory.Get(ctx, "lender")
	require.NoError(t, err)
	assert.True(t, m.WalletEnabled)
	assert.Equal(t, info.Address.Hex(), m.WalletAddress)

	_, err = h.svc.EnableCustody(ctx, "lender")
	assert.True(t, apperror.IsCode(err, apperror.CodeWalletExists))

	_, err = h.svc.EnableCustody(ctx, "nobody")
	assert.True(t, apperror.IsCode(err, apperror.CodeMerchantNotFound))

	_, err = h.svc.EnableCustody(ctx, "frozen")
	assert.True(t, apperror.IsCode(err, apperror.CodeMerchantSuspended))
	_, err = h.vault.GetWallet(ctx, "frozen")
	assert.True(t, apperror.IsCode(err, apperror.CodeWalletNotFound))
}

func TestCustody_GetWalletAndBalance(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	h.enable(t, "lender")
	ctx := context.Background()

	h.chain.SetBalance(h.wallets["lender"], big.NewInt(42))

	w, err := h.svc.GetWallet(ctx, "lender")
	require.NoError(t, err)
	assert.Equal(t, h.wallets["lender"], w.Address)

	bal, err := h.svc.GetBalance(ctx, "lender")
	require.NoError(t, err)
	assert.Equal(t, h.wallets["lender"], bal.Address)
	assert.Equal(t, int64(42), bal.Wei.Int64())

	_, err = h.svc.GetBalance(ctx, "ghost")
	assert.True(t, apperror.IsCode(err, apperror.CodeWalletNotFound))
}

func TestCustody_IssueAndVerifyApproval(t *testing.T) {
	h := newCustodyHarness(t, ledger.Config{})
	ctx := context.Background()

	res, err := h.svc.IssueApproval(ctx, domain.ApprovalOfferAccept, json.RawMessage(`{"offerId":"3","price":"100"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, res.QRCode)

	v, err := h.svc.VerifyApproval(ctx, res.Encoded, res.Token.Hash)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.JSONEq(t, `{"offerId":"3","price":"100"}`, string(v.Payload))

	v, err = h.svc.VerifyApproval(ctx, res.Encoded, "0x00")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, domain.VerifyHashMismatch, v.Reason)

	// Verification alone never spends the token.
	v, err = h.svc.VerifyApproval(ctx, res.Encoded, res.Token.Hash)
	require.NoError(t, err)
	assert.True(t, v.Valid)

	_, err = h.svc.IssueApproval(ctx, domain.ApprovalOfferAccept, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	_, err = h.svc.VerifyApproval(ctx, "", res.Token.Hash)
	assert.True(t, apperror.IsCode(err, apperror.CodeMalformedToken))
}

type custodyMocks struct {
	vault     *mocks.MockKeyVault
	signer    *mocks.MockTransactionSigner
	gateway   *mocks.MockLedgerGateway
	consumed  *mocks.MockConsumedTokenStore
	directory *mocks.MockMerchantDirectory
	events    *mocks.MockEventPublisher
	approvals *ApprovalService
	market    *contract.Marketplace
	svc       *CustodyService
}

func newCustodyMocks(t *testing.T) *custodyMocks {
	t.Helper()
	ctrl := gomock.NewController(t)
	market, err := contract.NewMarketplace(testMarket)
	require.NoError(t, err)
	approvals, _ := newTestApprovals(t)

	m := &custodyMocks{
		vault:     mocks.NewMockKeyVault(ctrl),
		signer:    mocks.NewMockTransactionSigner(ctrl),
		gateway:   mocks.NewMockLedgerGateway(ctrl),
		consumed:  mocks.NewMockConsumedTokenStore(ctrl),
		directory: mocks.NewMockMerchantDirectory(ctrl),
		events:    mocks.NewMockEventPublisher(ctrl),
		approvals: approvals,
		market:    market,
	}
	m.svc = NewCustodyService(m.vault, m.signer, m.gateway, approvals, m.consumed, market, m.directory, m.events,
		CustodyConfig{GasHeadroomPercent: 10}, zerolog.Nop())
	return m
}

// pendingLoan stubs the getLoan view with a pending loan committed to a fresh token.
func (m *custodyMocks) pendingLoan(t *testing.T, borrower common.Address) (string, *domain.ApprovalToken) {
	t.Helper()
	token, err := m.approvals.Issue(domain.ApprovalLoanRequest, domain.LoanRequestPayload{
		AssetID:  "1",
		Lender:   common.HexToAddress("0x01").Hex(),
		Borrower: borrower.Hex(),
		Duration: 30,
		Terms:    domain.LoanTerms{Price: "100"},
	})
	require.NoError(t, err)
	encoded, err := m.approvals.Encode(token)
	require.NoError(t, err)

	out, err := m.market.ABI().Methods["getLoan"].Outputs.Pack(
		big.NewInt(1), common.HexToAddress("0x01"), borrower, big.NewInt(30), big.NewInt(0), uint8(0),
		[32]byte(common.HexToHash(token.Hash)),
	)
	require.NoError(t, err)
	m.gateway.EXPECT().Call(gomock.Any(), testMarket, gomock.Any()).Return(out, nil)
	return encoded, token
}

func TestCustodyMocks_WouldRevertNeverReachesSigner(t *testing.T) {
	m := newCustodyMocks(t)
	wallet := &domain.WalletInfo{MerchantID: "lender", Address: common.HexToAddress("0x01")}

	m.vault.EXPECT().GetWallet(gomock.Any(), "lender").Return(wallet, nil)
	m.gateway.EXPECT().EstimateGas(gomock.Any(), wallet.Address, gomock.Any()).Return(uint64(0), apperror.ErrWouldRevert("loan not pending"))
	m.signer.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.gateway.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	_, err := m.svc.CancelLoan(context.Background(), "lender", big.NewInt(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeWouldRevert))
}

func TestCustodyMocks_GasHeadroom(t *testing.T) {
	m := newCustodyMocks(t)
	wallet := &domain.WalletInfo{MerchantID: "lender", Address: common.HexToAddress("0x01")}
	env := &domain.SignedEnvelope{Hash: common.HexToHash("0xaa")}

	m.vault.EXPECT().GetWallet(gomock.Any(), "lender").Return(wallet, nil)
	m.gateway.EXPECT().EstimateGas(gomock.Any(), wallet.Address, gomock.Any()).Return(uint64(100_000), nil)
	m.signer.EXPECT().Sign(gomock.Any(), "lender", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, call domain.ContractCall) (*domain.SignedEnvelope, error) {
			assert.Equal(t, uint64(110_000), call.GasLimit)
			assert.Equal(t, testMarket, call.To)
			return env, nil
		})
	m.gateway.EXPECT().Submit(gomock.Any(), env).Return(nil, apperror.ErrExecutionReverted("0xaa"))
	m.signer.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)

	_, err := m.svc.CancelLoan(context.Background(), "lender", big.NewInt(1))
	assert.True(t, apperror.IsCode(err, apperror.CodeExecutionReverted))
}

func TestCustodyMocks_ApproveLoan_MarkerPolicy(t *testing.T) {
	borrower := &domain.WalletInfo{MerchantID: "borrower", Address: common.HexToAddress("0x02")}
	env := &domain.SignedEnvelope{Hash: common.HexToHash("0xbb")}

	tests := []struct {
		name        string
		setup       func(m *custodyMocks)
		wantCode    string
		wantRelease bool
	}{
		{
			name: "estimate fails",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).
					Return(uint64(0), apperror.ErrLedgerUnavailable(errors.New("dial")))
			},
			wantCode:    apperror.CodeLedgerUnavailable,
			wantRelease: true,
		},
		{
			name: "signing fails",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).Return(uint64(90_000), nil)
				m.signer.EXPECT().Sign(gomock.Any(), "borrower", gomock.Any()).Return(nil, apperror.ErrCorruptedKeyStore(errors.New("tag")))
			},
			wantCode:    apperror.CodeCorruptedKeyStore,
			wantRelease: true,
		},
		{
			name: "node rejects",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).Return(uint64(90_000), nil)
				m.signer.EXPECT().Sign(gomock.Any(), "borrower", gomock.Any()).Return(env, nil)
				m.gateway.EXPECT().Submit(gomock.Any(), env).Return(nil, apperror.ErrSubmissionRejected(errors.New("underpriced")))
				m.signer.EXPECT().Release(gomock.Any(), env).Return(nil)
			},
			wantCode:    apperror.CodeSubmissionRejected,
			wantRelease: true,
		},
		{
			name: "send timed out",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).Return(uint64(90_000), nil)
				m.signer.EXPECT().Sign(gomock.Any(), "borrower", gomock.Any()).Return(env, nil)
				m.gateway.EXPECT().Submit(gomock.Any(), env).
					Return(nil, apperror.ErrLedgerTimeout(context.DeadlineExceeded).WithMeta("tx_hash", env.Hash.Hex()))
				m.signer.EXPECT().Release(gomock.Any(), env).Return(nil)
			},
			wantCode: apperror.CodeLedgerTimeout,
		},
		{
			name: "mined but reverted",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).Return(uint64(90_000), nil)
				m.signer.EXPECT().Sign(gomock.Any(), "borrower", gomock.Any()).Return(env, nil)
				m.gateway.EXPECT().Submit(gomock.Any(), env).Return(nil, apperror.ErrExecutionReverted(env.Hash.Hex()))
			},
			wantCode: apperror.CodeExecutionReverted,
		},
		{
			name: "confirmation timeout",
			setup: func(m *custodyMocks) {
				m.gateway.EXPECT().EstimateGas(gomock.Any(), borrower.Address, gomock.Any()).Return(uint64(90_000), nil)
				m.signer.EXPECT().Sign(gomock.Any(), "borrower", gomock.Any()).Return(env, nil)
				m.gateway.EXPECT().Submit(gomock.Any(), env).Return(nil, apperror.ErrConfirmationTimeout(env.Hash.Hex(), context.DeadlineExceeded))
			},
			wantCode: apperror.CodeConfirmationTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCustodyMocks(t)
			encoded, token := m.pendingLoan(t, borrower.Address)

			m.vault.EXPECT().GetWallet(gomock.Any(), "borrower").Return(borrower, nil)
			m.consumed.EXPECT().MarkConsumed(gomock.Any(), token.ID, 24*time.Hour).Return(true, nil)
			tt.setup(m)
			if tt.wantRelease {
				m.consumed.EXPECT().Release(gomock.Any(), token.ID).Return(nil)
			} else {
				m.consumed.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)
			}

			_, err := m.svc.ApproveLoan(context.Background(), ports.ApproveLoanRequest{
				MerchantID: "borrower",
				LoanID:     big.NewInt(1),
				Token:      encoded,
			})
			assert.True(t, apperror.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestCustodyMocks_ApproveLoan_MarkerStoreDown(t *testing.T) {
	m := newCustodyMocks(t)
	borrower := &domain.WalletInfo{MerchantID: "borrower", Address: common.HexToAddress("0x02")}
	encoded, _ := m.pendingLoan(t, borrower.Address)

	m.vault.EXPECT().GetWallet(gomock.Any(), "borrower").Return(borrower, nil)
	m.consumed.EXPECT().MarkConsumed(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis: connection refused"))
	m.gateway.EXPECT().EstimateGas(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := m.svc.ApproveLoan(context.Background(), ports.ApproveLoanRequest{MerchantID: "borrower", LoanID: big.NewInt(1), Token: encoded})
	assert.True(t, apperror.IsCode(err, apperror.CodeInternal))
}

func TestCustodyMocks_EnableCustody_SideEffectsDoNotFail(t *testing.T) {
	m := newCustodyMocks(t)
	info := &domain.WalletInfo{MerchantID: "m-1", Address: common.HexToAddress("0x03")}

	m.directory.EXPECT().Get(gomock.Any(), "m-1").Return(&domain.Merchant{ID: "m-1", Status: domain.MerchantStatusActive}, nil)
	m.vault.EXPECT().CreateWallet(gomock.Any(), "m-1").Return(info, nil)
	m.directory.EXPECT().SetWallet(gomock.Any(), "m-1", info.Address, true).Return(errors.New("mongo: timeout"))
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev *domain.CustodyEvent) error {
		assert.Equal(t, domain.EventCustodyEnabled, ev.Type)
		assert.Equal(t, info.Address.Hex(), ev.Fields["address"])
		assert.Empty(t, ev.TxHash)
		return errors.New("nats: no servers")
	})

	got, err := m.svc.EnableCustody(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, info.Address, got.Address)
}

func TestCustodyMocks_EnableCustody_DirectoryError(t *testing.T) {
	m := newCustodyMocks(t)
	m.directory.EXPECT().Get(gomock.Any(), "m-1").Return(nil, errors.New("mongo: timeout"))
	m.vault.EXPECT().CreateWallet(gomock.Any(), gomock.Any()).Times(0)

	_, err := m.svc.EnableCustody(context.Background(), "m-1")
	assert.True(t, apperror.IsCode(err, apperror.CodeInternal))
}
