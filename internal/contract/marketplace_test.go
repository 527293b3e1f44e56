package contract

import (
	"math/big"
	"testing"

	"diamond-custody-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	marketAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	lender     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	borrower   = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func newMarket(t *testing.T) *Marketplace {
	t.Helper()
	m, err := NewMarketplace(marketAddr)
	require.NoError(t, err)
	return m
}

func TestEventSignaturesMatchABI(t *testing.T) {
	m := newMarket(t)

	tests := map[string]string{
		"DiamondRegistered": EventDiamondRegistered,
		"LoanRequested":     EventLoanRequested,
		"LoanApproved":      EventLoanApproved,
		"LoanCancelled":     EventLoanCancelled,
		"DiamondReturned":   EventDiamondReturned,
		"OfferPlaced":       EventOfferPlaced,
		"OfferAccepted":     EventOfferAccepted,
		"OfferRejected":     EventOfferRejected,
	}

	for name, sig := range tests {
		t.Run(name, func(t *testing.T) {
			ev, ok := m.ABI().Events[name]
			require.True(t, ok)
			assert.Equal(t, sig, ev.Sig)
			assert.Equal(t, crypto.Keccak256Hash([]byte(sig)), ev.ID)
		})
	}
}

func TestCallsTargetMarketplace(t *testing.T) {
	m := newMarket(t)
	one := big.NewInt(1)

	tests := []struct {
		name   string
		method string
		build  func() (domain.ContractCall, error)
	}{
		{"register", "registerDiamond", func() (domain.ContractCall, error) {
			return m.RegisterDiamond("GIA-123", common.HexToHash("0xabcd"))
		}},
		{"create loan", "createLoanRequest", func() (domain.ContractCall, error) {
			return m.CreateLoanRequest(one, borrower, 30, big.NewInt(1000), common.HexToHash("0x01"))
		}},
		{"approve", "approveLoan", func() (domain.ContractCall, error) { return m.ApproveLoan(one) }},
		{"cancel", "cancelLoan", func() (domain.ContractCall, error) { return m.CancelLoan(one) }},
		{"return", "returnDiamond", func() (domain.ContractCall, error) { return m.ReturnDiamond(one) }},
		{"place offer", "placeOffer", func() (domain.ContractCall, error) { return m.PlaceOffer(one, big.NewInt(5)) }},
		{"accept offer", "acceptOffer", func() (domain.ContractCall, error) { return m.AcceptOffer(one) }},
		{"reject offer", "rejectOffer", func() (domain.ContractCall, error) { return m.RejectOffer(one) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, marketAddr, call.To)

			parsed := m.ABI()
			method, err := parsed.MethodById(call.Data[:4])
			require.NoError(t, err)
			assert.Equal(t, tt.method, method.Name)
		})
	}
}

func TestCreateLoanRequest_CarriesCommitment(t *testing.T) {
	m := newMarket(t)
	commitment := crypto.Keccak256Hash([]byte("approval"))

	call, err := m.CreateLoanRequest(big.NewInt(7), borrower, 30, big.NewInt(1000), commitment)
	require.NoError(t, err)

	args, err := m.ABI().Methods["createLoanRequest"].Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(7), args[0].(*big.Int).Int64())
	assert.Equal(t, borrower, args[1].(common.Address))
	assert.Equal(t, int64(30), args[2].(*big.Int).Int64())
	assert.Equal(t, [32]byte(commitment), args[4].([32]byte))
}

func TestDecodeLoan(t *testing.T) {
	m := newMarket(t)
	hash := common.HexToHash("0xfeed")

	out, err := m.ABI().Methods["getLoan"].Outputs.Pack(
		big.NewInt(3), lender, borrower, big.NewInt(30), big.NewInt(1700000000), uint8(1), [32]byte(hash),
	)
	require.NoError(t, err)

	loan, err := m.DecodeLoan(big.NewInt(9), out)
	require.NoError(t, err)
	require.NotNil(t, loan)
	assert.Equal(t, int64(9), loan.ID.Int64())
	assert.Equal(t, int64(3), loan.AssetID.Int64())
	assert.Equal(t, lender, loan.Lender)
	assert.Equal(t, borrower, loan.Borrower)
	assert.Equal(t, uint64(30), loan.Duration)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.Equal(t, hash, loan.ApprovalHash)
}

func TestDecodeLoan_UnknownStatusAndMissing(t *testing.T) {
	m := newMarket(t)

	out, err := m.ABI().Methods["getLoan"].Outputs.Pack(
		big.NewInt(3), lender, borrower, big.NewInt(30), big.NewInt(0), uint8(17), [32]byte{},
	)
	require.NoError(t, err)
	loan, err := m.DecodeLoan(big.NewInt(1), out)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusUnknown, loan.Status)

	empty, err := m.ABI().Methods["getLoan"].Outputs.Pack(
		big.NewInt(0), common.Address{}, common.Address{}, big.NewInt(0), big.NewInt(0), uint8(0), [32]byte{},
	)
	require.NoError(t, err)
	loan, err = m.DecodeLoan(big.NewInt(2), empty)
	require.NoError(t, err)
	assert.Nil(t, loan)

	_, err = m.DecodeLoan(big.NewInt(2), []byte{0x01})
	assert.Error(t, err)
}

func TestDecodeOffer(t *testing.T) {
	m := newMarket(t)

	out, err := m.ABI().Methods["getOffer"].Outputs.Pack(
		big.NewInt(4), borrower, big.NewInt(2500), big.NewInt(1700000500), uint8(2),
	)
	require.NoError(t, err)

	offer, err := m.DecodeOffer(big.NewInt(11), out)
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, int64(11), offer.ID.Int64())
	assert.Equal(t, int64(4), offer.LoanID.Int64())
	assert.Equal(t, int64(2500), offer.Price.Int64())
	assert.Equal(t, domain.OfferStatusRejected, offer.Status)
}

func TestDecodeAsset(t *testing.T) {
	m := newMarket(t)
	meta := common.HexToHash("0x1234")

	out, err := m.ABI().Methods["getDiamond"].Outputs.Pack("GIA-777", lender, [32]byte(meta), true)
	require.NoError(t, err)

	asset, err := m.DecodeAsset(big.NewInt(5), out)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "GIA-777", asset.CertificateID)
	assert.Equal(t, lender, asset.Owner)
	assert.Equal(t, meta, asset.MetadataHash)
	assert.True(t, asset.OnLoan)
}
