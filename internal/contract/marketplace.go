// Package contract encodes calls to and decodes reads from the diamond
// marketplace contract.
package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"diamond-custody-gateway/internal/core/domain"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnexpectedOutput is returned when a view result does not match the ABI.
var ErrUnexpectedOutput = errors.New("unexpected contract output")

// Marketplace builds contract calls for one deployed marketplace.
type Marketplace struct {
	abi     abi.ABI
	address common.Address
}

// NewMarketplace parses the marketplace ABI bound to address.
func NewMarketplace(address common.Address) (*Marketplace, error) {
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parsing marketplace abi: %w", err)
	}
	return &Marketplace{abi: parsed, address: address}, nil
}

// Address returns the contract address.
func (m *Marketplace) Address() common.Address {
	return m.address
}

// ABI exposes the parsed interface.
func (m *Marketplace) ABI() abi.ABI {
	return m.abi
}

func (m *Marketplace) call(method string, args ...interface{}) (domain.ContractCall, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return domain.ContractCall{}, fmt.Errorf("packing %s: %w", method, err)
	}
	return domain.ContractCall{To: m.address, Data: data}, nil
}

func (m *Marketplace) RegisterDiamond(certificateID string, metadataHash common.Hash) (domain.ContractCall, error) {
	return m.call("registerDiamond", certificateID, metadataHash)
}

func (m *Marketplace) CreateLoanRequest(tokenID *big.Int, borrower common.Address, duration uint64, price *big.Int, approvalHash common.Hash) (domain.ContractCall, error) {
	return m.call("createLoanRequest", tokenID, borrower, new(big.Int).SetUint64(duration), price, approvalHash)
}

func (m *Marketplace) ApproveLoan(loanID *big.Int) (domain.ContractCall, error) {
	return m.call("approveLoan", loanID)
}

func (m *Marketplace) CancelLoan(loanID *big.Int) (domain.ContractCall, error) {
	return m.call("cancelLoan", loanID)
}

func (m *Marketplace) ReturnDiamond(loanID *big.Int) (domain.ContractCall, error) {
	return m.call("returnDiamond", loanID)
}

func (m *Marketplace) PlaceOffer(loanID, price *big.Int) (domain.ContractCall, error) {
	return m.call("placeOffer", loanID, price)
}

func (m *Marketplace) AcceptOffer(offerID *big.Int) (domain.ContractCall, error) {
	return m.call("acceptOffer", offerID)
}

func (m *Marketplace) RejectOffer(offerID *big.Int) (domain.ContractCall, error) {
	return m.call("rejectOffer", offerID)
}

// ---- Views ----

// GetLoanData returns calldata for the getLoan view.
func (m *Marketplace) GetLoanData(loanID *big.Int) ([]byte, error) {
	return m.abi.Pack("getLoan", loanID)
}

// DecodeLoan unpacks a getLoan result. A zero lender means the loan does not
// exist and yields (nil, nil).
func (m *Marketplace) DecodeLoan(loanID *big.Int, out []byte) (*domain.Loan, error) {
	vals, err := m.abi.Unpack("getLoan", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking getLoan: %w", err)
	}
	if len(vals) != 7 {
		return nil, ErrUnexpectedOutput
	}

	tokenID, ok1 := vals[0].(*big.Int)
	lender, ok2 := vals[1].(common.Address)
	borrower, ok3 := vals[2].(common.Address)
	duration, ok4 := vals[3].(*big.Int)
	startTime, ok5 := vals[4].(*big.Int)
	status, ok6 := vals[5].(uint8)
	approvalHash, ok7 := vals[6].([32]byte)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return nil, ErrUnexpectedOutput
	}
	if lender == (common.Address{}) {
		return nil, nil
	}

	return &domain.Loan{
		ID:           new(big.Int).Set(loanID),
		AssetID:      tokenID,
		Lender:       lender,
		Borrower:     borrower,
		Duration:     duration.Uint64(),
		StartTime:    startTime.Uint64(),
		Status:       domain.LoanStatusFromIndex(status),
		ApprovalHash: common.Hash(approvalHash),
	}, nil
}

// GetOfferData returns calldata for the getOffer view.
func (m *Marketplace) GetOfferData(offerID *big.Int) ([]byte, error) {
	return m.abi.Pack("getOffer", offerID)
}

// DecodeOffer unpacks a getOffer result. A zero buyer yields (nil, nil).
func (m *Marketplace) DecodeOffer(offerID *big.Int, out []byte) (*domain.Offer, error) {
	vals, err := m.abi.Unpack("getOffer", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking getOffer: %w", err)
	}
	if len(vals) != 5 {
		return nil, ErrUnexpectedOutput
	}

	loanID, ok1 := vals[0].(*big.Int)
	buyer, ok2 := vals[1].(common.Address)
	price, ok3 := vals[2].(*big.Int)
	expiresAt, ok4 := vals[3].(*big.Int)
	status, ok5 := vals[4].(uint8)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return nil, ErrUnexpectedOutput
	}
	if buyer == (common.Address{}) {
		return nil, nil
	}

	return &domain.Offer{
		ID:        new(big.Int).Set(offerID),
		LoanID:    loanID,
		Buyer:     buyer,
		Price:     price,
		ExpiresAt: expiresAt.Uint64(),
		Status:    domain.OfferStatusFromIndex(status),
	}, nil
}

// GetDiamondData returns calldata for the getDiamond view.
func (m *Marketplace) GetDiamondData(tokenID *big.Int) ([]byte, error) {
	return m.abi.Pack("getDiamond", tokenID)
}

// DecodeAsset unpacks a getDiamond result. A zero owner yields (nil, nil).
func (m *Marketplace) DecodeAsset(tokenID *big.Int, out []byte) (*domain.Asset, error) {
	vals, err := m.abi.Unpack("getDiamond", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking getDiamond: %w", err)
	}
	if len(vals) != 4 {
		return nil, ErrUnexpectedOutput
	}

	certificateID, ok1 := vals[0].(string)
	owner, ok2 := vals[1].(common.Address)
	metadataHash, ok3 := vals[2].([32]byte)
	onLoan, ok4 := vals[3].(bool)
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil, ErrUnexpectedOutput
	}
	if owner == (common.Address{}) {
		return nil, nil
	}

	return &domain.Asset{
		TokenID:       new(big.Int).Set(tokenID),
		CertificateID: certificateID,
		Owner:         owner,
		MetadataHash:  common.Hash(metadataHash),
		OnLoan:        onLoan,
	}, nil
}
