package ledgertest

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// RPCError is a JSON-RPC error as returned by a node.
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string          { return e.Message }
func (e *RPCError) ErrorCode() int         { return e.Code }
func (e *RPCError) ErrorData() interface{} { return e.Data }

var revertSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// Revert builds the error a node returns for a call reverted with reason.
func Revert(reason string) *RPCError {
	stringType, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringType}}.Pack(reason)
	return &RPCError{
		Code:    3,
		Message: "execution reverted: " + reason,
		Data:    hexutil.Encode(append(append([]byte{}, revertSelector...), packed...)),
	}
}

// execute runs a state-changing marketplace call from sender. With commit
// false it only reports whether the call would succeed. Callers hold c.mu.
func (c *Chain) execute(from common.Address, data []byte, commit bool) ([]*types.Log, error) {
	if len(data) < 4 {
		return nil, Revert("no selector")
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, Revert("unknown selector")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, Revert("bad calldata")
	}

	switch method.Name {
	case "registerDiamond":
		return c.registerDiamond(from, args[0].(string), args[1].([32]byte), commit)
	case "createLoanRequest":
		return c.createLoanRequest(from, args[0].(*big.Int), args[1].(common.Address), args[2].(*big.Int), args[4].([32]byte), commit)
	case "approveLoan":
		return c.approveLoan(from, args[0].(*big.Int), commit)
	case "cancelLoan":
		return c.cancelLoan(from, args[0].(*big.Int), commit)
	case "returnDiamond":
		return c.returnDiamond(from, args[0].(*big.Int), commit)
	case "placeOffer":
		return c.placeOffer(from, args[0].(*big.Int), args[1].(*big.Int), commit)
	case "acceptOffer":
		return c.acceptOffer(from, args[0].(*big.Int), commit)
	case "rejectOffer":
		return c.rejectOffer(from, args[0].(*big.Int), commit)
	}
	return nil, Revert("not a transaction")
}

func (c *Chain) registerDiamond(from common.Address, cert string, meta [32]byte, commit bool) ([]*types.Log, error) {
	if cert == "" {
		return nil, Revert("empty certificate")
	}
	if _, dup := c.certs[cert]; dup {
		return nil, Revert("certificate already registered")
	}
	if !commit {
		return nil, nil
	}
	id := uint64(len(c.diamonds) + 1)
	c.diamonds[id] = &diamond{certificateID: cert, owner: from, metadataHash: meta}
	c.certs[cert] = id
	return c.emit("DiamondRegistered", []common.Hash{u256(id), common.BytesToHash(from.Bytes())}), nil
}

func (c *Chain) createLoanRequest(from common.Address, tokenID *big.Int, borrower common.Address, duration *big.Int, hash [32]byte, commit bool) ([]*types.Log, error) {
	d, ok := c.diamonds[tokenID.Uint64()]
	if !tokenID.IsUint64() || !ok {
		return nil, Revert("diamond does not exist")
	}
	switch {
	case d.owner != from:
		return nil, Revert("not the owner")
	case d.onLoan:
		return nil, Revert("diamond already on loan")
	case borrower == (common.Address{}) || borrower == from:
		return nil, Revert("invalid borrower")
	case duration.Sign() <= 0:
		return nil, Revert("invalid duration")
	}
	if !commit {
		return nil, nil
	}
	id := uint64(len(c.loans) + 1)
	c.loans[id] = &loan{
		tokenID:      new(big.Int).Set(tokenID),
		lender:       from,
		borrower:     borrower,
		duration:     new(big.Int).Set(duration),
		status:       loanPending,
		approvalHash: hash,
	}
	d.onLoan = true
	return c.emit("LoanRequested", []common.Hash{u256(id), common.BigToHash(tokenID), common.BytesToHash(from.Bytes())}, borrower), nil
}

func (c *Chain) approveLoan(from common.Address, loanID *big.Int, commit bool) ([]*types.Log, error) {
	l, err := c.loan(loanID)
	if err != nil {
		return nil, err
	}
	switch {
	case l.status != loanPending:
		return nil, Revert("loan not pending")
	case l.borrower != from:
		return nil, Revert("not the borrower")
	}
	if !commit {
		return nil, nil
	}
	l.status = loanActive
	l.startTime = uint64(c.now().Unix())
	return c.emit("LoanApproved", []common.Hash{common.BigToHash(loanID), common.BytesToHash(from.Bytes())}), nil
}

func (c *Chain) cancelLoan(from common.Address, loanID *big.Int, commit bool) ([]*types.Log, error) {
	l, err := c.loan(loanID)
	if err != nil {
		return nil, err
	}
	switch {
	case l.status != loanPending:
		return nil, Revert("loan not pending")
	case l.lender != from:
		return nil, Revert("not the lender")
	}
	if !commit {
		return nil, nil
	}
	l.status = loanCancelled
	c.diamonds[l.tokenID.Uint64()].onLoan = false
	return c.emit("LoanCancelled", []common.Hash{common.BigToHash(loanID)}), nil
}

func (c *Chain) returnDiamond(from common.Address, loanID *big.Int, commit bool) ([]*types.Log, error) {
	l, err := c.loan(loanID)
	if err != nil {
		return nil, err
	}
	switch {
	case l.status != loanActive:
		return nil, Revert("loan not active")
	case l.borrower != from:
		return nil, Revert("not the borrower")
	}
	if !commit {
		return nil, nil
	}
	l.status = loanReturned
	c.diamonds[l.tokenID.Uint64()].onLoan = false
	return c.emit("DiamondReturned", []common.Hash{common.BigToHash(loanID), common.BigToHash(l.tokenID)}), nil
}

func (c *Chain) placeOffer(from common.Address, loanID, price *big.Int, commit bool) ([]*types.Log, error) {
	l, err := c.loan(loanID)
	if err != nil {
		return nil, err
	}
	switch {
	case l.status != loanActive:
		return nil, Revert("loan not active")
	case l.lender == from:
		return nil, Revert("lender cannot bid")
	case price.Sign() <= 0:
		return nil, Revert("invalid price")
	}
	if !commit {
		return nil, nil
	}
	id := uint64(len(c.offers) + 1)
	c.offers[id] = &offer{
		loanID:    new(big.Int).Set(loanID),
		buyer:     from,
		price:     new(big.Int).Set(price),
		expiresAt: uint64(c.now().Add(OfferLifetime).Unix()),
		status:    offerPending,
	}
	return c.emit("OfferPlaced", []common.Hash{u256(id), common.BigToHash(loanID), common.BytesToHash(from.Bytes())}, price), nil
}

func (c *Chain) acceptOffer(from common.Address, offerID *big.Int, commit bool) ([]*types.Log, error) {
	o, l, err := c.pendingOffer(from, offerID)
	if err != nil {
		return nil, err
	}
	if l.status != loanActive {
		return nil, Revert("loan not active")
	}
	if !commit {
		return nil, nil
	}
	o.status = offerAccepted
	l.status = loanSold
	d := c.diamonds[l.tokenID.Uint64()]
	d.owner = o.buyer
	d.onLoan = false
	return c.emit("OfferAccepted", []common.Hash{common.BigToHash(offerID), common.BigToHash(o.loanID)}), nil
}

func (c *Chain) rejectOffer(from common.Address, offerID *big.Int, commit bool) ([]*types.Log, error) {
	o, _, err := c.pendingOffer(from, offerID)
	if err != nil {
		return nil, err
	}
	if !commit {
		return nil, nil
	}
	o.status = offerRejected
	return c.emit("OfferRejected", []common.Hash{common.BigToHash(offerID), common.BigToHash(o.loanID)}), nil
}

func (c *Chain) loan(id *big.Int) (*loan, error) {
	if !id.IsUint64() {
		return nil, Revert("loan does not exist")
	}
	l, ok := c.loans[id.Uint64()]
	if !ok {
		return nil, Revert("loan does not exist")
	}
	return l, nil
}

func (c *Chain) pendingOffer(from common.Address, id *big.Int) (*offer, *loan, error) {
	if !id.IsUint64() {
		return nil, nil, Revert("offer does not exist")
	}
	o, ok := c.offers[id.Uint64()]
	if !ok {
		return nil, nil, Revert("offer does not exist")
	}
	l := c.loans[o.loanID.Uint64()]
	switch {
	case c.offerStatus(o) != offerPending:
		return nil, nil, Revert("offer not pending")
	case l.lender != from:
		return nil, nil, Revert("not the lender")
	}
	return o, l, nil
}

func (c *Chain) offerStatus(o *offer) uint8 {
	if o.status == offerPending && uint64(c.now().Unix()) > o.expiresAt {
		return offerExpired
	}
	return o.status
}

// view answers the read-only marketplace functions. Absent records come back
// zero-valued, as from contract storage.
func (c *Chain) view(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, Revert("no selector")
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, Revert("unknown selector")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil || len(args) != 1 {
		return nil, Revert("bad calldata")
	}
	id := args[0].(*big.Int).Uint64()
	zero := new(big.Int)

	switch method.Name {
	case "getLoan":
		l, ok := c.loans[id]
		if !ok {
			return method.Outputs.Pack(zero, common.Address{}, common.Address{}, zero, zero, uint8(0), [32]byte{})
		}
		return method.Outputs.Pack(l.tokenID, l.lender, l.borrower, l.duration,
			new(big.Int).SetUint64(l.startTime), l.status, l.approvalHash)
	case "getOffer":
		o, ok := c.offers[id]
		if !ok {
			return method.Outputs.Pack(zero, common.Address{}, zero, zero, uint8(0))
		}
		return method.Outputs.Pack(o.loanID, o.buyer, o.price,
			new(big.Int).SetUint64(o.expiresAt), c.offerStatus(o))
	case "getDiamond":
		d, ok := c.diamonds[id]
		if !ok {
			return method.Outputs.Pack("", common.Address{}, [32]byte{}, false)
		}
		return method.Outputs.Pack(d.certificateID, d.owner, d.metadataHash, d.onLoan)
	}
	return nil, Revert("not a view")
}

// emit builds a marketplace log with the given indexed topics and packed
// non-indexed values.
func (c *Chain) emit(event string, indexed []common.Hash, data ...interface{}) []*types.Log {
	ev := c.abi.Events[event]
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		panic(err)
	}
	return []*types.Log{{
		Address: c.market.Address(),
		Topics:  append([]common.Hash{ev.ID}, indexed...),
		Data:    packed,
	}}
}

func u256(v uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(v))
}

// BlockTime is the chain clock.
func (c *Chain) BlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}
