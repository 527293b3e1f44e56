// Package ledgertest provides an in-process ledger node that runs the
// marketplace contract, for tests that exercise the full signing path.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"diamond-custody-gateway/internal/contract"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GasPerTx is the estimate returned for every successful dry run.
const GasPerTx uint64 = 90_000

// SendMode controls how SendTransaction behaves.
type SendMode int

const (
	// SendNormal accepts and mines immediately.
	SendNormal SendMode = iota
	// SendDrop blocks until the caller's context ends and never accepts.
	SendDrop
	// SendAcceptThenHang mines the transaction, then blocks until the caller's
	// context ends, as if the response was lost.
	SendAcceptThenHang
)

type diamond struct {
	certificateID string
	owner         common.Address
	metadataHash  [32]byte
	onLoan        bool
}

type loan struct {
	tokenID      *big.Int
	lender       common.Address
	borrower     common.Address
	duration     *big.Int
	startTime    uint64
	status       uint8
	approvalHash [32]byte
}

type offer struct {
	loanID    *big.Int
	buyer     common.Address
	price     *big.Int
	expiresAt uint64
	status    uint8
}

const (
	loanPending uint8 = iota
	loanActive
	loanSold
	loanReturned
	loanCancelled
)

const (
	offerPending uint8 = iota
	offerAccepted
	offerRejected
	offerExpired
)

// OfferLifetime is how long a placed offer stays open.
const OfferLifetime = 7 * 24 * time.Hour

// Chain is a single-node ledger holding one marketplace deployment.
// It implements ledger.Client.
type Chain struct {
	mu       sync.Mutex
	chainID  *big.Int
	signer   types.Signer
	market   *contract.Marketplace
	abi      abi.ABI
	now      func() time.Time
	block    uint64
	nonces   map[common.Address]uint64
	balances map[common.Address]*big.Int
	receipts map[common.Hash]*types.Receipt

	diamonds map[uint64]*diamond
	certs    map[string]uint64
	loans    map[uint64]*loan
	offers   map[uint64]*offer

	sendMode     SendMode
	failNextSend error
	failReads    int
	holdReceipts bool
	omitEvents   bool
	calls        map[string]int
}

// New deploys a fresh marketplace at market on chain chainID.
func New(chainID int64, market common.Address) (*Chain, error) {
	m, err := contract.NewMarketplace(market)
	if err != nil {
		return nil, err
	}
	id := big.NewInt(chainID)
	return &Chain{
		chainID:  id,
		signer:   types.LatestSignerForChainID(id),
		market:   m,
		abi:      m.ABI(),
		now:      time.Now,
		nonces:   make(map[common.Address]uint64),
		balances: make(map[common.Address]*big.Int),
		receipts: make(map[common.Hash]*types.Receipt),
		diamonds: make(map[uint64]*diamond),
		certs:    make(map[string]uint64),
		loans:    make(map[uint64]*loan),
		offers:   make(map[uint64]*offer),
		calls:    make(map[string]int),
	}, nil
}

// ---- Knobs ----

// SetClock replaces the chain clock used for block timestamps.
func (c *Chain) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Chain) SetSendMode(mode SendMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendMode = mode
}

// FailNextSend makes the next SendTransaction return err without accepting.
func (c *Chain) FailNextSend(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNextSend = err
}

// FailReads makes the next n read calls fail with a network error.
func (c *Chain) FailReads(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failReads = n
}

// HoldReceipts hides mined receipts while on.
func (c *Chain) HoldReceipts(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holdReceipts = on
}

// OmitEvents mines transactions without emitting logs while on.
func (c *Chain) OmitEvents(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.omitEvents = on
}

func (c *Chain) SetBalance(addr common.Address, wei *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = new(big.Int).Set(wei)
}

// Calls returns how many times method was invoked.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Nonce returns the number of transactions accepted from addr.
func (c *Chain) Nonce(addr common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[addr]
}

// ---- ledger.Client ----

var errNetwork = errors.New("dial tcp 127.0.0.1:8545: connect: connection refused")

func (c *Chain) enter(method string) error {
	c.calls[method]++
	if c.failReads > 0 && method != "SendTransaction" {
		c.failReads--
		return errNetwork
	}
	return nil
}

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("ChainID"); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("PendingNonceAt"); err != nil {
		return 0, err
	}
	return c.nonces[account], nil
}

func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("SuggestGasPrice"); err != nil {
		return nil, err
	}
	return big.NewInt(1_000_000_000), nil
}

func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("BalanceAt"); err != nil {
		return nil, err
	}
	if b, ok := c.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (c *Chain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("EstimateGas"); err != nil {
		return 0, err
	}
	if msg.To == nil || *msg.To != c.market.Address() {
		return 21_000, nil
	}
	if _, err := c.execute(msg.From, msg.Data, false); err != nil {
		return 0, err
	}
	return GasPerTx, nil
}

func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("CallContract"); err != nil {
		return nil, err
	}
	if msg.To == nil || *msg.To != c.market.Address() {
		return nil, nil
	}
	return c.view(msg.Data)
}

func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	c.calls["SendTransaction"]++
	mode := c.sendMode

	if err := c.failNextSend; err != nil {
		c.failNextSend = nil
		c.mu.Unlock()
		return err
	}
	if mode == SendDrop {
		c.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}

	err := c.accept(tx)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if mode == SendAcceptThenHang {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter("TransactionReceipt"); err != nil {
		return nil, err
	}
	r, ok := c.receipts[txHash]
	if !ok || c.holdReceipts {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// accept validates and mines tx in its own block. Callers hold c.mu.
func (c *Chain) accept(tx *types.Transaction) error {
	if tx.ChainId().Cmp(c.chainID) != 0 {
		return &RPCError{Code: -32000, Message: "invalid chain id for signer"}
	}
	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return &RPCError{Code: -32000, Message: "invalid sender: " + err.Error()}
	}
	if _, dup := c.receipts[tx.Hash()]; dup {
		return &RPCError{Code: -32000, Message: "already known"}
	}
	switch expected := c.nonces[from]; {
	case tx.Nonce() < expected:
		return &RPCError{Code: -32000, Message: "nonce too low"}
	case tx.Nonce() > expected:
		return &RPCError{Code: -32000, Message: fmt.Sprintf("nonce too high: next nonce %d, tx nonce %d", expected, tx.Nonce())}
	}

	c.nonces[from]++
	c.block++

	status := types.ReceiptStatusSuccessful
	var logs []*types.Log
	if tx.To() != nil && *tx.To() == c.market.Address() {
		if tx.Gas() < GasPerTx {
			status = types.ReceiptStatusFailed
		} else if logs, err = c.execute(from, tx.Data(), true); err != nil {
			status = types.ReceiptStatusFailed
			logs = nil
		}
	}
	if c.omitEvents {
		logs = nil
	}

	blockHash := common.BigToHash(new(big.Int).SetUint64(c.block))
	for i, l := range logs {
		l.TxHash = tx.Hash()
		l.BlockNumber = c.block
		l.BlockHash = blockHash
		l.Index = uint(i)
	}
	c.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		GasUsed:     GasPerTx,
		BlockNumber: new(big.Int).SetUint64(c.block),
		BlockHash:   blockHash,
		Logs:        logs,
	}
	return nil
}
