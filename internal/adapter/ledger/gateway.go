package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// Config tunes the gateway's timing.
type Config struct {
	CallTimeout          time.Duration // per node call
	ReceiptPollInterval  time.Duration
	ReceiptTimeout       time.Duration
	ReadRetries          uint64
	RetryInitialInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.ReceiptPollInterval <= 0 {
		c.ReceiptPollInterval = time.Second
	}
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = 2 * time.Minute
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 200 * time.Millisecond
	}
	return c
}

// Gateway implements ports.LedgerGateway over a JSON-RPC client.
type Gateway struct {
	client  Client
	cfg     Config
	metrics *Metrics
	log     zerolog.Logger

	mu      sync.Mutex
	chainID *big.Int
}

// NewGateway creates a new gateway. metrics may be nil.
func NewGateway(client Client, cfg Config, metrics *Metrics, log zerolog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		log:     log,
	}
}

// ChainID returns the node's chain id. The first answer is cached.
func (g *Gateway) ChainID(ctx context.Context) (*big.Int, error) {
	g.mu.Lock()
	cached := g.chainID
	g.mu.Unlock()
	if cached != nil {
		return new(big.Int).Set(cached), nil
	}

	var id *big.Int
	err := g.read(ctx, "chain_id", func(ctx context.Context) (err error) {
		id, err = g.client.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.chainID = id
	g.mu.Unlock()
	return new(big.Int).Set(id), nil
}

func (g *Gateway) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	var nonce uint64
	err := g.read(ctx, "pending_nonce", func(ctx context.Context) (err error) {
		nonce, err = g.client.PendingNonceAt(ctx, address)
		return err
	})
	return nonce, err
}

func (g *Gateway) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := g.read(ctx, "gas_price", func(ctx context.Context) (err error) {
		price, err = g.client.SuggestGasPrice(ctx)
		return err
	})
	return price, err
}

func (g *Gateway) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	var balance *big.Int
	err := g.read(ctx, "balance", func(ctx context.Context) (err error) {
		balance, err = g.client.BalanceAt(ctx, address, nil)
		return err
	})
	return balance, err
}

// EstimateGas dry-runs call from the given sender. A revert comes back as
// LED_001 carrying the contract's reason.
func (g *Gateway) EstimateGas(ctx context.Context, from common.Address, call domain.ContractCall) (uint64, error) {
	to := call.To
	msg := ethereum.CallMsg{
		From:  from,
		To:    &to,
		Data:  call.Data,
		Value: call.Value,
	}

	var gas uint64
	err := g.read(ctx, "estimate_gas", func(ctx context.Context) (err error) {
		gas, err = g.client.EstimateGas(ctx, msg)
		return err
	})
	if err != nil {
		g.log.Debug().Err(err).Str("to", to.Hex()).Msg("gas estimation failed")
		return 0, err
	}
	return gas, nil
}

// Call runs a read-only contract call against the latest block.
func (g *Gateway) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data}

	var out []byte
	err := g.read(ctx, "call", func(ctx context.Context) (err error) {
		out, err = g.client.CallContract(ctx, msg, nil)
		return err
	})
	return out, err
}

// Submit sends env exactly once, then polls for its receipt.
func (g *Gateway) Submit(ctx context.Context, env *domain.SignedEnvelope) (*domain.Receipt, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(env.Raw); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decoding envelope: %w", err))
	}

	start := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	err := classifySend(g.client.SendTransaction(sendCtx, tx))
	cancel()
	g.metrics.observe("send", start, err)
	if err != nil {
		g.log.Warn().Err(err).
			Str("tx_hash", env.Hash.Hex()).
			Uint64("nonce", env.Nonce).
			Msg("transaction submission failed")
		// The node may have accepted the envelope before the failure; the
		// hash lets the caller look for it before retrying.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && apperror.IsUnavailable(appErr) {
			return nil, appErr.WithMeta("tx_hash", env.Hash.Hex())
		}
		return nil, err
	}
	g.metrics.incSubmitted()

	g.log.Info().
		Str("tx_hash", env.Hash.Hex()).
		Str("from", env.From.Hex()).
		Uint64("nonce", env.Nonce).
		Msg("transaction submitted")

	receipt, err := g.waitReceipt(ctx, env.Hash)
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded() {
		g.metrics.incReverted()
		return nil, apperror.ErrExecutionReverted(env.Hash.Hex())
	}
	return receipt, nil
}

func (g *Gateway) waitReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(g.cfg.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		callCtx, callCancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		r, err := g.client.TransactionReceipt(callCtx, hash)
		callCancel()

		switch {
		case err == nil && r != nil:
			g.metrics.observe("receipt", start, nil)
			return toReceipt(r), nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			g.log.Debug().Err(err).Str("tx_hash", hash.Hex()).Msg("receipt poll failed")
		}

		select {
		case <-ctx.Done():
			timeoutErr := apperror.ErrConfirmationTimeout(hash.Hex(), ctx.Err())
			g.metrics.observe("receipt", start, timeoutErr)
			g.log.Warn().Str("tx_hash", hash.Hex()).Msg("transaction not confirmed in time")
			return nil, timeoutErr
		case <-ticker.C:
		}
	}
}

// DecodeEvent returns the first log in receipt whose topic0 is the hash of
// eventSignature, e.g. "LoanApproved(uint256,address)".
func (g *Gateway) DecodeEvent(receipt *domain.Receipt, eventSignature string) (*domain.DecodedEvent, bool) {
	if receipt == nil {
		return nil, false
	}
	topic := crypto.Keccak256Hash([]byte(eventSignature))
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || l.Topics[0] != topic {
			continue
		}
		return &domain.DecodedEvent{
			Signature: eventSignature,
			Topic:     topic,
			Address:   l.Address,
			Indexed:   append([]common.Hash(nil), l.Topics[1:]...),
			Data:      append([]byte(nil), l.Data...),
			LogIndex:  l.Index,
		}, true
	}
	return nil, false
}

// read runs a side-effect-free node call with a per-attempt timeout and
// retries transient failures with exponential backoff.
func (g *Gateway) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.RetryInitialInterval
	b.MaxInterval = 10 * g.cfg.RetryInitialInterval
	b.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		defer cancel()

		err := classify(fn(callCtx))
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !apperror.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		g.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("ledger read failed, retrying")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, g.cfg.ReadRetries), ctx))
	if err != nil && apperror.CodeOf(err) == "" {
		err = classify(err)
	}

	g.metrics.observe(op, start, err)
	return err
}

func toReceipt(r *types.Receipt) *domain.Receipt {
	out := &domain.Receipt{
		TxHash:  r.TxHash,
		GasUsed: r.GasUsed,
		Status:  r.Status,
		Logs:    make([]domain.EventLog, 0, len(r.Logs)),
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	out.BlockHash = r.BlockHash
	for _, l := range r.Logs {
		if l == nil {
			continue
		}
		out.Logs = append(out.Logs, domain.EventLog{
			Address: l.Address,
			Topics:  append([]common.Hash(nil), l.Topics...),
			Data:    append([]byte(nil), l.Data...),
			Index:   l.Index,
		})
	}
	return out
}
