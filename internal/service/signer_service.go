package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

// SignerConfig holds transaction defaults.
type SignerConfig struct {
	ChainID         *big.Int // nil = ask the gateway
	DefaultGasLimit uint64
	DefaultGasPrice *big.Int // nil = node suggestion
}

// SignerService implements ports.TransactionSigner.
type SignerService struct {
	vault   ports.KeyVault
	gateway ports.LedgerGateway
	nonces  ports.NonceTracker
	leases  *keyedMutex
	cfg     SignerConfig
	log     zerolog.Logger
}

// NewSignerService creates a new signer.
func NewSignerService(
	vault ports.KeyVault,
	gateway ports.LedgerGateway,
	nonces ports.NonceTracker,
	cfg SignerConfig,
	log zerolog.Logger,
) *SignerService {
	return &SignerService{
		vault:   vault,
		gateway: gateway,
		nonces:  nonces,
		leases:  newKeyedMutex(),
		cfg:     cfg,
		log:     log,
	}
}

// Sign builds and signs an EIP-155 transaction for call from the merchant's
// wallet. The per-address lease is held from nonce fetch through signing.
func (s *SignerService) Sign(ctx context.Context, merchantID string, call domain.ContractCall) (*domain.SignedEnvelope, error) {
	wallet, err := s.vault.GetWallet(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	from := wallet.Address

	chainID, err := s.chainID(ctx)
	if err != nil {
		return nil, err
	}
	gasPrice, err := s.gasPrice(ctx, call)
	if err != nil {
		return nil, err
	}
	gasLimit := call.GasLimit
	if gasLimit == 0 {
		gasLimit = s.cfg.DefaultGasLimit
	}
	value := new(big.Int)
	if call.Value != nil {
		value.Set(call.Value)
	}

	unlock, err := s.leases.Lock(ctx, strings.ToLower(from.Hex()))
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("waiting for signing lease: %w", err))
	}
	defer unlock()

	fresh, err := s.gateway.PendingNonce(ctx, from)
	if err != nil {
		return nil, err
	}
	nonce, err := s.nonces.Reserve(ctx, from, fresh)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reserving nonce: %w", err))
	}

	to := call.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     call.Data,
	})

	var signed *types.Transaction
	err = s.vault.WithSigningKey(ctx, merchantID, func(addr common.Address, key *ecdsa.PrivateKey) error {
		if addr != from {
			return apperror.ErrCorruptedKeyStore(fmt.Errorf("wallet address changed during signing"))
		}
		var signErr error
		signed, signErr = types.SignTx(tx, types.NewEIP155Signer(chainID), key)
		return signErr
	})
	if err != nil {
		s.rewind(ctx, from, nonce)
		return nil, storageError(err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		s.rewind(ctx, from, nonce)
		return nil, apperror.InternalError(fmt.Errorf("encoding transaction: %w", err))
	}

	env := &domain.SignedEnvelope{
		From:     from,
		To:       to,
		Data:     append([]byte(nil), call.Data...),
		Value:    value,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		Nonce:    nonce,
		ChainID:  chainID,
		Raw:      raw,
		Hash:     signed.Hash(),
	}

	s.log.Debug().
		Str("merchant_id", merchantID).
		Str("address", from.Hex()).
		Uint64("nonce", nonce).
		Str("tx_hash", env.Hash.Hex()).
		Msg("transaction signed")

	return env, nil
}

// Release hands the envelope's nonce back. Only call it when the node is
// known not to hold the envelope.
func (s *SignerService) Release(ctx context.Context, env *domain.SignedEnvelope) error {
	if env == nil {
		return nil
	}
	if err := s.nonces.Rewind(ctx, env.From, env.Nonce); err != nil {
		return apperror.InternalError(fmt.Errorf("rewinding nonce: %w", err))
	}
	s.log.Debug().
		Str("address", env.From.Hex()).
		Uint64("nonce", env.Nonce).
		Msg("nonce released")
	return nil
}

func (s *SignerService) rewind(ctx context.Context, from common.Address, nonce uint64) {
	if err := s.nonces.Rewind(ctx, from, nonce); err != nil {
		s.log.Warn().Err(err).Str("address", from.Hex()).Uint64("nonce", nonce).Msg("failed to rewind nonce")
	}
}

func (s *SignerService) chainID(ctx context.Context) (*big.Int, error) {
	if s.cfg.ChainID != nil && s.cfg.ChainID.Sign() > 0 {
		return new(big.Int).Set(s.cfg.ChainID), nil
	}
	return s.gateway.ChainID(ctx)
}

func (s *SignerService) gasPrice(ctx context.Context, call domain.ContractCall) (*big.Int, error) {
	switch {
	case call.GasPrice != nil:
		return new(big.Int).Set(call.GasPrice), nil
	case s.cfg.DefaultGasPrice != nil && s.cfg.DefaultGasPrice.Sign() > 0:
		return new(big.Int).Set(s.cfg.DefaultGasPrice), nil
	}
	return s.gateway.SuggestGasPrice(ctx)
}
