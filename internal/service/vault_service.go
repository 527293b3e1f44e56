package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// VaultService implements ports.KeyVault. Private keys exist in plaintext
// only inside WithSigningKey and during wallet creation.
type VaultService struct {
	repo   ports.WalletRepository
	cipher *KeyCipher
	locks  *keyedMutex
	log    zerolog.Logger
	now    func() time.Time
}

// NewVaultService creates a new vault over repo.
func NewVaultService(repo ports.WalletRepository, cipher *KeyCipher, log zerolog.Logger) *VaultService {
	return &VaultService{
		repo:   repo,
		cipher: cipher,
		locks:  newKeyedMutex(),
		log:    log,
		now:    time.Now,
	}
}

// CreateWallet generates and stores a new keypair for merchantID.
func (s *VaultService) CreateWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, apperror.Validation("merchant id is required")
	}

	unlock, err := s.locks.Lock(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer unlock()

	if err := s.ensureAbsent(ctx, merchantID); err != nil {
		return nil, err
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating key: %w", err))
	}
	defer wipeKey(key)

	info, err := s.store(ctx, merchantID, key)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("merchant_id", merchantID).
		Str("address", info.Address.Hex()).
		Msg("wallet created")
	return info, nil
}

// ImportWallet stores an existing key. It never overwrites an existing wallet.
func (s *VaultService) ImportWallet(ctx context.Context, merchantID string, privateKeyHex string) (*domain.WalletInfo, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, apperror.Validation("merchant id is required")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, apperror.Validation("invalid private key")
	}
	defer wipeKey(key)

	unlock, err := s.locks.Lock(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer unlock()

	if err := s.ensureAbsent(ctx, merchantID); err != nil {
		return nil, err
	}

	info, err := s.store(ctx, merchantID, key)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("merchant_id", merchantID).
		Str("address", info.Address.Hex()).
		Msg("wallet imported")
	return info, nil
}

// GetWallet returns the public wallet data.
func (s *VaultService) GetWallet(ctx context.Context, merchantID string) (*domain.WalletInfo, error) {
	w, err := s.load(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	info := w.Info()
	return &info, nil
}

// ListWallets returns every wallet without key material.
func (s *VaultService) ListWallets(ctx context.Context) ([]domain.WalletInfo, error) {
	wallets, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	out := make([]domain.WalletInfo, 0, len(wallets))
	for i := range wallets {
		out = append(out, wallets[i].Info())
	}
	return out, nil
}

// WithSigningKey decrypts the merchant's key, runs fn with it and wipes it.
func (s *VaultService) WithSigningKey(ctx context.Context, merchantID string, fn func(address common.Address, key *ecdsa.PrivateKey) error) error {
	w, err := s.load(ctx, merchantID)
	if err != nil {
		return err
	}

	key, err := s.decrypt(s.cipher, w)
	if err != nil {
		s.log.Error().Str("merchant_id", merchantID).Msg("key store entry failed authentication")
		return apperror.ErrCorruptedKeyStore(err)
	}
	defer wipeKey(key)

	return fn(w.Address, key)
}

// Rekey re-encrypts every wallet from the current cipher to next.
// It returns the number of wallets rewritten. Addresses never change.
func (s *VaultService) Rekey(ctx context.Context, next *KeyCipher) (int, error) {
	wallets, err := s.repo.List(ctx)
	if err != nil {
		return 0, apperror.InternalError(err)
	}

	count := 0
	for i := range wallets {
		if err := s.rekeyOne(ctx, &wallets[i], next); err != nil {
			return count, err
		}
		count++
	}

	s.log.Info().Int("wallets", count).Msg("vault re-encrypted")
	return count, nil
}

func (s *VaultService) rekeyOne(ctx context.Context, w *domain.Wallet, next *KeyCipher) error {
	unlock, err := s.locks.Lock(ctx, w.MerchantID)
	if err != nil {
		return apperror.InternalError(err)
	}
	defer unlock()

	key, err := s.decrypt(s.cipher, w)
	if err != nil {
		return apperror.ErrCorruptedKeyStore(fmt.Errorf("merchant %s: %w", w.MerchantID, err))
	}
	defer wipeKey(key)

	raw := crypto.FromECDSA(key)
	defer zeroBytes(raw)

	ct, iv, tag, err := next.Seal(raw, keyAAD(w.MerchantID, w.Address))
	if err != nil {
		return apperror.InternalError(err)
	}
	w.EncryptedKey, w.IV, w.AuthTag = ct, iv, tag

	if err := s.repo.UpdateKeyBlob(ctx, w); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *VaultService) ensureAbsent(ctx context.Context, merchantID string) error {
	existing, err := s.repo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return apperror.InternalError(err)
	}
	if existing != nil {
		return apperror.ErrWalletExists()
	}
	return nil
}

func (s *VaultService) load(ctx context.Context, merchantID string) (*domain.Wallet, error) {
	w, err := s.repo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if w == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return w, nil
}

func (s *VaultService) store(ctx context.Context, merchantID string, key *ecdsa.PrivateKey) (*domain.WalletInfo, error) {
	address := crypto.PubkeyToAddress(key.PublicKey)

	raw := crypto.FromECDSA(key)
	defer zeroBytes(raw)

	ct, iv, tag, err := s.cipher.Seal(raw, keyAAD(merchantID, address))
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	w := &domain.Wallet{
		MerchantID:   merchantID,
		Address:      address,
		EncryptedKey: ct,
		IV:           iv,
		AuthTag:      tag,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, storageError(err)
	}

	info := w.Info()
	return &info, nil
}

// decrypt opens the blob and checks the key still derives the stored address.
func (s *VaultService) decrypt(c *KeyCipher, w *domain.Wallet) (*ecdsa.PrivateKey, error) {
	raw, err := c.Open(w.EncryptedKey, w.IV, w.AuthTag, keyAAD(w.MerchantID, w.Address))
	if err != nil {
		return nil, err
	}
	defer zeroBytes(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing key: %w", err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != w.Address {
		wipeKey(key)
		return nil, errors.New("decrypted key does not match stored address")
	}
	return key, nil
}

// keyAAD binds a blob to its owner so blobs cannot be swapped between rows.
func keyAAD(merchantID string, address common.Address) []byte {
	return []byte(merchantID + ":" + strings.ToLower(address.Hex()))
}

func storageError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.InternalError(err)
}

func wipeKey(key *ecdsa.PrivateKey) {
	if key == nil || key.D == nil {
		return
	}
	words := key.D.Bits()
	for i := range words {
		words[i] = 0
	}
	key.D.SetInt64(0)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
