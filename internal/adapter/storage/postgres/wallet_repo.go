package postgres

import (
	"context"
	"errors"
	"fmt"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// WalletRepo implements ports.WalletRepository. Rows are insert-only apart
// from the key blob, which Rekey rewrites in place.
type WalletRepo struct {
	pool Pool
}

func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a wallet. A second wallet for the same merchant (or the
// same address) fails with WAL_002.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO custody_wallets (merchant_id, address, encrypted_key, iv, auth_tag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		w.MerchantID, w.Address.Hex(), w.EncryptedKey, w.IV, w.AuthTag, w.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrWalletExists()
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (r *WalletRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Wallet, error) {
	query := `SELECT merchant_id, address, encrypted_key, iv, auth_tag, created_at
		FROM custody_wallets WHERE merchant_id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, merchantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by merchant id: %w", err)
	}
	return w, nil
}

func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT merchant_id, address, encrypted_key, iv, auth_tag, created_at
		FROM custody_wallets ORDER BY created_at, merchant_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return out, nil
}

func (r *WalletRepo) UpdateKeyBlob(ctx context.Context, w *domain.Wallet) error {
	query := `UPDATE custody_wallets SET encrypted_key = $1, iv = $2, auth_tag = $3
		WHERE merchant_id = $4 AND address = $5`

	tag, err := r.pool.Exec(ctx, query, w.EncryptedKey, w.IV, w.AuthTag, w.MerchantID, w.Address.Hex())
	if err != nil {
		return fmt.Errorf("update wallet key blob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrWalletNotFound()
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w       domain.Wallet
		address string
	)
	if err := row.Scan(&w.MerchantID, &address, &w.EncryptedKey, &w.IV, &w.AuthTag, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.Address = common.HexToAddress(address)
	return &w, nil
}
