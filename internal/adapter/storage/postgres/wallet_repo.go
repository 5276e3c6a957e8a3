package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const walletColumnList = `address, secret_digest, status, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet. MUST be called within a transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumnList + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		w.Address, w.SecretDigest, string(w.Status), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAddress fetches a wallet regardless of status.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumnList + ` FROM wallets WHERE address = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// List returns every wallet, newest first.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumnList + ` FROM wallets ORDER BY created_at DESC, address`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// UpdateStatus sets the wallet status and returns the updated row,
// or nil if the address is unknown.
func (r *WalletRepo) UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error) {
	query := `UPDATE wallets SET status = $1, updated_at = $2 WHERE address = $3
		RETURNING ` + walletColumnList

	w, err := scanWallet(r.pool.QueryRow(ctx, query, string(status), time.Now().UTC(), address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update wallet status: %w", err)
	}
	return w, nil
}

// ExistsActive reports whether an ACTIVE wallet has the given address.
func (r *WalletRepo) ExistsActive(ctx context.Context, address string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wallets WHERE address = $1 AND status = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, address, string(domain.WalletStatusActive)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallet active: %w", err)
	}
	return exists, nil
}

// GetSecretDigest returns the secret digest of an ACTIVE wallet and holds a
// shared lock on its row until tx ends. This MUST be called within a transaction.
func (r *WalletRepo) GetSecretDigest(ctx context.Context, tx pgx.Tx, address string) (string, error) {
	query := `SELECT secret_digest FROM wallets WHERE address = $1 AND status = $2 FOR SHARE`

	var digest string
	err := tx.QueryRow(ctx, query, address, string(domain.WalletStatusActive)).Scan(&digest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get secret digest: %w", err)
	}
	return digest, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var status string
	if err := row.Scan(&w.Address, &w.SecretDigest, &status, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Status = domain.WalletStatus(status)
	return w, nil
}
