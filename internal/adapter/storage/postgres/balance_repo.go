package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// InitializeAll creates a zero balance for the address in every currency.
// This MUST be called within a transaction.
func (r *BalanceRepo) InitializeAll(ctx context.Context, tx pgx.Tx, address string, at time.Time) error {
	query := `INSERT INTO balances (address, currency_id, amount, updated_at)
		SELECT $1, id, 0, $2 FROM currencies
		ON CONFLICT (address, currency_id) DO NOTHING`

	if _, err := tx.Exec(ctx, query, address, at); err != nil {
		return fmt.Errorf("initialize balances: %w", err)
	}
	return nil
}

// ListByAddress returns the address's balances ordered by currency code.
func (r *BalanceRepo) ListByAddress(ctx context.Context, address string) ([]domain.Balance, error) {
	query := `SELECT b.address, b.currency_id, c.code, c.name, b.amount, b.updated_at
		FROM balances b JOIN currencies c ON c.id = b.currency_id
		WHERE b.address = $1
		ORDER BY c.code`

	rows, err := r.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.Address, &b.CurrencyID, &b.CurrencyCode, &b.CurrencyName, &b.Amount, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return balances, nil
}

// GetForUpdate fetches one balance with pessimistic locking.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, key domain.BalanceKey) (*domain.Balance, error) {
	query := `SELECT b.address, b.currency_id, c.code, c.name, b.amount, b.updated_at
		FROM balances b JOIN currencies c ON c.id = b.currency_id
		WHERE b.address = $1 AND b.currency_id = $2
		FOR UPDATE OF b`

	var b domain.Balance
	err := tx.QueryRow(ctx, query, key.Address, key.CurrencyID).Scan(
		&b.Address, &b.CurrencyID, &b.CurrencyCode, &b.CurrencyName, &b.Amount, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// ApplyDelta adds delta to the balance in a single conditional statement.
// The row only matches when the result stays non-negative; on no match a
// second query tells a missing row apart from an overdraft.
// This MUST be called within a transaction.
func (r *BalanceRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, key domain.BalanceKey, delta decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	query := `UPDATE balances SET amount = amount + $1, updated_at = $2
		WHERE address = $3 AND currency_id = $4 AND amount + $1 >= 0
		RETURNING amount`

	var amount decimal.Decimal
	err := tx.QueryRow(ctx, query, delta, asOf, key.Address, key.CurrencyID).Scan(&amount)
	if err == nil {
		return amount, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("apply balance delta: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM balances WHERE address = $1 AND currency_id = $2)`,
		key.Address, key.CurrencyID,
	).Scan(&exists)
	if err != nil {
		return decimal.Zero, fmt.Errorf("check balance row: %w", err)
	}
	if !exists {
		return decimal.Zero, domain.ErrBalanceNotFound
	}
	return decimal.Zero, domain.ErrBalanceWouldGoNegative
}
