package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// MovementRepo implements ports.MovementRepository. Movements are append-only.
type MovementRepo struct {
	pool Pool
}

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(pool Pool) *MovementRepo {
	return &MovementRepo{pool: pool}
}

// Create appends a movement. This MUST be called within a transaction.
func (r *MovementRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.Movement) error {
	query := `INSERT INTO movements (
			id, kind, address, counterparty_address, currency_id, counter_currency_id,
			gross, fee, net, credited, fee_rate, rate, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		m.ID, string(m.Kind), m.Address, m.CounterpartyAddress, m.CurrencyID, m.CounterCurrencyID,
		m.Gross, m.Fee, m.Net, m.Credited, m.FeeRate, m.Rate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}
