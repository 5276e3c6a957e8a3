package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository is the wallet registry. Methods accepting pgx.Tx run inside
// the caller's transaction.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error)
	ExistsActive(ctx context.Context, address string) (bool, error)
	// GetSecretDigest returns the digest of an ACTIVE wallet, holding a shared
	// row lock until tx ends. Returns "" when no active wallet matches.
	GetSecretDigest(ctx context.Context, tx pgx.Tx, address string) (string, error)
}

// CurrencyRepository reads the seeded currency reference set.
type CurrencyRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// BalanceRepository is the balance store.
type BalanceRepository interface {
	// InitializeAll creates a zero balance for every known currency.
	InitializeAll(ctx context.Context, tx pgx.Tx, address string, at time.Time) error
	ListByAddress(ctx context.Context, address string) ([]domain.Balance, error)
	// GetForUpdate row-locks the balance until tx ends. Returns nil when the row is missing.
	GetForUpdate(ctx context.Context, tx pgx.Tx, key domain.BalanceKey) (*domain.Balance, error)
	// ApplyDelta adds delta only if the result stays non-negative and returns the new amount.
	// Fails with domain.ErrBalanceNotFound or domain.ErrBalanceWouldGoNegative.
	ApplyDelta(ctx context.Context, tx pgx.Tx, key domain.BalanceKey, delta decimal.Decimal, asOf time.Time) (decimal.Decimal, error)
}

// MovementRepository appends movement records. There is no update or delete.
type MovementRepository interface {
	Create(ctx context.Context, tx pgx.Tx, movement *domain.Movement) error
}

// AuditRepository persists API audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
