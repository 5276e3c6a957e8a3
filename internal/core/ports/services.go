package ports

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdentityGenerator produces wallet credentials and checks secrets against digests.
type IdentityGenerator interface {
	Generate() (*domain.Identity, error)
	Digest(secret string) string
	Verify(secret, digest string) bool
}

// QuoteProvider returns how many units of quote one unit of base buys.
// Fails with domain.ErrPairUnsupported or domain.ErrQuoteProvider.
type QuoteProvider interface {
	Rate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// QuoteCache is a short-lived rate cache in front of a QuoteProvider.
type QuoteCache interface {
	Get(ctx context.Context, base, quote string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, base, quote string, rate decimal.Decimal, ttl time.Duration) error
}

// AuditService records API audit entries without blocking the request.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// WalletService covers the wallet lifecycle and read views.
type WalletService interface {
	Create(ctx context.Context) (*CreatedWallet, error)
	Get(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	Block(ctx context.Context, address string) (*domain.Wallet, error)
	Balances(ctx context.Context, address string) ([]domain.Balance, error)
	Currencies(ctx context.Context) ([]domain.Currency, error)
}

// LedgerService is the transaction engine: every call is one atomic unit.
type LedgerService interface {
	Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error)
	Withdraw(ctx context.Context, req WithdrawalRequest) (*WithdrawalResult, error)
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// CreatedWallet carries the one-time secret alongside the new wallet.
type CreatedWallet struct {
	Wallet domain.Wallet
	Secret string
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	Address      string
	CurrencyCode string
	Amount       decimal.Decimal
}

// WithdrawalRequest holds validated input for a withdrawal.
type WithdrawalRequest struct {
	Address      string
	CurrencyCode string
	Amount       decimal.Decimal
	Secret       string
}

// ConversionRequest holds validated input for a conversion.
type ConversionRequest struct {
	Address          string
	FromCurrencyCode string
	ToCurrencyCode   string
	AmountFrom       decimal.Decimal
	Secret           string
}

// TransferRequest holds validated input for a transfer.
type TransferRequest struct {
	FromAddress  string
	ToAddress    string
	CurrencyCode string
	Amount       decimal.Decimal
	Secret       string
}

// DepositResult is the outcome of a committed deposit.
type DepositResult struct {
	MovementID   uuid.UUID
	Address      string
	CurrencyCode string
	Amount       decimal.Decimal
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// WithdrawalResult is the outcome of a committed withdrawal.
type WithdrawalResult struct {
	MovementID   uuid.UUID
	Address      string
	CurrencyCode string
	Amount       decimal.Decimal
	FeeRate      decimal.Decimal
	Fee          decimal.Decimal
	TotalDebit   decimal.Decimal
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// ConversionResult is the outcome of a committed conversion.
type ConversionResult struct {
	MovementID       uuid.UUID
	Address          string
	FromCurrencyCode string
	ToCurrencyCode   string
	AmountFrom       decimal.Decimal
	FeeRate          decimal.Decimal
	Fee              decimal.Decimal
	NetFrom          decimal.Decimal
	Rate             decimal.Decimal
	AmountTo         decimal.Decimal
	FromBalance      decimal.Decimal
	ToBalance        decimal.Decimal
	CreatedAt        time.Time
}

// TransferResult is the outcome of a committed transfer. The destination
// balance is deliberately absent.
type TransferResult struct {
	MovementID   uuid.UUID
	FromAddress  string
	ToAddress    string
	CurrencyCode string
	Amount       decimal.Decimal
	FeeRate      decimal.Decimal
	Fee          decimal.Decimal
	TotalDebit   decimal.Decimal
	Balance      decimal.Decimal
	CreatedAt    time.Time
}
