package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	wallets    ports.WalletRepository
	balances   ports.BalanceRepository
	currencies ports.CurrencyRepository
	identity   ports.IdentityGenerator
	transactor ports.DBTransactor
	now        func() time.Time
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	wallets ports.WalletRepository,
	balances ports.BalanceRepository,
	currencies ports.CurrencyRepository,
	identity ports.IdentityGenerator,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		wallets:    wallets,
		balances:   balances,
		currencies: currencies,
		identity:   identity,
		transactor: transactor,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// Create issues a new wallet with a zero balance in every known currency.
// The plaintext secret is returned exactly once.
func (s *WalletServiceImpl) Create(ctx context.Context) (*ports.CreatedWallet, error) {
	id, err := s.identity.Generate()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate identity: %w", err))
	}

	now := s.now()
	wallet := &domain.Wallet{
		Address:      id.Address,
		SecretDigest: id.Digest,
		Status:       domain.WalletStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.wallets.Create(ctx, dbTx, wallet); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("create wallet: %w", err))
	}
	if err := s.balances.InitializeAll(ctx, dbTx, wallet.Address, now); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("initialize balances: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("address", wallet.Address).Msg("wallet created")

	return &ports.CreatedWallet{Wallet: *wallet, Secret: id.Secret}, nil
}

// Get returns a wallet in any status.
func (s *WalletServiceImpl) Get(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.wallets.GetByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

// List returns every wallet, newest first.
func (s *WalletServiceImpl) List(ctx context.Context) ([]domain.Wallet, error) {
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// Block marks a wallet BLOCKED. Its balances are kept but it can no longer
// take part in any financial operation. Blocking twice is a no-op.
func (s *WalletServiceImpl) Block(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.wallets.UpdateStatus(ctx, address, domain.WalletStatusBlocked)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("block wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	s.log.Info().Str("address", address).Msg("wallet blocked")
	return wallet, nil
}

// Balances returns one entry per known currency for the wallet.
func (s *WalletServiceImpl) Balances(ctx context.Context, address string) ([]domain.Balance, error) {
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}

	balances, err := s.balances.ListByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("list balances: %w", err))
	}
	return balances, nil
}

// Currencies returns the supported currency set.
func (s *WalletServiceImpl) Currencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencies.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("list currencies: %w", err))
	}
	return currencies, nil
}
