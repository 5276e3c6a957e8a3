package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService.
//
// Every operation runs as one database transaction. Balance rows are locked
// with SELECT ... FOR UPDATE in ascending (address, currency) order, and
// every write goes through the store's conditional update, which refuses to
// take an amount below zero.
type LedgerServiceImpl struct {
	wallets      ports.WalletRepository
	balances     ports.BalanceRepository
	currencies   ports.CurrencyRepository
	movements    ports.MovementRepository
	quotes       ports.QuoteProvider
	identity     ports.IdentityGenerator
	transactor   ports.DBTransactor
	fees         domain.FeeSchedule
	quoteTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	wallets ports.WalletRepository,
	balances ports.BalanceRepository,
	currencies ports.CurrencyRepository,
	movements ports.MovementRepository,
	quotes ports.QuoteProvider,
	identity ports.IdentityGenerator,
	transactor ports.DBTransactor,
	fees domain.FeeSchedule,
	quoteTimeout time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		wallets:      wallets,
		balances:     balances,
		currencies:   currencies,
		movements:    movements,
		quotes:       quotes,
		identity:     identity,
		transactor:   transactor,
		fees:         fees,
		quoteTimeout: quoteTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

// Deposit credits amount to an active wallet. No secret is required and
// repeated deposits are never deduplicated.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.DepositResult, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if err := s.requireActive(ctx, req.Address, apperror.ErrWalletNotFoundOrInactive); err != nil {
		return nil, err
	}
	currency, err := s.resolveCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := domain.BalanceKey{Address: req.Address, CurrencyID: currency.ID}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	movement := &domain.Movement{
		ID:         uuid.New(),
		Kind:       domain.MovementKindDeposit,
		Address:    req.Address,
		CurrencyID: currency.ID,
		Gross:      req.Amount,
		Fee:        decimal.Zero,
		Net:        req.Amount,
		Credited:   req.Amount,
		FeeRate:    decimal.Zero,
		CreatedAt:  now,
	}
	if err := s.movements.Create(ctx, dbTx, movement); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("create movement: %w", err))
	}

	balance, err := s.credit(ctx, dbTx, key, req.Amount, now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("movement_id", movement.ID.String()).
		Str("address", req.Address).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Msg("deposit completed")

	return &ports.DepositResult{
		MovementID:   movement.ID,
		Address:      req.Address,
		CurrencyCode: currency.Code,
		Amount:       req.Amount,
		Balance:      balance,
		CreatedAt:    now,
	}, nil
}

// Withdraw debits amount plus the withdrawal fee from the wallet.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawalRequest) (*ports.WithdrawalResult, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if err := s.requireActive(ctx, req.Address, apperror.ErrWalletNotFoundOrInactive); err != nil {
		return nil, err
	}
	currency, err := s.resolveCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	charge := s.fees.Withdrawal(req.Amount)
	now := s.now()
	key := domain.BalanceKey{Address: req.Address, CurrencyID: currency.ID}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.authenticate(ctx, dbTx, req.Address, req.Secret); err != nil {
		return nil, err
	}

	locked, err := s.lock(ctx, dbTx, key)
	if err != nil {
		return nil, err
	}
	if !locked[key].Covers(charge.TotalDebit) {
		return nil, apperror.ErrInsufficientFunds(locked[key].Available(), charge.TotalDebit)
	}

	movement := &domain.Movement{
		ID:         uuid.New(),
		Kind:       domain.MovementKindWithdrawal,
		Address:    req.Address,
		CurrencyID: currency.ID,
		Gross:      req.Amount,
		Fee:        charge.Fee,
		Net:        req.Amount,
		Credited:   decimal.Zero,
		FeeRate:    s.fees.WithdrawalRate,
		CreatedAt:  now,
	}
	if err := s.movements.Create(ctx, dbTx, movement); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("create movement: %w", err))
	}

	balance, err := s.debit(ctx, dbTx, key, charge.TotalDebit, locked[key].Available(), now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("movement_id", movement.ID.String()).
		Str("address", req.Address).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Str("fee", charge.Fee.String()).
		Msg("withdrawal completed")

	return &ports.WithdrawalResult{
		MovementID:   movement.ID,
		Address:      req.Address,
		CurrencyCode: currency.Code,
		Amount:       req.Amount,
		FeeRate:      s.fees.WithdrawalRate,
		Fee:          charge.Fee,
		TotalDebit:   charge.TotalDebit,
		Balance:      balance,
		CreatedAt:    now,
	}, nil
}

// Convert exchanges amount_from of one currency for another inside the same
// wallet. The fee is taken out of amount_from, so the source balance is
// debited exactly amount_from.
func (s *LedgerServiceImpl) Convert(ctx context.Context, req ports.ConversionRequest) (*ports.ConversionResult, error) {
	if !domain.ValidAmount(req.AmountFrom) {
		return nil, apperror.ErrInvalidAmount()
	}
	from, err := s.resolveCurrency(ctx, req.FromCurrencyCode)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveCurrency(ctx, req.ToCurrencyCode)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, apperror.ErrSameCurrency()
	}
	if err := s.requireActive(ctx, req.Address, apperror.ErrWalletNotFoundOrInactive); err != nil {
		return nil, err
	}

	// The quote is fetched before the transaction opens so no row lock is
	// held across network latency.
	rate, err := s.fetchRate(ctx, from.Code, to.Code)
	if err != nil {
		return nil, err
	}

	breakdown := s.fees.Conversion(req.AmountFrom, rate)
	if !breakdown.AmountTo.IsPositive() {
		return nil, apperror.Validation("Converted amount rounds to zero")
	}

	now := s.now()
	fromKey := domain.BalanceKey{Address: req.Address, CurrencyID: from.ID}
	toKey := domain.BalanceKey{Address: req.Address, CurrencyID: to.ID}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.authenticate(ctx, dbTx, req.Address, req.Secret); err != nil {
		return nil, err
	}

	locked, err := s.lock(ctx, dbTx, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	if _, ok := locked[toKey]; !ok {
		return nil, apperror.ErrDestinationNotInitialized()
	}
	if !locked[fromKey].Covers(req.AmountFrom) {
		return nil, apperror.ErrInsufficientFunds(locked[fromKey].Available(), req.AmountFrom)
	}

	counterCurrency := to.ID
	movement := &domain.Movement{
		ID:                uuid.New(),
		Kind:              domain.MovementKindConversion,
		Address:           req.Address,
		CurrencyID:        from.ID,
		CounterCurrencyID: &counterCurrency,
		Gross:             req.AmountFrom,
		Fee:               breakdown.Fee,
		Net:               breakdown.NetFrom,
		Credited:          breakdown.AmountTo,
		FeeRate:           s.fees.ConversionRate,
		Rate:              decimal.NewNullDecimal(rate),
		CreatedAt:         now,
	}
	if err := s.movements.Create(ctx, dbTx, movement); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("create movement: %w", err))
	}

	fromBalance, err := s.debit(ctx, dbTx, fromKey, req.AmountFrom, locked[fromKey].Available(), now)
	if err != nil {
		return nil, err
	}
	toBalance, err := s.credit(ctx, dbTx, toKey, breakdown.AmountTo, now)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("movement_id", movement.ID.String()).
		Str("address", req.Address).
		Str("from", from.Code).
		Str("to", to.Code).
		Str("amount_from", req.AmountFrom.String()).
		Str("amount_to", breakdown.AmountTo.String()).
		Str("rate", rate.String()).
		Msg("conversion completed")

	return &ports.ConversionResult{
		MovementID:       movement.ID,
		Address:          req.Address,
		FromCurrencyCode: from.Code,
		ToCurrencyCode:   to.Code,
		AmountFrom:       req.AmountFrom,
		FeeRate:          s.fees.ConversionRate,
		Fee:              breakdown.Fee,
		NetFrom:          breakdown.NetFrom,
		Rate:             rate,
		AmountTo:         breakdown.AmountTo,
		FromBalance:      fromBalance,
		ToBalance:        toBalance,
		CreatedAt:        now,
	}, nil
}

// Transfer moves amount between two wallets in one currency. The sender pays
// amount plus the transfer fee; the receiver is credited exactly amount.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if !domain.ValidAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromAddress == req.ToAddress {
		return nil, apperror.ErrSameWallet()
	}
	currency, err := s.resolveCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, req.FromAddress, apperror.ErrWalletNotFoundOrInactive); err != nil {
		return nil, err
	}
	if err := s.requireActive(ctx, req.ToAddress, apperror.ErrDestinationWalletNotFoundOrInactive); err != nil {
		return nil, err
	}

	charge := s.fees.Transfer(req.Amount)
	now := s.now()
	fromKey := domain.BalanceKey{Address: req.FromAddress, CurrencyID: currency.ID}
	toKey := domain.BalanceKey{Address: req.ToAddress, CurrencyID: currency.ID}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.authenticate(ctx, dbTx, req.FromAddress, req.Secret); err != nil {
		return nil, err
	}

	locked, err := s.lock(ctx, dbTx, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	if _, ok := locked[toKey]; !ok {
		return nil, apperror.ErrDestinationNotInitialized()
	}
	if !locked[fromKey].Covers(charge.TotalDebit) {
		return nil, apperror.ErrInsufficientFunds(locked[fromKey].Available(), charge.TotalDebit)
	}

	counterparty := req.ToAddress
	movement := &domain.Movement{
		ID:                  uuid.New(),
		Kind:                domain.MovementKindTransfer,
		Address:             req.FromAddress,
		CounterpartyAddress: &counterparty,
		CurrencyID:          currency.ID,
		Gross:               charge.TotalDebit,
		Fee:                 charge.Fee,
		Net:                 req.Amount,
		Credited:            req.Amount,
		FeeRate:             s.fees.TransferRate,
		CreatedAt:           now,
	}
	if err := s.movements.Create(ctx, dbTx, movement); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("create movement: %w", err))
	}

	balance, err := s.debit(ctx, dbTx, fromKey, charge.TotalDebit, locked[fromKey].Available(), now)
	if err != nil {
		return nil, err
	}
	if _, err := s.credit(ctx, dbTx, toKey, req.Amount, now); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("movement_id", movement.ID.String()).
		Str("from", req.FromAddress).
		Str("to", req.ToAddress).
		Str("currency", currency.Code).
		Str("amount", req.Amount.String()).
		Str("fee", charge.Fee.String()).
		Msg("transfer completed")

	return &ports.TransferResult{
		MovementID:   movement.ID,
		FromAddress:  req.FromAddress,
		ToAddress:    req.ToAddress,
		CurrencyCode: currency.Code,
		Amount:       req.Amount,
		FeeRate:      s.fees.TransferRate,
		Fee:          charge.Fee,
		TotalDebit:   charge.TotalDebit,
		Balance:      balance,
		CreatedAt:    now,
	}, nil
}

// requireActive fails with notFound when the wallet is missing or blocked.
// Both cases look the same to the caller.
func (s *LedgerServiceImpl) requireActive(ctx context.Context, address string, notFound func() *apperror.AppError) error {
	active, err := s.wallets.ExistsActive(ctx, address)
	if err != nil {
		return apperror.ErrStorageFault(fmt.Errorf("check wallet: %w", err))
	}
	if !active {
		return notFound()
	}
	return nil
}

func (s *LedgerServiceImpl) resolveCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	normalized := domain.NormalizeCurrencyCode(code)
	currency, err := s.currencies.GetByCode(ctx, normalized)
	if err != nil {
		return nil, apperror.ErrStorageFault(fmt.Errorf("get currency: %w", err))
	}
	if currency == nil {
		return nil, apperror.ErrCurrencyNotSupported(normalized)
	}
	return currency, nil
}

// authenticate checks secret against the wallet's stored digest. The digest
// row is share-locked, so the wallet cannot be blocked before tx ends.
func (s *LedgerServiceImpl) authenticate(ctx context.Context, tx pgx.Tx, address, secret string) error {
	digest, err := s.wallets.GetSecretDigest(ctx, tx, address)
	if err != nil {
		return apperror.ErrStorageFault(fmt.Errorf("get secret digest: %w", err))
	}
	if !s.identity.Verify(secret, digest) {
		s.log.Warn().Str("address", address).Msg("credential check failed")
		return apperror.ErrInvalidCredential()
	}
	return nil
}

// lock row-locks every key in ascending order and returns the locked rows.
// Missing rows are absent from the map.
func (s *LedgerServiceImpl) lock(ctx context.Context, tx pgx.Tx, keys ...domain.BalanceKey) (map[domain.BalanceKey]*domain.Balance, error) {
	rows := make(map[domain.BalanceKey]*domain.Balance, len(keys))
	for _, key := range domain.SortBalanceKeys(keys) {
		balance, err := s.balances.GetForUpdate(ctx, tx, key)
		if err != nil {
			return nil, apperror.ErrStorageFault(fmt.Errorf("lock balance: %w", err))
		}
		if balance != nil {
			rows[key] = balance
		}
	}
	return rows, nil
}

func (s *LedgerServiceImpl) credit(ctx context.Context, tx pgx.Tx, key domain.BalanceKey, amount decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	balance, err := s.balances.ApplyDelta(ctx, tx, key, amount, at)
	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, domain.ErrBalanceNotFound):
		return decimal.Zero, apperror.ErrDestinationNotInitialized()
	default:
		return decimal.Zero, apperror.ErrStorageFault(fmt.Errorf("credit balance: %w", err))
	}
}

// debit applies -amount. available is the locked amount, used only to word
// the error if the store's non-negative guard still refuses the update.
func (s *LedgerServiceImpl) debit(ctx context.Context, tx pgx.Tx, key domain.BalanceKey, amount, available decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	balance, err := s.balances.ApplyDelta(ctx, tx, key, amount.Neg(), at)
	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, domain.ErrBalanceWouldGoNegative), errors.Is(err, domain.ErrBalanceNotFound):
		return decimal.Zero, apperror.ErrInsufficientFunds(available, amount)
	default:
		return decimal.Zero, apperror.ErrStorageFault(fmt.Errorf("debit balance: %w", err))
	}
}

// fetchRate asks the quote provider for a rate under a bounded timeout.
func (s *LedgerServiceImpl) fetchRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	quoteCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	rate, err := s.quotes.Rate(quoteCtx, base, quote)
	if err != nil {
		if errors.Is(err, domain.ErrPairUnsupported) {
			return decimal.Zero, apperror.ErrCurrencyNotSupported(base + "-" + quote)
		}
		s.log.Warn().Err(err).Str("base", base).Str("quote", quote).Msg("quote fetch failed")
		return decimal.Zero, apperror.ErrQuoteUnavailable(err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, apperror.ErrQuoteUnavailable(fmt.Errorf("non-positive rate %s for %s-%s", rate, base, quote))
	}
	return rate, nil
}
