package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	s *Store
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(s *Store) *WalletRepo {
	return &WalletRepo{s: s}
}

func (r *WalletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, exists := mtx.wallet(w.Address); exists {
		return fmt.Errorf("insert wallet: address %s already exists", w.Address)
	}
	mtx.wallets[w.Address] = *w
	return nil
}

func (r *WalletRepo) GetByAddress(_ context.Context, address string) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[address]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WalletRepo) List(_ context.Context) ([]domain.Wallet, error) {
	r.s.mu.RLock()
	out := make([]domain.Wallet, 0, len(r.s.wallets))
	for _, w := range r.s.wallets {
		out = append(out, w)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

// UpdateStatus waits for in-flight transactions, matching the row lock an
// UPDATE takes in postgres.
func (r *WalletRepo) UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error) {
	if err := r.s.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.s.release()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[address]
	if !ok {
		return nil, nil
	}
	w.Status = status
	w.UpdatedAt = time.Now().UTC()
	r.s.wallets[address] = w
	return &w, nil
}

func (r *WalletRepo) ExistsActive(_ context.Context, address string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[address]
	return ok && w.IsActive(), nil
}

func (r *WalletRepo) GetSecretDigest(_ context.Context, tx pgx.Tx, address string) (string, error) {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return "", err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := mtx.wallet(address)
	if !ok || !w.IsActive() {
		return "", nil
	}
	return w.SecretDigest, nil
}

// CurrencyRepo implements ports.CurrencyRepository.
type CurrencyRepo struct {
	s *Store
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(s *Store) *CurrencyRepo {
	return &CurrencyRepo{s: s}
}

func (r *CurrencyRepo) GetByCode(_ context.Context, code string) (*domain.Currency, error) {
	for _, c := range r.s.currencies {
		if c.Code == code {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CurrencyRepo) List(_ context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, len(r.s.currencies))
	copy(out, r.s.currencies)
	return out, nil
}

func (s *Store) currencyByID(id int) (domain.Currency, bool) {
	for _, c := range s.currencies {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Currency{}, false
}

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	s *Store
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(s *Store) *BalanceRepo {
	return &BalanceRepo{s: s}
}

func (r *BalanceRepo) InitializeAll(_ context.Context, tx pgx.Tx, address string, at time.Time) error {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.currencies {
		key := domain.BalanceKey{Address: address, CurrencyID: c.ID}
		if _, exists := mtx.balance(key); exists {
			continue
		}
		mtx.balances[key] = balanceRow{amount: decimal.Zero, updatedAt: at}
	}
	return nil
}

func (r *BalanceRepo) ListByAddress(_ context.Context, address string) ([]domain.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Balance
	for key, row := range r.s.balances {
		if key.Address != address {
			continue
		}
		out = append(out, r.s.balanceView(key, row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out, nil
}

func (r *BalanceRepo) GetForUpdate(_ context.Context, tx pgx.Tx, key domain.BalanceKey) (*domain.Balance, error) {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := mtx.balance(key)
	if !ok {
		return nil, nil
	}
	b := r.s.balanceView(key, row)
	return &b, nil
}

func (r *BalanceRepo) ApplyDelta(_ context.Context, tx pgx.Tx, key domain.BalanceKey, delta decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return decimal.Zero, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	prev, ok := mtx.balance(key)
	if !ok {
		return decimal.Zero, domain.ErrBalanceNotFound
	}
	next := prev.amount.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrBalanceWouldGoNegative
	}
	mtx.balances[key] = balanceRow{amount: next, updatedAt: asOf}
	return next, nil
}

// balanceView must be called with mu held.
func (s *Store) balanceView(key domain.BalanceKey, row balanceRow) domain.Balance {
	c, _ := s.currencyByID(key.CurrencyID)
	return domain.Balance{
		Address:      key.Address,
		CurrencyID:   key.CurrencyID,
		CurrencyCode: c.Code,
		CurrencyName: c.Name,
		Amount:       row.amount,
		UpdatedAt:    row.updatedAt,
	}
}

// MovementRepo implements ports.MovementRepository.
type MovementRepo struct {
	s *Store
}

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) Create(_ context.Context, tx pgx.Tx, m *domain.Movement) error {
	mtx, err := r.s.txFor(tx)
	if err != nil {
		return err
	}

	mtx.movements = append(mtx.movements, *m)
	return nil
}

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct {
	s *Store
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(s *Store) *AuditRepo {
	return &AuditRepo{s: s}
}

func (r *AuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *log)
	return nil
}
