// Package memory is a process-local storage backend. It implements the same
// repository ports as the postgres package and is used for development runs
// (database.driver=memory) and tests.
//
// Write transactions are serialized: Begin takes a store-wide slot that is
// held until Commit or Rollback, which gives the same outcome as row locks
// taken in a fixed order. Writes are buffered in the Tx and published in one
// step at Commit, so readers outside the transaction only ever see committed
// state.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

type balanceRow struct {
	amount    decimal.Decimal
	updatedAt time.Time
}

// Store holds all ledger state.
type Store struct {
	slot chan struct{}

	mu         sync.RWMutex
	wallets    map[string]domain.Wallet
	currencies []domain.Currency
	balances   map[domain.BalanceKey]balanceRow
	movements  []domain.Movement
	audits     []domain.AuditLog
}

// NewStore returns an empty store seeded with the default currencies.
func NewStore() *Store {
	return &Store{
		slot:       make(chan struct{}, 1),
		wallets:    make(map[string]domain.Wallet),
		currencies: domain.DefaultCurrencies(),
		balances:   make(map[domain.BalanceKey]balanceRow),
	}
}

// Movements returns a snapshot of every committed movement in insert order.
func (s *Store) Movements() []domain.Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// AuditLogs returns a snapshot of every stored audit entry.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

// acquire waits for the write slot or for ctx to end.
func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.slot
}

// Tx is a memory transaction. It satisfies pgx.Tx so it can flow through
// the repository ports; only Commit and Rollback are implemented.
type Tx struct {
	pgx.Tx
	store *Store
	done  bool

	wallets   map[string]domain.Wallet
	balances  map[domain.BalanceKey]balanceRow
	movements []domain.Movement
}

func newTx(s *Store) *Tx {
	return &Tx{
		store:    s,
		wallets:  make(map[string]domain.Wallet),
		balances: make(map[domain.BalanceKey]balanceRow),
	}
}

// Commit publishes every buffered change and releases the write slot.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	s := t.store
	s.mu.Lock()
	for address, w := range t.wallets {
		s.wallets[address] = w
	}
	for key, row := range t.balances {
		s.balances[key] = row
	}
	s.movements = append(s.movements, t.movements...)
	s.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards every buffered change. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.wallets, t.balances, t.movements = nil, nil, nil
	t.store.release()
}

// wallet returns the wallet as seen by t. Callers hold store.mu.
func (t *Tx) wallet(address string) (domain.Wallet, bool) {
	if w, ok := t.wallets[address]; ok {
		return w, true
	}
	w, ok := t.store.wallets[address]
	return w, ok
}

// balance returns the balance row as seen by t. Callers hold store.mu.
func (t *Tx) balance(key domain.BalanceKey) (balanceRow, bool) {
	if row, ok := t.balances[key]; ok {
		return row, true
	}
	row, ok := t.store.balances[key]
	return row, ok
}

// txFor unwraps tx, rejecting transactions that are closed or were begun
// against another store.
func (s *Store) txFor(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, errForeignTx
	}
	if mtx.done {
		return nil, pgx.ErrTxClosed
	}
	return mtx, nil
}

// Transactor implements ports.DBTransactor.
type Transactor struct {
	store *Store
}

// NewTransactor creates a transactor over store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin waits for the store's write slot and opens a transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := t.store.acquire(ctx); err != nil {
		return nil, err
	}
	return newTx(t.store), nil
}

// HealthCheck implements ports.HealthChecker. The memory store is always up.
type HealthCheck struct{}

// NewHealthCheck creates a memory health checker.
func NewHealthCheck() *HealthCheck {
	return &HealthCheck{}
}

// Ping always succeeds.
func (h *HealthCheck) Ping(_ context.Context) error {
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "memory"
}
