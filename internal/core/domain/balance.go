package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrBalanceNotFound means no row exists for the (address, currency) pair.
	ErrBalanceNotFound = errors.New("balance row not found")
	// ErrBalanceWouldGoNegative means the row exists but the delta would overdraw it.
	ErrBalanceWouldGoNegative = errors.New("balance would go negative")
)

// BalanceKey identifies one balance row.
type BalanceKey struct {
	Address    string
	CurrencyID int
}

// Less orders keys by address, then currency id. Rows are always locked in
// this order so two operations touching the same pair cannot deadlock.
func (k BalanceKey) Less(other BalanceKey) bool {
	if k.Address != other.Address {
		return k.Address < other.Address
	}
	return k.CurrencyID < other.CurrencyID
}

// SortBalanceKeys returns a sorted copy of keys.
func SortBalanceKeys(keys []BalanceKey) []BalanceKey {
	out := make([]BalanceKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Balance is the amount held by an address in one currency.
type Balance struct {
	Address      string          `json:"address"`
	CurrencyID   int             `json:"-"`
	CurrencyCode string          `json:"currency_code"`
	CurrencyName string          `json:"currency_name"`
	Amount       decimal.Decimal `json:"amount"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Available returns the spendable amount. A nil balance holds nothing.
func (b *Balance) Available() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.Amount
}

// Covers reports whether the balance can pay amount.
func (b *Balance) Covers(amount decimal.Decimal) bool {
	return b.Available().GreaterThanOrEqual(amount)
}
