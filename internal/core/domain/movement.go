package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind classifies a ledger movement.
type MovementKind string

const (
	MovementKindDeposit    MovementKind = "DEPOSIT"
	MovementKindWithdrawal MovementKind = "WITHDRAWAL"
	MovementKindConversion MovementKind = "CONVERSION"
	MovementKindTransfer   MovementKind = "TRANSFER"
)

// Movement is the append-only audit fact for one committed operation.
//
//	DEPOSIT     gross = net = credited = amount, fee = 0
//	WITHDRAWAL  gross = net = amount, credited = 0, debit = gross + fee
//	CONVERSION  gross = amount_from, net = gross - fee, credited = net * rate
//	TRANSFER    gross = amount + fee, net = credited = amount
type Movement struct {
	ID                  uuid.UUID           `json:"id"`
	Kind                MovementKind        `json:"kind"`
	Address             string              `json:"address"`
	CounterpartyAddress *string             `json:"counterparty_address,omitempty"`
	CurrencyID          int                 `json:"currency_id"`
	CounterCurrencyID   *int                `json:"counter_currency_id,omitempty"`
	Gross               decimal.Decimal     `json:"gross"`
	Fee                 decimal.Decimal     `json:"fee"`
	Net                 decimal.Decimal     `json:"net"`
	Credited            decimal.Decimal     `json:"credited"`
	FeeRate             decimal.Decimal     `json:"fee_rate"`
	Rate                decimal.NullDecimal `json:"rate"`
	CreatedAt           time.Time           `json:"created_at"`
}
