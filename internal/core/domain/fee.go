package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for every amount.
const AmountScale int32 = 8

var one = decimal.NewFromInt(1)

// ValidAmount reports whether amount is positive and representable at AmountScale.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(AmountScale))
}

// FeeSchedule holds the per-operation fee rates.
type FeeSchedule struct {
	WithdrawalRate decimal.Decimal
	ConversionRate decimal.Decimal
	TransferRate   decimal.Decimal
}

// Validate requires every rate to be in [0, 1).
func (f FeeSchedule) Validate() error {
	for name, r := range map[string]decimal.Decimal{
		"withdrawal": f.WithdrawalRate,
		"conversion": f.ConversionRate,
		"transfer":   f.TransferRate,
	} {
		if r.IsNegative() || r.GreaterThanOrEqual(one) {
			return fmt.Errorf("%s fee rate %s must be in [0, 1)", name, r.String())
		}
	}
	return nil
}

// AdditiveFee is the breakdown for operations whose fee is charged on top of the amount.
type AdditiveFee struct {
	Fee        decimal.Decimal
	TotalDebit decimal.Decimal
}

// Withdrawal computes fee and total debit: total = amount + amount*rate.
func (f FeeSchedule) Withdrawal(amount decimal.Decimal) AdditiveFee {
	return additive(amount, f.WithdrawalRate)
}

// Transfer computes the sender's fee and total debit. The receiver gets amount.
func (f FeeSchedule) Transfer(amount decimal.Decimal) AdditiveFee {
	return additive(amount, f.TransferRate)
}

// ConversionBreakdown is the result of a subtractive-fee conversion.
type ConversionBreakdown struct {
	Fee      decimal.Decimal
	NetFrom  decimal.Decimal
	AmountTo decimal.Decimal
}

// Conversion takes the fee out of amountFrom and converts the remainder.
// The converted amount is truncated so the ledger never credits more than
// the exact product.
func (f FeeSchedule) Conversion(amountFrom, rate decimal.Decimal) ConversionBreakdown {
	fee := feeOf(amountFrom, f.ConversionRate)
	net := amountFrom.Sub(fee)
	return ConversionBreakdown{
		Fee:      fee,
		NetFrom:  net,
		AmountTo: net.Mul(rate).Truncate(AmountScale),
	}
}

func additive(amount, rate decimal.Decimal) AdditiveFee {
	fee := feeOf(amount, rate)
	return AdditiveFee{Fee: fee, TotalDebit: amount.Add(fee)}
}

func feeOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(AmountScale)
}
