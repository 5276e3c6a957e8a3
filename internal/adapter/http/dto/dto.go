package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Amounts are decimal.Decimal on the wire. They accept both JSON numbers and
// strings and are always rendered as strings.

// DepositRequest is the request body for POST /wallets/:address/deposits.
type DepositRequest struct {
	CurrencyCode string          `json:"currency_code" binding:"required,min=2,max=10,safe_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// WithdrawalRequest is the request body for POST /wallets/:address/withdrawals.
type WithdrawalRequest struct {
	CurrencyCode string          `json:"currency_code" binding:"required,min=2,max=10,safe_id"`
	Amount       decimal.Decimal `json:"amount"`
	Secret       string          `json:"secret" binding:"required,min=32,max=128,hex_token"`
}

// ConversionRequest is the request body for POST /wallets/:address/conversions.
type ConversionRequest struct {
	FromCurrencyCode string          `json:"from_currency_code" binding:"required,min=2,max=10,safe_id"`
	ToCurrencyCode   string          `json:"to_currency_code" binding:"required,min=2,max=10,safe_id"`
	AmountFrom       decimal.Decimal `json:"amount_from"`
	Secret           string          `json:"secret" binding:"required,min=32,max=128,hex_token"`
}

// TransferRequest is the request body for POST /wallets/:address/transfers.
type TransferRequest struct {
	ToAddress    string          `json:"to_address" binding:"required,max=128,hex_token"`
	CurrencyCode string          `json:"currency_code" binding:"required,min=2,max=10,safe_id"`
	Amount       decimal.Decimal `json:"amount"`
	Secret       string          `json:"secret" binding:"required,min=32,max=128,hex_token"`
}

// CreateWalletResponse is returned once, on creation. It is the only
// response that ever carries the secret.
type CreateWalletResponse struct {
	Address   string `json:"address"`
	Secret    string `json:"secret"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	Address   string `json:"address"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BalanceResponse is one currency balance of a wallet.
type BalanceResponse struct {
	CurrencyCode string          `json:"currency_code"`
	CurrencyName string          `json:"currency_name"`
	Amount       decimal.Decimal `json:"amount"`
	UpdatedAt    string          `json:"updated_at"`
}

// CurrencyResponse is one supported currency.
type CurrencyResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DepositResponse is the response body for a committed deposit.
type DepositResponse struct {
	MovementID   string          `json:"movement_id"`
	Address      string          `json:"address"`
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    string          `json:"created_at"`
}

// WithdrawalResponse is the response body for a committed withdrawal.
type WithdrawalResponse struct {
	MovementID   string          `json:"movement_id"`
	Address      string          `json:"address"`
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
	FeeRate      decimal.Decimal `json:"fee_rate"`
	Fee          decimal.Decimal `json:"fee"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    string          `json:"created_at"`
}

// ConversionResponse is the response body for a committed conversion.
type ConversionResponse struct {
	MovementID       string          `json:"movement_id"`
	Address          string          `json:"address"`
	FromCurrencyCode string          `json:"from_currency_code"`
	ToCurrencyCode   string          `json:"to_currency_code"`
	AmountFrom       decimal.Decimal `json:"amount_from"`
	FeeRate          decimal.Decimal `json:"fee_rate"`
	Fee              decimal.Decimal `json:"fee"`
	NetFrom          decimal.Decimal `json:"net_from"`
	Rate             decimal.Decimal `json:"rate"`
	AmountTo         decimal.Decimal `json:"amount_to"`
	FromBalance      decimal.Decimal `json:"from_balance"`
	ToBalance        decimal.Decimal `json:"to_balance"`
	CreatedAt        string          `json:"created_at"`
}

// TransferResponse is the response body for a committed transfer. Only the
// sender's balance is reported.
type TransferResponse struct {
	MovementID   string          `json:"movement_id"`
	FromAddress  string          `json:"from_address"`
	ToAddress    string          `json:"to_address"`
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
	FeeRate      decimal.Decimal `json:"fee_rate"`
	Fee          decimal.Decimal `json:"fee"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    string          `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewCreateWalletResponse(w *ports.CreatedWallet) CreateWalletResponse {
	return CreateWalletResponse{
		Address:   w.Wallet.Address,
		Secret:    w.Secret,
		Status:    string(w.Wallet.Status),
		CreatedAt: formatTime(w.Wallet.CreatedAt),
	}
}

func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		Address:   w.Address,
		Status:    string(w.Status),
		CreatedAt: formatTime(w.CreatedAt),
		UpdatedAt: formatTime(w.UpdatedAt),
	}
}

func NewWalletListResponse(wallets []domain.Wallet) []WalletResponse {
	out := make([]WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, NewWalletResponse(&wallets[i]))
	}
	return out
}

func NewBalanceListResponse(balances []domain.Balance) []BalanceResponse {
	out := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, BalanceResponse{
			CurrencyCode: b.CurrencyCode,
			CurrencyName: b.CurrencyName,
			Amount:       b.Amount,
			UpdatedAt:    formatTime(b.UpdatedAt),
		})
	}
	return out
}

func NewCurrencyListResponse(currencies []domain.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, CurrencyResponse{Code: c.Code, Name: c.Name})
	}
	return out
}

func NewDepositResponse(r *ports.DepositResult) DepositResponse {
	return DepositResponse{
		MovementID:   r.MovementID.String(),
		Address:      r.Address,
		CurrencyCode: r.CurrencyCode,
		Amount:       r.Amount,
		Balance:      r.Balance,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func NewWithdrawalResponse(r *ports.WithdrawalResult) WithdrawalResponse {
	return WithdrawalResponse{
		MovementID:   r.MovementID.String(),
		Address:      r.Address,
		CurrencyCode: r.CurrencyCode,
		Amount:       r.Amount,
		FeeRate:      r.FeeRate,
		Fee:          r.Fee,
		TotalDebit:   r.TotalDebit,
		Balance:      r.Balance,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func NewConversionResponse(r *ports.ConversionResult) ConversionResponse {
	return ConversionResponse{
		MovementID:       r.MovementID.String(),
		Address:          r.Address,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		AmountFrom:       r.AmountFrom,
		FeeRate:          r.FeeRate,
		Fee:              r.Fee,
		NetFrom:          r.NetFrom,
		Rate:             r.Rate,
		AmountTo:         r.AmountTo,
		FromBalance:      r.FromBalance,
		ToBalance:        r.ToBalance,
		CreatedAt:        formatTime(r.CreatedAt),
	}
}

func NewTransferResponse(r *ports.TransferResult) TransferResponse {
	return TransferResponse{
		MovementID:   r.MovementID.String(),
		FromAddress:  r.FromAddress,
		ToAddress:    r.ToAddress,
		CurrencyCode: r.CurrencyCode,
		Amount:       r.Amount,
		FeeRate:      r.FeeRate,
		Fee:          r.Fee,
		TotalDebit:   r.TotalDebit,
		Balance:      r.Balance,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}
