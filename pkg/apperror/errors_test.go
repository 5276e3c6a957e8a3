package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("PAY_001", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[PAY_001] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("PAY_001", "test", http.StatusBadRequest).Unwrap())
}

func TestCategoryCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"WalletNotFoundOrInactive", ErrWalletNotFoundOrInactive(), "WAL_001", 404},
		{"DestinationWalletNotFoundOrInactive", ErrDestinationWalletNotFoundOrInactive(), "WAL_001", 404},
		{"SameWallet", ErrSameWallet(), "WAL_002", 400},
		{"NotFound", ErrNotFound("Wallet"), "WAL_003", 404},
		{"CurrencyNotSupported", ErrCurrencyNotSupported("XYZ"), "CUR_001", 400},
		{"SameCurrency", ErrSameCurrency(), "CUR_002", 400},
		{"InvalidCredential", ErrInvalidCredential(), "SEC_001", 401},
		{"InsufficientFunds", ErrInsufficientFunds(decimal.Zero, decimal.NewFromInt(1)), "PAY_001", 402},
		{"InvalidAmount", ErrInvalidAmount(), "PAY_002", 400},
		{"StorageFault", ErrStorageFault(errors.New("boom")), "SYS_001", 500},
		{"DestinationNotInitialized", ErrDestinationNotInitialized(), "SYS_002", 500},
		{"QuoteUnavailable", ErrQuoteUnavailable(errors.New("timeout")), "SYS_003", 503},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestWalletGateMessagesNameTheSide(t *testing.T) {
	assert.Equal(t, "Wallet not found or inactive", ErrWalletNotFoundOrInactive().Message)
	assert.Equal(t, "Destination wallet not found or inactive", ErrDestinationWalletNotFoundOrInactive().Message)
}

func TestInsufficientFunds_MessageCarriesAmounts(t *testing.T) {
	err := ErrInsufficientFunds(decimal.RequireFromString("89.9"), decimal.RequireFromString("1010"))
	assert.Equal(t, "Insufficient balance: available 89.9, required 1010", err.Message)
}

func TestInvalidCredential_DoesNotLeakCause(t *testing.T) {
	err := ErrInvalidCredential()
	assert.Nil(t, err.Err)
	assert.Contains(t, err.Message, "wallet not found")
}

func TestIsRetryable(t *testing.T) {
	inner := errors.New("pg: connection closed")

	assert.True(t, IsRetryable(ErrStorageFault(inner)))
	assert.True(t, IsRetryable(ErrQuoteUnavailable(inner)))
	assert.True(t, IsRetryable(fmt.Errorf("outer: %w", ErrQuoteUnavailable(inner))))

	assert.False(t, IsRetryable(ErrInsufficientFunds(decimal.Zero, decimal.NewFromInt(1))))
	assert.False(t, IsRetryable(ErrDestinationNotInitialized()))
	assert.False(t, IsRetryable(ErrInvalidCredential()))
	assert.False(t, IsRetryable(inner))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrSameCurrency())
	assert.True(t, HasCode(err, CodeSameCurrency))
	assert.False(t, HasCode(err, CodeSameWallet))
	assert.False(t, HasCode(errors.New("plain"), CodeSameCurrency))
}
