package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // internal cause, never rendered to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

const (
	CodeWalletNotFoundOrInactive  = "WAL_001"
	CodeSameWallet                = "WAL_002"
	CodeNotFound                  = "WAL_003"
	CodeCurrencyNotSupported      = "CUR_001"
	CodeSameCurrency              = "CUR_002"
	CodeInvalidCredential         = "SEC_001"
	CodeInsufficientFunds         = "PAY_001"
	CodeInvalidAmount             = "PAY_002"
	CodeStorageFault              = "SYS_001"
	CodeDestinationNotInitialized = "SYS_002"
	CodeQuoteUnavailable          = "SYS_003"
	CodeRateLimitExceeded         = "RATE_001"
)

// ---- Wallet (WAL) ----

func ErrWalletNotFoundOrInactive() *AppError {
	return New(CodeWalletNotFoundOrInactive, "Wallet not found or inactive", http.StatusNotFound)
}

func ErrDestinationWalletNotFoundOrInactive() *AppError {
	return New(CodeWalletNotFoundOrInactive, "Destination wallet not found or inactive", http.StatusNotFound)
}

func ErrSameWallet() *AppError {
	return New(CodeSameWallet, "Origin and destination wallets must differ", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Currency (CUR) ----

func ErrCurrencyNotSupported(code string) *AppError {
	return New(CodeCurrencyNotSupported, fmt.Sprintf("Currency %q is not supported", code), http.StatusBadRequest)
}

func ErrSameCurrency() *AppError {
	return New(CodeSameCurrency, "Source and target currencies must differ", http.StatusBadRequest)
}

// ---- Security (SEC) ----

// ErrInvalidCredential is returned both for a wrong secret and for a wallet
// that cannot be found, so callers cannot probe which addresses exist.
func ErrInvalidCredential() *AppError {
	return New(CodeInvalidCredential, "Invalid secret or wallet not found", http.StatusUnauthorized)
}

// ---- Payment Business Logic (PAY) ----

func ErrInsufficientFunds(available, required decimal.Decimal) *AppError {
	return New(CodeInsufficientFunds,
		fmt.Sprintf("Insufficient balance: available %s, required %s", available.String(), required.String()),
		http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be positive with at most 8 decimal places", http.StatusBadRequest)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorageFault(err error) *AppError {
	return Wrap(CodeStorageFault, "Internal storage error", http.StatusInternalServerError, err)
}

func ErrDestinationNotInitialized() *AppError {
	return New(CodeDestinationNotInitialized, "Destination balance is not initialized", http.StatusInternalServerError)
}

func ErrQuoteUnavailable(err error) *AppError {
	return Wrap(CodeQuoteUnavailable, "Exchange rate is temporarily unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeStorageFault, "Internal server error", http.StatusInternalServerError, err)
}

// IsRetryable reports whether a caller may reasonably retry the failed
// operation. Only infrastructure faults qualify.
func IsRetryable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == CodeStorageFault || appErr.Code == CodeQuoteUnavailable
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
