package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the four financial operations.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/wallets/:address/deposits.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrWalletNotFoundOrInactive())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if !domain.ValidAmount(req.Amount) {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Address:      address,
		CurrencyCode: req.CurrencyCode,
		Amount:       req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewDepositResponse(result))
}

// Withdraw handles POST /api/v1/wallets/:address/withdrawals.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrWalletNotFoundOrInactive())
		return
	}

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if !domain.ValidAmount(req.Amount) {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawalRequest{
		Address:      address,
		CurrencyCode: req.CurrencyCode,
		Amount:       req.Amount,
		Secret:       req.Secret,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWithdrawalResponse(result))
}

// Convert handles POST /api/v1/wallets/:address/conversions.
func (h *LedgerHandler) Convert(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrWalletNotFoundOrInactive())
		return
	}

	var req dto.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if !domain.ValidAmount(req.AmountFrom) {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.ledgerSvc.Convert(c.Request.Context(), ports.ConversionRequest{
		Address:          address,
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   req.ToCurrencyCode,
		AmountFrom:       req.AmountFrom,
		Secret:           req.Secret,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewConversionResponse(result))
}

// Transfer handles POST /api/v1/wallets/:address/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrWalletNotFoundOrInactive())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if !domain.ValidAmount(req.Amount) {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		FromAddress:  address,
		ToAddress:    req.ToAddress,
		CurrencyCode: req.CurrencyCode,
		Amount:       req.Amount,
		Secret:       req.Secret,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransferResponse(result))
}
