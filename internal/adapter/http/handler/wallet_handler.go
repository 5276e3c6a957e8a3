package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet lifecycle and read endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	created, err := h.walletSvc.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResourceID, created.Wallet.Address)
	response.Created(c, dto.NewCreateWalletResponse(created))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.walletSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, dto.NewWalletListResponse(wallets))
}

// Get handles GET /api/v1/wallets/:address.
func (h *WalletHandler) Get(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrNotFound("Wallet"))
		return
	}

	wallet, err := h.walletSvc.Get(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}

// Block handles DELETE /api/v1/wallets/:address. Wallets are never removed;
// the address is blocked and keeps its balances.
func (h *WalletHandler) Block(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrNotFound("Wallet"))
		return
	}

	wallet, err := h.walletSvc.Block(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}

// Balances handles GET /api/v1/wallets/:address/balances.
func (h *WalletHandler) Balances(c *gin.Context) {
	address, ok := walletAddress(c)
	if !ok {
		response.Error(c, apperror.ErrNotFound("Wallet"))
		return
	}

	balances, err := h.walletSvc.Balances(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, dto.NewBalanceListResponse(balances))
}

// Currencies handles GET /api/v1/currencies.
func (h *WalletHandler) Currencies(c *gin.Context) {
	currencies, err := h.walletSvc.Currencies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, dto.NewCurrencyListResponse(currencies))
}

// walletAddress returns the :address path parameter if it is well formed.
func walletAddress(c *gin.Context) (string, bool) {
	address := c.Param("address")
	return address, len(address) <= 128 && dto.IsHexToken(address)
}
