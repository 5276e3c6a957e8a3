package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// Routes are matched by their registered pattern, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		resourceID := c.Param("address")
		if resourceID == "" {
			// wallet creation: the address only exists in the response
			resourceID = c.GetString(CtxAuditResourceID)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			RequestID:    c.GetString(CtxRequestID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

// CtxAuditResourceID lets a handler name the resource it created.
const CtxAuditResourceID = "audit_resource_id"

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/wallets" && method == http.MethodPost:
		return domain.AuditActionWalletCreate, "wallet"
	case route == "/api/v1/wallets/:address" && method == http.MethodDelete:
		return domain.AuditActionWalletBlock, "wallet"
	case route == "/api/v1/wallets/:address/deposits" && method == http.MethodPost:
		return domain.AuditActionDeposit, "movement"
	case route == "/api/v1/wallets/:address/withdrawals" && method == http.MethodPost:
		return domain.AuditActionWithdrawal, "movement"
	case route == "/api/v1/wallets/:address/conversions" && method == http.MethodPost:
		return domain.AuditActionConversion, "movement"
	case route == "/api/v1/wallets/:address/transfers" && method == http.MethodPost:
		return domain.AuditActionTransfer, "movement"
	}
	return "", ""
}
