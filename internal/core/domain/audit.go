package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionWalletCreate AuditAction = "WALLET_CREATE"
	AuditActionWalletBlock  AuditAction = "WALLET_BLOCK"
	AuditActionDeposit      AuditAction = "DEPOSIT"
	AuditActionWithdrawal   AuditAction = "WITHDRAWAL"
	AuditActionConversion   AuditAction = "CONVERSION"
	AuditActionTransfer     AuditAction = "TRANSFER"
)

// AuditLog records one successful write request against the API.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	RequestID    string      `json:"request_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
