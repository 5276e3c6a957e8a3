package domain

import "time"

// WalletStatus represents the lifecycle state of a wallet address.
type WalletStatus string

const (
	WalletStatusActive  WalletStatus = "ACTIVE"
	WalletStatusBlocked WalletStatus = "BLOCKED"
)

// Wallet is an address able to hold balances in every known currency.
type Wallet struct {
	Address      string       `json:"address"`
	SecretDigest string       `json:"-"` // SHA-256 of the secret, never expose
	Status       WalletStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsActive returns true if the wallet may take part in financial operations.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// Identity is a freshly generated credential pair. Secret is handed to the
// owner once and only Digest is ever persisted.
type Identity struct {
	Address string
	Secret  string
	Digest  string
}
