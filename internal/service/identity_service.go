package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"wallet-ledger/internal/core/domain"
)

// IdentityService issues wallet addresses and secrets. Only the SHA-256
// digest of a secret is ever stored.
type IdentityService struct {
	secretBytes  int
	addressBytes int
}

// NewIdentityService creates an IdentityService producing hex encoded
// secrets of secretBytes random bytes and addresses of addressBytes.
func NewIdentityService(secretBytes, addressBytes int) *IdentityService {
	return &IdentityService{secretBytes: secretBytes, addressBytes: addressBytes}
}

// Generate returns a fresh address, its secret and the secret's digest.
func (s *IdentityService) Generate() (*domain.Identity, error) {
	address, err := generateRandomHex(s.addressBytes)
	if err != nil {
		return nil, fmt.Errorf("generate address: %w", err)
	}
	secret, err := generateRandomHex(s.secretBytes)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return &domain.Identity{
		Address: address,
		Secret:  secret,
		Digest:  s.Digest(secret),
	}, nil
}

// Digest returns the hex SHA-256 of secret.
func (s *IdentityService) Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Verify compares the digest of secret with digest in constant time.
func (s *IdentityService) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Digest(secret)), []byte(digest)) == 1
}

// generateRandomHex generates n random bytes and returns hex-encoded string.
func generateRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
