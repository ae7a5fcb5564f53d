package security

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// AuthTokenKeyBytes yields a 40 character hex key.
const AuthTokenKeyBytes = 20

// NewAuthTokenKey returns a random key for the "Token <key>" scheme.
func NewAuthTokenKey() (string, error) {
	b := make([]byte, AuthTokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	return hex.EncodeToString(b), nil
}
