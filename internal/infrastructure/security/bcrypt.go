package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// BcryptHasher implements accounts.PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher uses bcrypt.DefaultCost for costs below bcrypt.MinCost and
// caps costs at bcrypt.MaxCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects input over domain.MaxPasswordBytes as a validation error.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", domain.ErrPasswordTooLong(domain.FieldDetail)
	case err != nil:
		return "", domain.ErrHashFailed(err)
	}
	return string(digest), nil
}

// Compare returns nil on a match. A malformed stored hash is reported as an
// internal error rather than a wrong password.
func (h *BcryptHasher) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return err
	default:
		return domain.ErrInternal(err)
	}
}
