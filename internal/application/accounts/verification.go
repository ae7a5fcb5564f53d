package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// ResendVerification publishes a fresh activation link for an existing,
// still unverified account.
func (s *Service) ResendVerification(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsVerified {
		return domain.User{}, domain.ErrAlreadyVerified()
	}

	if err := s.sendActivation(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.audit.ActivationResent(ctx, u.ID, u.Email)
	return u, nil
}

// ConfirmActivation marks the account named by an activation token as
// verified.
func (s *Service) ConfirmActivation(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrTokenMissing()
	}

	claims, err := s.tokens.Verify(token, TokenActivation)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if u.IsVerified {
		return domain.User{}, domain.ErrAlreadyVerified()
	}

	if err := s.users.SetVerified(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	u.IsVerified = true

	s.audit.AccountVerified(ctx, u.ID, u.Email)
	return u, nil
}
