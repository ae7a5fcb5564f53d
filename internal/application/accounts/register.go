package accounts

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type RegistrationInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates a sign-up and creates an unverified account.
//
// Checks run in order: email uniqueness, password confirmation, byte length,
// password policy. The policy gets no user attributes, so similarity to the
// email is not checked. The confirmation value is only compared, never stored.
func (s *Service) Register(ctx context.Context, in RegistrationInput) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return domain.User{}, domain.ErrMissingField("password")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return domain.User{}, err
	}

	if in.Password != in.ConfirmPassword {
		return domain.User{}, domain.ErrPasswordMismatch()
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return domain.User{}, domain.ErrPasswordTooLong("password")
	}
	if msgs := s.policy.Validate(in.Password, nil); len(msgs) > 0 {
		return domain.User{}, domain.ErrWeakPassword("password", msgs)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.User{}, err
	}
	s.audit.UserRegistered(ctx, created.ID, created.Email)

	// The account exists at this point; a lost activation mail can be
	// re-requested through ResendVerification.
	if err := s.sendActivation(ctx, created); err != nil {
		logWarn(ctx, err, "activation publish failed after registration")
	}

	return created, nil
}
