package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

// ChangePassword replaces the password of an authenticated user.
//
// The new pair is validated first (confirmation, byte length, policy) so the
// old password is only checked for an otherwise acceptable request. On success
// the user's basic auth token is revoked.
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if userID == "" {
		return domain.ErrTokenMissing()
	}
	for _, f := range []struct{ name, value string }{
		{"old_password", in.OldPassword},
		{"new_password", in.NewPassword},
		{"new_password_conf", in.NewPasswordConfirm},
	} {
		if f.value == "" {
			return domain.ErrMissingField(f.name)
		}
	}

	if in.NewPassword != in.NewPasswordConfirm {
		return domain.ErrPasswordMismatch()
	}
	if len(in.NewPassword) > domain.MaxPasswordBytes {
		return domain.ErrPasswordTooLong("new_password")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if msgs := s.policy.Validate(in.NewPassword, nil); len(msgs) > 0 {
		return domain.ErrWeakPassword("new_password", msgs)
	}

	if err := s.hasher.Compare(u.PasswordHash, in.OldPassword); err != nil {
		return domain.ErrWrongPassword()
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if err := s.authTokens.Delete(ctx, userID); err != nil {
		logWarn(ctx, err, "auth token revoke failed after password change")
	}
	s.audit.PasswordChanged(ctx, userID)
	return nil
}
