package accounts

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type LoginInput struct {
	Email    string
	Password string
}

// authenticate resolves the account for a credential pair. Unknown email,
// inactive account and wrong password all collapse into invalid credentials.
// A correct password on an unverified account is reported as such, and only
// after the password has been checked.
func (s *Service) authenticate(ctx context.Context, in LoginInput, scheme string) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit.LoginFailed(ctx, email, scheme, "unknown_email")
			return domain.User{}, domain.ErrInvalidCredentials()
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		s.audit.LoginFailed(ctx, email, scheme, "inactive")
		return domain.User{}, domain.ErrInvalidCredentials()
	}
	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		s.audit.LoginFailed(ctx, email, scheme, "bad_password")
		return domain.User{}, domain.ErrInvalidCredentials()
	}
	if !u.IsVerified {
		s.audit.LoginFailed(ctx, email, scheme, "not_verified")
		return domain.User{}, domain.ErrAccountNotVerified()
	}
	return u, nil
}

// LoginBasic authenticates and returns the user's opaque auth token,
// creating it on first login.
func (s *Service) LoginBasic(ctx context.Context, in LoginInput) (BasicLoginResult, error) {
	u, err := s.authenticate(ctx, in, SchemeToken)
	if err != nil {
		return BasicLoginResult{}, err
	}

	tok, err := s.authTokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return BasicLoginResult{}, err
	}

	s.audit.LoginSuccess(ctx, u.ID, u.Email, SchemeToken)
	return BasicLoginResult{Token: tok.Key, User: u}, nil
}

// LoginToken authenticates and issues a signed access/refresh pair.
func (s *Service) LoginToken(ctx context.Context, in LoginInput) (TokenPair, error) {
	u, err := s.authenticate(ctx, in, SchemeJWT)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.tokens.Issue(u.ID, u.Email, TokenAccess)
	if err != nil {
		return TokenPair{}, domain.ErrTokenSignFailed(err)
	}
	refresh, err := s.tokens.Issue(u.ID, u.Email, TokenRefresh)
	if err != nil {
		return TokenPair{}, domain.ErrTokenSignFailed(err)
	}

	s.audit.LoginSuccess(ctx, u.ID, u.Email, SchemeJWT)
	return TokenPair{
		Access:    access,
		Refresh:   refresh,
		Email:     u.Email,
		UserID:    u.ID,
		ExpiresIn: int64(s.tokens.TTL(TokenAccess).Seconds()),
	}, nil
}

// LogoutBasic removes the user's auth token. Missing tokens are not an error.
func (s *Service) LogoutBasic(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrTokenMissing()
	}
	if err := s.authTokens.Delete(ctx, userID); err != nil {
		return err
	}
	s.audit.Logout(ctx, userID)
	return nil
}
