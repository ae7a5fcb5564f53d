package accounts

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Authorization header schemes accepted by Authenticate.
const (
	AuthSchemeBearer = "Bearer"
	AuthSchemeToken  = "Token"
)

// RefreshToken exchanges a refresh JWT for a new access JWT. The account
// must still exist and be active.
func (s *Service) RefreshToken(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", domain.ErrMissingField("refresh")
	}

	claims, err := s.tokens.Verify(refresh, TokenRefresh)
	if err != nil {
		return "", err
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.tokens.Issue(u.ID, u.Email, TokenAccess)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return access, nil
}

// VerifyToken reports whether token is a valid, unexpired JWT issued by
// this service, of any type.
func (s *Service) VerifyToken(_ context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	_, err := s.tokens.Verify(token, "")
	return err
}

// Authenticate resolves the caller of an authenticated request from an
// Authorization scheme and credential.
func (s *Service) Authenticate(ctx context.Context, scheme, credential string) (domain.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.User{}, domain.ErrTokenMissing()
	}

	var userID string
	switch {
	case strings.EqualFold(scheme, AuthSchemeBearer):
		claims, err := s.tokens.Verify(credential, TokenAccess)
		if err != nil {
			return domain.User{}, err
		}
		userID = claims.UserID
	case strings.EqualFold(scheme, AuthSchemeToken):
		id, err := s.authTokens.UserIDByKey(ctx, credential)
		if err != nil {
			return domain.User{}, err
		}
		userID = id
	default:
		return domain.User{}, domain.ErrTokenInvalid()
	}

	return s.activeUser(ctx, userID)
}

// activeUser maps a vanished or deactivated account to an invalid token so
// callers cannot probe account state through stale credentials.
func (s *Service) activeUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrTokenInvalid()
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		return domain.User{}, domain.ErrTokenInvalid()
	}
	return u, nil
}
