package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/policy"
)

// Login schemes, used for audit and metrics labels.
const (
	SchemeToken = "token"
	SchemeJWT   = "jwt"
)

type Service struct {
	users      UserRepo
	hasher     PasswordHasher
	tokens     TokenIssuer
	authTokens AuthTokenStore
	pub        EventPublisher
	policy     PasswordPolicy
	audit      Auditor

	// activationBaseURL is the confirm link prefix, e.g.
	// https://api/accounts/v1/activation/confirm/
	activationBaseURL string
	now               func() time.Time
}

type Config struct {
	ActivationBaseURL string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenIssuer,
	authTokens AuthTokenStore,
	pub EventPublisher,
	pol PasswordPolicy,
	cfg Config,
) *Service {
	if pol == nil {
		pol = policy.Default(policy.DefaultMinLength)
	}
	return &Service{
		users:             users,
		hasher:            hasher,
		tokens:            tokens,
		authTokens:        authTokens,
		pub:               pub,
		policy:            pol,
		audit:             audit.Nop(),
		activationBaseURL: cfg.ActivationBaseURL,
		now:               time.Now,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

// BasicLoginResult is returned by the "Token <key>" login.
type BasicLoginResult struct {
	Token string
	User  domain.User
}

// TokenPair is returned by the JWT login.
type TokenPair struct {
	Access    string
	Refresh   string
	Email     string
	UserID    string
	ExpiresIn int64 // access lifetime in seconds
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sendActivation issues an activation token and publishes the link.
func (s *Service) sendActivation(ctx context.Context, u domain.User) error {
	tok, err := s.tokens.Issue(u.ID, u.Email, TokenActivation)
	if err != nil {
		return domain.ErrTokenSignFailed(err)
	}
	return s.pub.PublishActivation(ctx, ActivationEvent{
		UserID: u.ID,
		Email:  u.Email,
		URL:    s.activationBaseURL + tok,
	})
}

func logWarn(ctx context.Context, err error, msg string) {
	logger.WithCtx(ctx).Warn().Err(err).Msg(msg)
}
