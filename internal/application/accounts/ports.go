package accounts

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/policy"
)

/*
UserRepo
--------
Persistence port for accounts.
GetByEmail and GetByID return domain.ErrUserNotFound when nothing matches.
Create returns domain.ErrEmailAlreadyExists on a unique violation.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetVerified(ctx context.Context, userID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenIssuer
-----------
Signs and verifies the JWTs handed out by the service.
Every token carries a type so an activation token can never be used as an
access token and vice versa.
*/
type TokenType string

const (
	TokenAccess     TokenType = "access"
	TokenRefresh    TokenType = "refresh"
	TokenActivation TokenType = "activation"
)

type TokenClaims struct {
	UserID string
	Email  string
	Type   TokenType
	Exp    time.Time
}

type TokenIssuer interface {
	Issue(userID, email string, typ TokenType) (string, error)
	// Verify checks signature and expiry. When want is non-empty the token
	// type must match.
	Verify(token string, want TokenType) (TokenClaims, error)
	TTL(typ TokenType) time.Duration
}

/*
AuthTokenStore
--------------
Opaque keys for the "Token <key>" scheme, one per user.
*/
type AuthTokenStore interface {
	GetOrCreate(ctx context.Context, userID string) (domain.AuthToken, error)
	Delete(ctx context.Context, userID string) error
	UserIDByKey(ctx context.Context, key string) (string, error)
}

/*
EventPublisher
--------------
The activation email itself is sent by a downstream consumer.
*/
type EventPublisher interface {
	PublishActivation(ctx context.Context, evt ActivationEvent) error
}

type ActivationEvent struct {
	UserID string
	Email  string
	URL    string
}

// PasswordPolicy returns nil when the password is acceptable.
type PasswordPolicy interface {
	Validate(password string, attrs []policy.Attribute) []string
}

// Auditor receives business events. *audit.Logger satisfies it.
type Auditor interface {
	UserRegistered(ctx context.Context, userID, email string)
	LoginSuccess(ctx context.Context, userID, email, scheme string)
	LoginFailed(ctx context.Context, email, scheme, reason string)
	Logout(ctx context.Context, userID string)
	PasswordChanged(ctx context.Context, userID string)
	ActivationResent(ctx context.Context, userID, email string)
	AccountVerified(ctx context.Context, userID, email string)
}
