package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type JWTIssuer struct {
	secret []byte
	issuer string
	ttls   map[accounts.TokenType]time.Duration
	now    func() time.Time
}

type TTLs struct {
	Access     time.Duration
	Refresh    time.Duration
	Activation time.Duration
}

func NewJWTIssuer(secret, issuer string, ttls TTLs) *JWTIssuer {
	if ttls.Access <= 0 {
		ttls.Access = 15 * time.Minute
	}
	if ttls.Refresh <= 0 {
		ttls.Refresh = 24 * time.Hour
	}
	if ttls.Activation <= 0 {
		ttls.Activation = 24 * time.Hour
	}
	return &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttls: map[accounts.TokenType]time.Duration{
			accounts.TokenAccess:     ttls.Access,
			accounts.TokenRefresh:    ttls.Refresh,
			accounts.TokenActivation: ttls.Activation,
		},
		now: time.Now,
	}
}

type claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) TTL(typ accounts.TokenType) time.Duration {
	return s.ttls[typ]
}

func (s *JWTIssuer) Issue(userID, email string, typ accounts.TokenType) (string, error) {
	ttl, ok := s.ttls[typ]
	if !ok {
		return "", domain.ErrTokenSignFailed(errors.New("unknown token type " + string(typ)))
	}

	now := s.now()
	c := claims{
		UserID:    userID,
		Email:     email,
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTIssuer) Verify(token string, want accounts.TokenType) (accounts.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return accounts.TokenClaims{}, domain.ErrTokenExpired()
		}
		return accounts.TokenClaims{}, domain.ErrTokenInvalid()
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UserID == "" {
		return accounts.TokenClaims{}, domain.ErrTokenInvalid()
	}
	typ := accounts.TokenType(c.TokenType)
	if _, known := s.ttls[typ]; !known {
		return accounts.TokenClaims{}, domain.ErrTokenInvalid()
	}
	if want != "" && typ != want {
		return accounts.TokenClaims{}, domain.ErrTokenInvalid()
	}

	return accounts.TokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
		Type:   typ,
		Exp:    c.ExpiresAt.Time,
	}, nil
}
