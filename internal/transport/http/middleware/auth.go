package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Authenticator resolves the caller from an Authorization scheme and
// credential ("Bearer <jwt>" or "Token <key>").
type Authenticator interface {
	Authenticate(ctx context.Context, scheme, credential string) (domain.User, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth reads the Authorization header, resolves the user and injects it into
// the request context.
func Auth(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			scheme, credential, ok := strings.Cut(h, " ")
			if !ok || strings.TrimSpace(credential) == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			u, err := authn.Authenticate(r.Context(), scheme, strings.TrimSpace(credential))
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := WithUser(r.Context(), u.ID, u.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
