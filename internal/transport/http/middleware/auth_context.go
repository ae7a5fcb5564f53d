package middleware

import "context"

type principalKey struct{}

// principal is the authenticated caller stored by Auth.
type principal struct {
	userID string
	email  string
}

func WithUser(ctx context.Context, userID, email string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal{userID: userID, email: email})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.userID, p.userID != ""
}

func EmailFromContext(ctx context.Context) (string, bool) {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.email, p.email != ""
}
