package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

// AuthTokenRepo stores "Token <key>" credentials, one row per user.
type AuthTokenRepo struct {
	db     *sql.DB
	newKey func() (string, error)
}

func NewAuthTokenRepo(db *sql.DB) *AuthTokenRepo {
	return &AuthTokenRepo{db: db, newKey: security.NewAuthTokenKey}
}

// GetOrCreate inserts a fresh key or returns the existing one. The no-op
// update on conflict makes RETURNING yield the stored row in one round trip.
func (r *AuthTokenRepo) GetOrCreate(ctx context.Context, userID string) (domain.AuthToken, error) {
	key, err := r.newKey()
	if err != nil {
		return domain.AuthToken{}, err
	}

	const q = `
INSERT INTO auth_tokens (key, user_id)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING key, user_id, created_at`

	var t domain.AuthToken
	if err := r.db.QueryRowContext(ctx, q, key, userID).Scan(&t.Key, &t.UserID, &t.CreatedAt); err != nil {
		return domain.AuthToken{}, domain.ErrDBUnavailable(err)
	}
	return t, nil
}

func (r *AuthTokenRepo) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *AuthTokenRepo) UserIDByKey(ctx context.Context, key string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM auth_tokens WHERE key = $1`, key).Scan(&userID)
	if err != nil {
		if isNoRows(err) {
			return "", domain.ErrTokenInvalid()
		}
		return "", domain.ErrDBUnavailable(err)
	}
	return userID, nil
}
