package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if !isUserID(id) {
		return domain.User{}, domain.ErrUserNotFound()
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	q := `
INSERT INTO users (id, email, password_hash, is_verified, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.IsVerified, u.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}
	return r.execOne(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, newHash)
}

func (r *UserRepo) SetVerified(ctx context.Context, userID string) error {
	return r.execOne(ctx,
		`UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`,
		userID)
}

// isUserID reports whether id can match the UUID primary key. Postgres
// rejects anything else with a syntax error, not an empty result.
func isUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// execOne runs an update that must touch exactly the row for userID.
func (r *UserRepo) execOne(ctx context.Context, q string, userID string, args ...any) error {
	if !isUserID(userID) {
		return domain.ErrUserNotFound()
	}
	res, err := r.db.ExecContext(ctx, q, append([]any{userID}, args...)...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
