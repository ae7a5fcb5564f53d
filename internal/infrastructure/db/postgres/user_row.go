package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type userRow struct {
	ID           string
	Email        string
	PasswordHash string
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
}

const userColumns = `id, email, password_hash, is_verified, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.IsVerified,
		&ur.IsActive,
		&ur.CreatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:           ur.ID,
		Email:        ur.Email,
		PasswordHash: ur.PasswordHash,
		IsVerified:   ur.IsVerified,
		IsActive:     ur.IsActive,
		CreatedAt:    ur.CreatedAt,
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
