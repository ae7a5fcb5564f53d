package domain

import "time"

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
}

// AuthToken is the opaque key used by the "Token <key>" scheme.
// A user has at most one.
type AuthToken struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
