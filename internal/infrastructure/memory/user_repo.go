package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// UserRepo is an accounts.UserRepo held in process memory, for dev mode and
// tests. Emails are matched case-insensitively, as in the postgres repo.
type UserRepo struct {
	mu     sync.RWMutex
	users  map[string]domain.User // id -> user
	emails map[string]string      // lower(email) -> id
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users:  map[string]domain.User{},
		emails: map[string]string{},
	}
}

func emailKey(email string) string { return strings.ToLower(email) }

func (r *UserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.emails[emailKey(email)]; ok {
		return r.users[id], nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(errors.New("memory: user id is empty"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if _, taken := r.emails[key]; taken {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	r.users[u.ID] = u
	r.emails[key] = u.ID
	return u, nil
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, userID string, newHash string) error {
	return r.mutate(userID, func(u *domain.User) { u.PasswordHash = newHash })
}

func (r *UserRepo) SetVerified(_ context.Context, userID string) error {
	return r.mutate(userID, func(u *domain.User) { u.IsVerified = true })
}

func (r *UserRepo) mutate(userID string, apply func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	apply(&u)
	r.users[userID] = u
	return nil
}
