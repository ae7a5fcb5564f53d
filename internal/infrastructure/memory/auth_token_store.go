package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

// AuthTokenStore holds one opaque key per user.
type AuthTokenStore struct {
	mu     sync.Mutex
	byUser map[string]domain.AuthToken
	byKey  map[string]string // key -> userID
	newKey func() (string, error)
}

func NewAuthTokenStore() *AuthTokenStore {
	return &AuthTokenStore{
		byUser: make(map[string]domain.AuthToken),
		byKey:  make(map[string]string),
		newKey: security.NewAuthTokenKey,
	}
}

func (s *AuthTokenStore) GetOrCreate(ctx context.Context, userID string) (domain.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.byUser[userID]; ok {
		return t, nil
	}

	key, err := s.newKey()
	if err != nil {
		return domain.AuthToken{}, err
	}
	t := domain.AuthToken{Key: key, UserID: userID, CreatedAt: time.Now().UTC()}
	s.byUser[userID] = t
	s.byKey[key] = userID
	return t, nil
}

func (s *AuthTokenStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.byUser[userID]; ok {
		delete(s.byKey, t.Key)
		delete(s.byUser, userID)
	}
	return nil
}

func (s *AuthTokenStore) UserIDByKey(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return "", domain.ErrTokenInvalid()
	}
	return id, nil
}
