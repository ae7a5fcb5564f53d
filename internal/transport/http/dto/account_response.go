package dto

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type UserView struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

type RegistrationData struct {
	User UserView `json:"user"`
}

type TokenLoginData struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type TokenPairData struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	ExpiresIn int64  `json:"expires_in"`
}

type AccessData struct {
	Access string `json:"access"`
}
