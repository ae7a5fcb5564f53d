package dto

import "strings"

// Request bodies. New passwords are capped at bcrypt's 72-byte input limit.

type RegistrationRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	ConfPass string `json:"conf_pass" validate:"required"`
}

func (r *RegistrationRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// LoginRequest is shared by the token and JWT logins. The email is not
// format-checked so that a malformed address fails like any bad credential.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,maxbytes=72"`
	NewPasswordConf string `json:"new_password_conf" validate:"required"`
}

type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r *ResendActivationRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
