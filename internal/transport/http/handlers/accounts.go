package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/validation"
)

type AccountsHandler struct {
	svc *accounts.Service
}

func NewAccountsHandler(svc *accounts.Service) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

// decode reads and validates a request body, writing the error response on
// failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := response.DecodeJSON(w, r, dst); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	if n, ok := dst.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if err := validation.Struct(dst); err != nil {
		response.WriteError(w, r, err)
		return false
	}
	return true
}

// fail records the event outcome and writes err.
func fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	middleware.RecordAccountEvent(event, err)
	response.WriteError(w, r, err)
}

// Register handles POST /registration.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegistrationRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), accounts.RegistrationInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfPass,
	})
	if err != nil {
		fail(w, r, middleware.EventRegistration, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventRegistration, nil)

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	response.Created(w, r, dto.RegistrationData{User: dto.NewUserView(u)})
}

// LoginToken handles POST /token/login.
func (h *AccountsHandler) LoginToken(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.LoginBasic(r.Context(), accounts.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		fail(w, r, middleware.EventLoginToken, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventLoginToken, nil)

	response.OK(w, r, dto.TokenLoginData{Token: res.Token, User: dto.NewUserView(res.User)})
}

// LogoutToken handles POST /token/logout.
func (h *AccountsHandler) LogoutToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	if err := h.svc.LogoutBasic(r.Context(), userID); err != nil {
		fail(w, r, middleware.EventLogout, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventLogout, nil)

	response.NoContent(w, r)
}

// JWTCreate handles POST /jwt/create.
func (h *AccountsHandler) JWTCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.svc.LoginToken(r.Context(), accounts.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		fail(w, r, middleware.EventLoginJWT, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventLoginJWT, nil)

	response.OK(w, r, dto.TokenPairData{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		Email:     pair.Email,
		UserID:    pair.UserID,
		ExpiresIn: pair.ExpiresIn,
	})
}

// JWTRefresh handles POST /jwt/refresh.
func (h *AccountsHandler) JWTRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	access, err := h.svc.RefreshToken(r.Context(), req.Refresh)
	if err != nil {
		fail(w, r, middleware.EventRefresh, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventRefresh, nil)

	response.OK(w, r, dto.AccessData{Access: access})
}

// JWTVerify handles POST /jwt/verify.
func (h *AccountsHandler) JWTVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyTokenRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.svc.VerifyToken(r.Context(), req.Token); err != nil {
		fail(w, r, middleware.EventVerify, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventVerify, nil)

	response.OK(w, r, struct{}{})
}

// ChangePassword handles PUT /change-password.
func (h *AccountsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.ChangePassword(r.Context(), userID, accounts.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConf,
	})
	if err != nil {
		fail(w, r, middleware.EventPasswordChange, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventPasswordChange, nil)

	response.OK(w, r, response.Detail{Detail: "password changed successfully"})
}

// ResendActivation handles POST /activation/resend.
func (h *AccountsHandler) ResendActivation(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendActivationRequest
	if !decode(w, r, &req) {
		return
	}

	if _, err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		fail(w, r, middleware.EventActivationResend, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventActivationResend, nil)

	response.OK(w, r, response.Detail{Detail: "activation email sent"})
}

// ConfirmActivation handles GET /activation/confirm/{token}.
func (h *AccountsHandler) ConfirmActivation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	u, err := h.svc.ConfirmActivation(r.Context(), token)
	if err != nil {
		fail(w, r, middleware.EventActivationVerify, err)
		return
	}
	middleware.RecordAccountEvent(middleware.EventActivationVerify, nil)

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("account_verified")

	response.OK(w, r, response.Detail{Detail: "account verified"})
}
