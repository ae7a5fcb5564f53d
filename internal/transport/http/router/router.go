package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AccountsHandler interface {
	Register(w http.ResponseWriter, r *http.Request)

	// "Token <key>" scheme
	LoginToken(w http.ResponseWriter, r *http.Request)
	LogoutToken(w http.ResponseWriter, r *http.Request)

	// JWT scheme
	JWTCreate(w http.ResponseWriter, r *http.Request)
	JWTRefresh(w http.ResponseWriter, r *http.Request)
	JWTVerify(w http.ResponseWriter, r *http.Request)

	ChangePassword(w http.ResponseWriter, r *http.Request)

	// Activation
	ResendActivation(w http.ResponseWriter, r *http.Request)
	ConfirmActivation(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health   HealthHandler
	Accounts AccountsHandler

	AuthMW Middleware

	// Optional per-route limits; nil means unlimited.
	RLRegistration Middleware
	RLLogin        Middleware
	RLResend       Middleware
	RLPassword     Middleware

	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("nil Accounts handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", deps.Metrics)

	a := deps.Accounts
	r.Route("/accounts/v1", func(r chi.Router) {
		r.With(optional(deps.RLRegistration)...).Post("/registration", a.Register)

		r.Group(func(r chi.Router) {
			r.Use(optional(deps.RLLogin)...)
			r.Post("/token/login", a.LoginToken)
			r.Post("/jwt/create", a.JWTCreate)
		})
		r.With(deps.AuthMW).Post("/token/logout", a.LogoutToken)

		r.Post("/jwt/refresh", a.JWTRefresh)
		r.Post("/jwt/verify", a.JWTVerify)

		r.With(append([]Middleware{deps.AuthMW}, optional(deps.RLPassword)...)...).
			Put("/change-password", a.ChangePassword)

		r.With(optional(deps.RLResend)...).Post("/activation/resend", a.ResendActivation)
		r.Get("/activation/confirm/{token}", a.ConfirmActivation)
	})

	return r, nil
}

func optional(mws ...Middleware) []Middleware {
	out := make([]Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
