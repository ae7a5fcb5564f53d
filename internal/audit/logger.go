package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

// Logger records account business events on a dedicated zerolog logger.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) event(ctx context.Context, e *zerolog.Event, action string) *zerolog.Event {
	e = e.Str("action", action)
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		e = e.Str("request_id", rid)
	}
	if ip := appCtx.GetClientIP(ctx); ip != "" {
		e = e.Str("ip", ip)
	}
	return e
}

func (l *Logger) UserRegistered(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "user_registered").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("User registered")
}

func (l *Logger) LoginSuccess(ctx context.Context, userID, email, scheme string) {
	l.event(ctx, l.log.Info(), "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("scheme", scheme).
		Msg("User logged in successfully")
}

// LoginFailed is called for bad credentials and unverified accounts alike;
// reason tells them apart.
func (l *Logger) LoginFailed(ctx context.Context, email, scheme, reason string) {
	l.event(ctx, l.log.Warn(), "login_failed").
		Str("email", maskEmail(email)).
		Str("scheme", scheme).
		Str("reason", reason).
		Msg("Login attempt failed")
}

func (l *Logger) Logout(ctx context.Context, userID string) {
	l.event(ctx, l.log.Info(), "logout").
		Str("user_id", userID).
		Msg("User logged out")
}

func (l *Logger) PasswordChanged(ctx context.Context, userID string) {
	l.event(ctx, l.log.Info(), "password_changed").
		Str("user_id", userID).
		Msg("User password changed")
}

func (l *Logger) ActivationResent(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "activation_resent").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("Activation email requested")
}

func (l *Logger) AccountVerified(ctx context.Context, userID, email string) {
	l.event(ctx, l.log.Info(), "account_verified").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Msg("Account verified")
}

// maskEmail keeps the first two characters of the local part and the domain.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
