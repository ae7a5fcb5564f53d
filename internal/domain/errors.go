package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Keys used in Fields for errors that are not tied to a single input field.
const (
	FieldDetail   = "detail"
	FieldNonField = "non_field_errors"
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients
// - Meta: optional details (scope, reason, etc.)
// - Fields: user-facing messages keyed by input field name
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Fields  map[string][]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func WithFields(err *Error, fields map[string][]string) *Error {
	err.Fields = fields
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldMessages returns the messages recorded for field, or nil.
func FieldMessages(err error, field string) []string {
	var de *Error
	if errors.As(err, &de) && de.Fields != nil {
		return de.Fields[field]
	}
	return nil
}

func fieldMsg(field, msg string) map[string][]string {
	return map[string][]string{field: {msg}}
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

// ErrFieldErrors reports request-shape failures (required, format, length).
func ErrFieldErrors(fields map[string][]string) *Error {
	return WithFields(New(KindValidation, "invalid_fields", "invalid input"), fields)
}

func ErrMissingField(field string) *Error {
	return WithFields(
		WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{"field": field}),
		fieldMsg(field, "This field is required."),
	)
}

func ErrPasswordMismatch() *Error {
	return WithFields(New(KindValidation, "password_mismatch", "passwords do not match"),
		fieldMsg(FieldDetail, "passwords do not match"))
}

// ErrWeakPassword carries the full message list produced by the password policy.
func ErrWeakPassword(field string, msgs []string) *Error {
	cp := make([]string, len(msgs))
	copy(cp, msgs)
	return WithFields(New(KindValidation, "weak_password", "password does not meet requirements"),
		map[string][]string{field: cp})
}

// ErrPasswordTooLong reports a password beyond what the hasher accepts.
func ErrPasswordTooLong(field string) *Error {
	return WithFields(New(KindValidation, "password_too_long", "password too long"),
		fieldMsg(field, fmt.Sprintf("Ensure this field has no more than %d bytes.", MaxPasswordBytes)))
}

func ErrWrongPassword() *Error {
	return WithFields(New(KindValidation, "wrong_password", "wrong password"),
		fieldMsg("old_password", "Wrong password."))
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for login failures to avoid user enumeration.
func ErrInvalidCredentials() *Error {
	return WithFields(New(KindAuth, "invalid_credentials", "invalid email or password"),
		fieldMsg(FieldNonField, "Unable to log in with provided credentials."))
}

func ErrTokenMissing() *Error {
	return WithFields(New(KindAuth, "token_missing", "no token provided"),
		fieldMsg(FieldDetail, "Authentication credentials were not provided."))
}

func ErrTokenInvalid() *Error {
	return WithFields(New(KindAuth, "token_invalid", "invalid token"),
		fieldMsg(FieldDetail, "Token is invalid."))
}

func ErrTokenExpired() *Error {
	return WithFields(New(KindAuth, "token_expired", "token is expired"),
		fieldMsg(FieldDetail, "Token is expired."))
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrAccountNotVerified() *Error {
	return WithFields(New(KindForbidden, "account_not_verified", "account not verified"),
		fieldMsg(FieldDetail, "user is not verified"))
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return WithFields(New(KindNotFound, "user_not_found", "user not found"),
		fieldMsg(FieldDetail, "User does not exist"))
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return WithFields(New(KindConflict, "email_already_exists", "email already registered"),
		fieldMsg("email", "user with this email already exists."))
}

func ErrAlreadyVerified() *Error {
	return WithFields(New(KindConflict, "already_verified", "account already verified"),
		fieldMsg(FieldDetail, "User is already verified"))
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "message broker unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
