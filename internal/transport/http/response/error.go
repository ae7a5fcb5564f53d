package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Meta      map[string]string   `json:"meta,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// WriteError renders err as an ErrorBody. Anything that is not a
// *domain.Error becomes a bare 500 so internal details never reach clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	payload := ErrorPayload{Code: "internal_error", Message: "internal error"}

	var de *domain.Error
	if errors.As(err, &de) {
		status = StatusFromKind(de.Kind)
		payload.Code = de.Code
		payload.Message = de.Message
		payload.Meta = de.Meta
		payload.Fields = de.Fields
	}
	payload.RequestID = appCtx.GetRequestID(r.Context())

	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: payload})
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
	domain.KindInternal:       http.StatusInternalServerError,
}

// StatusFromKind maps an error kind to its HTTP status; unknown kinds are 500.
func StatusFromKind(kind domain.ErrKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
