package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

type decodeDst struct {
	A string `json:"a"`
	B int    `json:"b"`
}

func newReqWithBody(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSON_SingleObject(t *testing.T) {
	var dst decodeDst
	err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(`{"a":"x","b":1,"extra":true}`), &dst)

	require.NoError(t, err)
	assert.Equal(t, decodeDst{A: "x", B: 1}, dst)
}

func TestDecodeJSON_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"a":"x",`,
		"empty":          ``,
		"trailing":       `{}{}`,
		"trailing brace": `{}}`,
		"wrong type":     `{"b":"one"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dst decodeDst
			err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(body), &dst)
			assert.True(t, domain.Is(err, "invalid_json"), "got %v", err)
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"a":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	var dst decodeDst
	err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(body), &dst)
	assert.True(t, domain.Is(err, "invalid_json"))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorPayload {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%q", rr.Body.String())
	return body.Error
}

func TestWriteError_DomainError_CarriesFieldsAndRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req = req.WithContext(appCtx.WithRequestID(req.Context(), "req-1"))
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrWeakPassword("password", []string{"This password is too common."}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	p := decodeError(t, rr)
	assert.Equal(t, "weak_password", p.Code)
	assert.Equal(t, "req-1", p.RequestID)
	assert.Equal(t, []string{"This password is too common."}, p.Fields["password"])
}

func TestWriteError_NonDomainError_IsOpaque500(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	p := decodeError(t, rr)
	assert.Equal(t, "internal_error", p.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
	assert.Empty(t, p.RequestID)
}

func TestWriteError_WrappedCauseNotLeaked(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), domain.ErrDBUnavailable(errors.New("dial tcp 10.0.0.1")))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.1")
}

func TestStatusFromKind(t *testing.T) {
	cases := map[domain.ErrKind]int{
		domain.KindValidation:     http.StatusBadRequest,
		domain.KindAuth:           http.StatusUnauthorized,
		domain.KindForbidden:      http.StatusForbidden,
		domain.KindNotFound:       http.StatusNotFound,
		domain.KindConflict:       http.StatusConflict,
		domain.KindRateLimited:    http.StatusTooManyRequests,
		domain.KindInfrastructure: http.StatusServiceUnavailable,
		domain.KindInternal:       http.StatusInternalServerError,
		domain.ErrKind("other"):   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFromKind(kind), string(kind))
	}
}

func TestSuccessWriters(t *testing.T) {
	rr := httptest.NewRecorder()
	Created(rr, httptest.NewRequest(http.MethodPost, "/x", nil), Detail{Detail: "ok"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"data":{"detail":"ok"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	OK(rr, httptest.NewRequest(http.MethodGet, "/x", nil), map[string]string{})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	NoContent(rr, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
