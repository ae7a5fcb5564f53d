package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/policy"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

const (
	activationBase = "http://test.local/accounts/v1/activation/confirm/"
	strongPassword = "Xk9#vLq2!mPz"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []accounts.ActivationEvent
	err    error
}

func (p *recordingPublisher) PublishActivation(_ context.Context, evt accounts.ActivationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) last(t *testing.T) accounts.ActivationEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events, "no activation event published")
	return p.events[len(p.events)-1]
}

type testEnv struct {
	h      *AccountsHandler
	users  *memory.UserRepo
	pub    *recordingPublisher
	hasher *security.BcryptHasher
}

func newTestAccountsHandler(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:  memory.NewUserRepo(),
		pub:    &recordingPublisher{},
		hasher: security.NewBcryptHasher(bcrypt.MinCost),
	}
	issuer := security.NewJWTIssuer("test-secret", "account-service", security.TTLs{})
	svc := accounts.NewService(
		env.users,
		env.hasher,
		issuer,
		memory.NewAuthTokenStore(),
		env.pub,
		policy.Default(policy.DefaultMinLength),
		accounts.Config{ActivationBaseURL: activationBase},
	)
	env.h = NewAccountsHandler(svc)
	return env
}

func (env *testEnv) seedUser(t *testing.T, email, password string, verified bool) domain.User {
	t.Helper()
	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)

	u, err := env.users.Create(context.Background(), domain.User{
		ID:           "id-" + email,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   verified,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return u
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func do(t *testing.T, fn http.HandlerFunc, method string, body any, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		rdr = mustJSONBody(t, b)
	}

	req := httptest.NewRequest(method, "/x", rdr)
	req.Header.Set("Content-Type", "application/json")
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func authed(userID string) context.Context {
	return middleware.WithUser(context.Background(), userID, "")
}

// withURLParam attaches a chi route param the way the router would.
func withURLParam(key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
}

func mustData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body=%s", rr.Body.String())
	return env.Data
}

func mustError(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorPayload {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body.Error
}
