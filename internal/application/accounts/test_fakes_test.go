package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/policy"
)

const strongPassword = "Xk9#vLq2!mPz"

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr     error
	getByEmailErr  error
	createErr      error
	updatePwdErr   error
	setVerifiedErr error

	// record calls
	created    []domain.User
	updatedPwd []struct{ id, hash string }
	verified   []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifiedErr != nil {
		return f.setVerifiedErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.IsVerified = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.verified = append(f.verified, userID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error

	hashed []string
}

func (h *fakeHasher) Hash(password string) (string, error) {
	h.hashed = append(h.hashed, password)
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens encodes claims as "type|userID|email". The literal "expired"
// verifies as an expired token.
type fakeTokens struct {
	issueErr error
	issued   []string
}

func (f *fakeTokens) Issue(userID, email string, typ TokenType) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	tok := fmt.Sprintf("%s|%s|%s", typ, userID, email)
	f.issued = append(f.issued, tok)
	return tok, nil
}

func (f *fakeTokens) Verify(token string, want TokenType) (TokenClaims, error) {
	if token == "expired" {
		return TokenClaims{}, domain.ErrTokenExpired()
	}
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	typ := TokenType(parts[0])
	if want != "" && typ != want {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return TokenClaims{UserID: parts[1], Email: parts[2], Type: typ, Exp: time.Now().Add(time.Hour)}, nil
}

func (f *fakeTokens) TTL(typ TokenType) time.Duration {
	if typ == TokenAccess {
		return 15 * time.Minute
	}
	return 24 * time.Hour
}

type fakeAuthTokens struct {
	mu sync.Mutex

	byUser map[string]string // userID -> key

	getOrCreateErr error
	deleteErr      error

	deleted []string
}

func newFakeAuthTokens() *fakeAuthTokens {
	return &fakeAuthTokens{byUser: map[string]string{}}
}

func (f *fakeAuthTokens) GetOrCreate(ctx context.Context, userID string) (domain.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getOrCreateErr != nil {
		return domain.AuthToken{}, f.getOrCreateErr
	}
	key, ok := f.byUser[userID]
	if !ok {
		key = "key-" + userID
		f.byUser[userID] = key
	}
	return domain.AuthToken{Key: key, UserID: userID}, nil
}

func (f *fakeAuthTokens) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byUser, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeAuthTokens) UserIDByKey(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for uid, k := range f.byUser {
		if k == key {
			return uid, nil
		}
	}
	return "", domain.ErrTokenInvalid()
}

type fakePublisher struct {
	mu sync.Mutex

	err  error
	evts []ActivationEvent
}

func (p *fakePublisher) PublishActivation(ctx context.Context, evt ActivationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.evts = append(p.evts, evt)
	return nil
}

type fakePolicy struct {
	msgs  []string
	calls []struct {
		password string
		attrs    []policy.Attribute
	}
}

func (p *fakePolicy) Validate(password string, attrs []policy.Attribute) []string {
	p.calls = append(p.calls, struct {
		password string
		attrs    []policy.Attribute
	}{password, attrs})
	return p.msgs
}

type fakeAuditor struct {
	mu      sync.Mutex
	actions []string
	reasons []string
}

func (a *fakeAuditor) record(action string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *fakeAuditor) UserRegistered(context.Context, string, string) { a.record("user_registered") }
func (a *fakeAuditor) LoginSuccess(context.Context, string, string, string) {
	a.record("login_success")
}
func (a *fakeAuditor) LoginFailed(_ context.Context, _, _, reason string) {
	a.mu.Lock()
	a.reasons = append(a.reasons, reason)
	a.mu.Unlock()
	a.record("login_failed")
}
func (a *fakeAuditor) Logout(context.Context, string)          { a.record("logout") }
func (a *fakeAuditor) PasswordChanged(context.Context, string) { a.record("password_changed") }
func (a *fakeAuditor) ActivationResent(context.Context, string, string) {
	a.record("activation_resent")
}
func (a *fakeAuditor) AccountVerified(context.Context, string, string) {
	a.record("account_verified")
}

/*
Service factory for tests
*/

type testDeps struct {
	users      *fakeUserRepo
	hasher     *fakeHasher
	tokens     *fakeTokens
	authTokens *fakeAuthTokens
	pub        *fakePublisher
	audit      *fakeAuditor
}

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	return newSvcWithPolicy(t, policy.Default(policy.DefaultMinLength))
}

func newSvcWithPolicy(t *testing.T, pol PasswordPolicy) (*Service, *testDeps) {
	t.Helper()

	d := &testDeps{
		users:      newFakeUserRepo(),
		hasher:     &fakeHasher{},
		tokens:     &fakeTokens{},
		authTokens: newFakeAuthTokens(),
		pub:        &fakePublisher{},
		audit:      &fakeAuditor{},
	}

	svc := NewService(d.users, d.hasher, d.tokens, d.authTokens, d.pub, pol, Config{
		ActivationBaseURL: "https://api/accounts/v1/activation/confirm/",
	}).WithAudit(d.audit)

	if svc == nil {
		t.Fatalf("svc is nil")
	}
	return svc, d
}

// seedUser stores a user whose password is pw.
func seedUser(d *testDeps, id, email, pw string, verified bool) domain.User {
	u := domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash:" + pw,
		IsVerified:   verified,
		IsActive:     true,
	}
	d.users.put(u)
	return u
}

func lastAction(d *testDeps) string {
	d.audit.mu.Lock()
	defer d.audit.mu.Unlock()
	if len(d.audit.actions) == 0 {
		return ""
	}
	return d.audit.actions[len(d.audit.actions)-1]
}
