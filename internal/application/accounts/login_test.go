package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func TestLoginBasic_EmptyFields_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	_, err := svc.LoginBasic(context.Background(), LoginInput{})
	requireErrCode(t, err, "invalid_credentials")
	requireFieldMessages(t, err, domain.FieldNonField, []string{"Unable to log in with provided credentials."})
}

func TestLoginBasic_UnknownEmail_NonEnumerating(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "missing@x.com", Password: "pw"})
	requireErrCode(t, err, "invalid_credentials")
	if d.audit.reasons[0] != "unknown_email" {
		t.Fatalf("unexpected reason %v", d.audit.reasons)
	}
}

func TestLoginBasic_BadPassword_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "wrong"})
	requireErrCode(t, err, "invalid_credentials")
}

func TestLoginBasic_BadPasswordOnUnverified_StillInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", false)

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "wrong"})
	requireErrCode(t, err, "invalid_credentials")
}

func TestLoginBasic_InactiveUser_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	u := seedUser(d, "u1", "e@x.com", "pw", true)
	u.IsActive = false
	d.users.put(u)

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "invalid_credentials")
}

func TestLoginBasic_Unverified_RejectsWithoutToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", false)

	res, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "account_not_verified")
	requireFieldMessages(t, err, domain.FieldDetail, []string{"user is not verified"})

	if res.Token != "" {
		t.Fatalf("expected no token, got %q", res.Token)
	}
	if len(d.authTokens.byUser) != 0 {
		t.Fatalf("expected no auth token created")
	}
}

func TestLoginBasic_Success_ReusesToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)

	first, err := svc.LoginBasic(context.Background(), LoginInput{Email: "  E@x.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if first.Token == "" || first.User.ID != "u1" {
		t.Fatalf("unexpected result %+v", first)
	}

	second, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if second.Token != first.Token {
		t.Fatalf("expected same token, got %q and %q", first.Token, second.Token)
	}
	if lastAction(d) != "login_success" {
		t.Fatalf("expected login_success audit, got %q", lastAction(d))
	}
}

func TestLoginBasic_TokenStoreFailure_Propagates(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)
	d.authTokens.getOrCreateErr = domain.ErrDBUnavailable(errors.New("down"))

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "db_unavailable")
}

func TestLoginBasic_RepoFailure_NotMaskedAsCredentials(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.users.getByEmailErr = domain.ErrDBUnavailable(errors.New("down"))

	_, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "db_unavailable")
}

func TestLoginToken_Success_ReturnsPairWithIdentity(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)

	pair, err := svc.LoginToken(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if pair.Access != "access|u1|e@x.com" || pair.Refresh != "refresh|u1|e@x.com" {
		t.Fatalf("unexpected tokens %+v", pair)
	}
	if pair.Email != "e@x.com" || pair.UserID != "u1" {
		t.Fatalf("unexpected identity %+v", pair)
	}
	if pair.ExpiresIn != 900 {
		t.Fatalf("expected 900s, got %d", pair.ExpiresIn)
	}
}

func TestLoginToken_Unverified_NeverIssues(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", false)

	pair, err := svc.LoginToken(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "account_not_verified")
	if pair.Access != "" || pair.Refresh != "" {
		t.Fatalf("expected no tokens, got %+v", pair)
	}
	if len(d.tokens.issued) != 0 {
		t.Fatalf("expected issuer untouched, got %v", d.tokens.issued)
	}
}

func TestLoginToken_SignFailure(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)
	d.tokens.issueErr = errors.New("no key")

	_, err := svc.LoginToken(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"})
	requireErrCode(t, err, "token_sign_failed")
}

func TestLogoutBasic_DeletesToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "e@x.com", "pw", true)
	if _, err := svc.LoginBasic(context.Background(), LoginInput{Email: "e@x.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.LogoutBasic(context.Background(), "u1"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if _, ok := d.authTokens.byUser["u1"]; ok {
		t.Fatalf("expected token removed")
	}
	if lastAction(d) != "logout" {
		t.Fatalf("expected logout audit, got %q", lastAction(d))
	}
}

func TestLogoutBasic_NoUser(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	requireErrCode(t, svc.LogoutBasic(context.Background(), ""), "token_missing")
}
