package accounts

import (
	"reflect"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func requireFieldMessages(t *testing.T, err error, field string, want []string) {
	t.Helper()
	got := domain.FieldMessages(err, field)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("field %q: expected %v, got %v (err=%v)", field, want, got, err)
	}
}
