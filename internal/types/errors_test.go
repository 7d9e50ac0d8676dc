package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsKindSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want error
	}{
		{"invalid argument", InvalidArgument("pageSize", "pageSize should be positive"), ErrInvalidArgument},
		{"not found", NotFound("roundId", "round %d does not exist", 7), ErrNotFound},
		{"forbidden", Forbidden("admin role required"), ErrForbidden},
		{"unauthenticated", Unauthenticated("login required"), ErrUnauthenticated},
		{"unavailable", Unavailable(errors.New("dial tcp: refused")), ErrUnavailable},
		{"internal", Internal(errors.New("boom")), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			if !errors.Is(wrapped, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, tt.want)
			}
			if KindOf(wrapped) != tt.err.Kind {
				t.Errorf("KindOf() = %v, want %v", KindOf(wrapped), tt.err.Kind)
			}
		})
	}
}

func TestErrorCarriesField(t *testing.T) {
	err := fmt.Errorf("resolve: %w", InvalidArgument("sortColumn", "sortColumn should be an element of %s", "name"))
	if FieldOf(err) != "sortColumn" {
		t.Errorf("FieldOf() = %q, want sortColumn", FieldOf(err))
	}
	if err.Error() != "resolve: sortColumn should be an element of name" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v, want internal", got)
	}
	if got := KindInvalidArgument.String(); got != "invalid-argument" {
		t.Errorf("String() = %q", got)
	}
}

func TestPrincipal(t *testing.T) {
	var anon Principal
	if anon.Authenticated() {
		t.Error("zero principal should be anonymous")
	}
	p := Principal{UserID: 42, Handle: "tourist", Roles: []string{RoleAdmin}}
	if !p.Authenticated() || !p.HasRole(RoleAdmin) {
		t.Errorf("principal %+v should be an authenticated admin", p)
	}
}
