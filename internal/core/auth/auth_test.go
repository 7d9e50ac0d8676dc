package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solatis/roundsapi/internal/types"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator(testSecret)
	admin := types.Principal{UserID: 7, Handle: "alice", Roles: []string{types.RoleAdmin}}

	token, err := a.IssueToken(admin, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	other := NewAuthenticator([]byte("fedcba9876543210fedcba9876543210"))
	forged, _ := other.IssueToken(admin, time.Hour)

	expired := NewAuthenticator(testSecret)
	expired.now = fixedClock(time.Now().Add(-2 * time.Hour))
	stale, _ := expired.IssueToken(admin, time.Hour)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	anonymousClaims, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Handle: "ghost"}).SignedString(testSecret)

	tests := []struct {
		name    string
		header  string
		want    types.Principal
		wantErr error
	}{
		{"no header", "", types.Principal{}, nil},
		{"valid", "Bearer " + token, admin, nil},
		{"scheme is case-insensitive", "bearer " + token, admin, nil},
		{"basic scheme", "Basic dXNlcjpwYXNz", types.Principal{}, ErrMalformedHeader},
		{"empty token", "Bearer ", types.Principal{}, ErrMalformedHeader},
		{"wrong secret", "Bearer " + forged, types.Principal{}, ErrInvalidToken},
		{"expired", "Bearer " + stale, types.Principal{}, ErrInvalidToken},
		{"alg none", "Bearer " + none, types.Principal{}, ErrInvalidToken},
		{"no user id", "Bearer " + anonymousClaims, types.Principal{}, ErrInvalidToken},
		{"garbage", "Bearer not.a.token", types.Principal{}, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if got.UserID != tt.want.UserID || got.Handle != tt.want.Handle || got.HasRole(types.RoleAdmin) != tt.want.HasRole(types.RoleAdmin) {
				t.Errorf("Authenticate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAuthenticate_NoSecret(t *testing.T) {
	a := NewAuthenticator(nil)
	if p, err := a.Authenticate(""); err != nil || p.Authenticated() {
		t.Errorf("Authenticate(\"\") = %+v, %v", p, err)
	}
	if _, err := a.Authenticate("Bearer abc"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("Authenticate() error = %v, want ErrNoSecret", err)
	}
	if _, err := a.IssueToken(types.Principal{UserID: 1}, time.Minute); !errors.Is(err, ErrNoSecret) {
		t.Errorf("IssueToken() error = %v, want ErrNoSecret", err)
	}
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator(testSecret)
	token, _ := a.IssueToken(types.Principal{UserID: 3, Handle: "carol"}, time.Hour)

	var seen types.Principal
	var failure error
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		failure = err
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen.UserID != 3 || seen.Handle != "carol" {
		t.Errorf("principal = %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || !errors.Is(failure, types.ErrUnauthenticated) {
		t.Errorf("code = %d, failure = %v", rec.Code, failure)
	}
}
