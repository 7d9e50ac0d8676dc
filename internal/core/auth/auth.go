// Package auth turns bearer tokens into request principals.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solatis/roundsapi/internal/types"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// principalKey is the context key for storing the authenticated principal.
const principalKey = contextKey("principal")

// Claims are the token claims the API understands.
type Claims struct {
	UserID int64    `json:"userId"`
	Handle string   `json:"handle"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens.
// A nil secret disables authentication: every caller is anonymous.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator creates an authenticator for tokens signed with secret.
func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret, now: time.Now}
}

// Authenticate validates the value of an Authorization header and returns
// the caller. An empty header is an anonymous caller, not an error.
func (a *Authenticator) Authenticate(header string) (types.Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return types.Principal{}, nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return types.Principal{}, ErrMalformedHeader
	}
	if a.secret == nil {
		return types.Principal{}, ErrNoSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !parsed.Valid || claims.UserID <= 0 {
		return types.Principal{}, ErrInvalidToken
	}

	return types.Principal{UserID: claims.UserID, Handle: claims.Handle, Roles: claims.Roles}, nil
}

// IssueToken signs a token for p that expires after ttl.
func (a *Authenticator) IssueToken(p types.Principal, ttl time.Duration) (string, error) {
	if a.secret == nil {
		return "", ErrNoSecret
	}
	now := a.now()
	claims := &Claims{
		UserID: p.UserID,
		Handle: p.Handle,
		Roles:  p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Middleware authenticates each request and stores the principal in its
// context. Failures are handed to onError and the request stops there.
func (a *Authenticator) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				onError(w, r, types.Unauthenticated(err.Error()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the caller from context.
// Returns the anonymous principal if not found.
func PrincipalFromContext(ctx context.Context) types.Principal {
	if p, ok := ctx.Value(principalKey).(types.Principal); ok {
		return p
	}
	return types.Principal{}
}
