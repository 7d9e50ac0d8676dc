package auth

import "errors"

// Authentication failures. All of them surface as unauthenticated; none
// reveals whether a token was close to valid.
var (
	ErrMalformedHeader = errors.New("authorization header must use the Bearer scheme")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrNoSecret        = errors.New("token authentication is not configured")
)
