// Package types provides domain values shared across roundsapi components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so that the params, query and write packages can share the error
// taxonomy without pulling in transport or storage dependencies. ID
// utilities in ids.go import uuid but are isolated from the rest.
package types

import "slices"

// Numeric bounds enforced by the validator registry.
const (
	// MaxSafeInteger is the largest integer a JSON client can represent
	// exactly (2^53 - 1). Generic integer parameters are bounded by it.
	MaxSafeInteger = 9007199254740991

	// MaxInt bounds every stored identifier (32-bit signed INTEGER columns).
	MaxInt = 2147483647
)

// Date formats.
const (
	// WireDateFormat is the single accepted format for dates in requests.
	WireDateFormat = "2006-01-02T15:04:05.000-0700"

	// StoreDateFormat is the store's date-time literal format. Values are
	// rendered in the configured store time zone.
	StoreDateFormat = "2006-01-02 15:04:05"
)

// RoleAdmin is the role required by every admin write endpoint.
const RoleAdmin = "admin"

// Principal identifies the caller of a request. The zero value is an
// anonymous caller.
type Principal struct {
	UserID int64
	Handle string
	Roles  []string
}

// Authenticated reports whether the caller was identified.
func (p Principal) Authenticated() bool {
	return p.UserID > 0
}

// HasRole reports whether the caller holds role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
