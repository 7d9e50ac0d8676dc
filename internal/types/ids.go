package types

import "github.com/google/uuid"

// RequestID is a UUIDv7 request correlation identifier.
type RequestID string

// NewRequestID generates a UUIDv7 request identifier.
// Time-ordered IDs keep log lines for one process sortable by arrival.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRequestID() RequestID {
	return RequestID(uuid.Must(uuid.NewV7()).String())
}

// ParseRequestID validates a caller-supplied correlation identifier.
func ParseRequestID(s string) (RequestID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RequestID(s), nil
}
