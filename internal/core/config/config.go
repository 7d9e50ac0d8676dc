// Package config provides configuration management for the rounds API server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Host                string        `validate:"required"`
	Port                int           `validate:"min=1,max=65535"`
	HealthPort          int           `validate:"min=0,max=65535"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	TimeZone            string        `validate:"required"`
	DefaultPageSize     int64         `validate:"min=1"`
	MaxPageSize         int64         `validate:"min=1,max=2147483647,gtefield=DefaultPageSize"`
	HealthProbeInterval time.Duration `validate:"gt=0"`

	// Location is TimeZone, loaded once at startup.
	Location *time.Location `validate:"-"`
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:                "0.0.0.0",
		Port:                8080,
		HealthPort:          50051,
		RequestTimeout:      30 * time.Second,
		TimeZone:            "America/New_York",
		DefaultPageSize:     50,
		MaxPageSize:         2147483647,
		HealthProbeInterval: 10 * time.Second,
	}
}

// Addr returns the HTTP listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTSecretEnv names the environment variable holding the token signing secret.
const JWTSecretEnv = "RA_JWT_SECRET"

// minSecretLength is the shortest accepted signing secret, in bytes.
const minSecretLength = 32

// JWTSecret reads the token signing secret from the environment.
// An unset variable returns nil: the server then treats every caller as
// anonymous.
func JWTSecret() ([]byte, error) {
	val := strings.TrimSpace(os.Getenv(JWTSecretEnv))
	if val == "" {
		return nil, nil
	}
	return ParseJWTSecret(val)
}

// ParseJWTSecret validates a signing secret.
func ParseJWTSecret(val string) ([]byte, error) {
	if len(val) < minSecretLength {
		return nil, fmt.Errorf("%s must be at least %d bytes, got %d", JWTSecretEnv, minSecretLength, len(val))
	}
	return []byte(val), nil
}
