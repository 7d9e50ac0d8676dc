package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var validate = validator.New()

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
// flags may be nil; bound flags use the config keys as names with dots
// replaced by dashes (server.port -> --port).
func LoadConfig(configPath string, flags *pflag.FlagSet) (*ServerConfig, error) {
	v := viper.New()

	def := DefaultServerConfig()
	v.SetDefault("server.host", def.Host)
	v.SetDefault("server.port", def.Port)
	v.SetDefault("server.health_port", def.HealthPort)
	v.SetDefault("server.request_timeout", def.RequestTimeout.String())
	v.SetDefault("server.time_zone", def.TimeZone)
	v.SetDefault("server.default_page_size", def.DefaultPageSize)
	v.SetDefault("server.max_page_size", def.MaxPageSize)
	v.SetDefault("server.health_probe_interval", def.HealthProbeInterval.String())

	// Bind environment variables with RA_ prefix
	v.SetEnvPrefix("RA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"server.host":        "host",
			"server.port":        "port",
			"server.health_port": "health-port",
			"server.time_zone":   "time-zone",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Host:                v.GetString("server.host"),
		Port:                v.GetInt("server.port"),
		HealthPort:          v.GetInt("server.health_port"),
		RequestTimeout:      v.GetDuration("server.request_timeout"),
		TimeZone:            v.GetString("server.time_zone"),
		DefaultPageSize:     v.GetInt64("server.default_page_size"),
		MaxPageSize:         v.GetInt64("server.max_page_size"),
		HealthProbeInterval: v.GetDuration("server.health_probe_interval"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks struct tags, then loads the time zone.
func validateConfig(cfg *ServerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: failed %q check (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("time_zone %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("jwt_secret") || v.InConfig("server.jwt_secret") {
		return fmt.Errorf("JWT secrets not allowed in config files (use %s environment variable)", JWTSecretEnv)
	}
	return nil
}
