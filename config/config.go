package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - database.go: Database and Redis configuration
//   - http.go: HTTP server configuration
//   - session.go: Session store and chunked cookie configuration
//   - token.go: Access-token signing configuration
//   - modules.go: Module catalog configuration
type AppConfig struct {
	// IsDev controls development mode behavior (dev auth, localhost module
	// URLs). Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Session store and cookie transport configuration
	Session SessionConfig

	// Module access-token issuance configuration
	Token TokenConfig

	// Module catalog configuration
	Modules ModulesConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Session.Sanitize()
	c.Token.Sanitize()

	// NODE_ENV=development also flips dev mode, matching how the frontend
	// tooling signals it.
	if strings.EqualFold(os.Getenv("NODE_ENV"), "development") {
		c.IsDev = true
	}
}

// Validate enforces the guardrails that only matter outside development:
// production never runs on mock auth or without a signing secret.
func (c *AppConfig) Validate() error {
	if c.IsDev {
		return nil
	}

	var errs []error
	if c.Auth.Mode == AuthModeMock {
		errs = append(errs, errors.New("AUTH_MODE=mock is not allowed outside development"))
	}
	if c.Auth.Mode == AuthModeOAuth {
		if c.Auth.OAuth.ClientID == "" || c.Auth.OAuth.ClientSecret == "" {
			errs = append(errs, errors.New("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required"))
		}
		if c.Auth.OAuth.DiscoveryURL == "" {
			errs = append(errs, errors.New("OAUTH_DISCOVERY_URL is required"))
		}
	}
	if c.Token.SigningSecret == "" {
		errs = append(errs, errors.New("TOKEN_SIGNING_SECRET is required"))
	}
	return errors.Join(errs...)
}
