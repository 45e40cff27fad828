package config

import "time"

// TokenConfig controls module access-token issuance. The signing secret has
// no default: production refuses to start without one, and module backends
// need the same secret to verify.
type TokenConfig struct {
	SigningSecret string        `env:"TOKEN_SIGNING_SECRET"`
	TTL           time.Duration `env:"TOKEN_TTL"            envDefault:"5m"`
	Issuer        string        `env:"TOKEN_ISSUER"         envDefault:"modhub"`
}

// Sanitize applies guardrails to token configuration values.
func (t *TokenConfig) Sanitize() {
	if t.TTL <= 0 {
		t.TTL = 5 * time.Minute
	}
}
