package config

import "time"

// SessionConfig controls server-side session lifetime and the chunked cookie
// transport. Chunk limits are deliberately configurable: total cookie-header
// budgets vary by proxy, so deployments behind an 8KB cap can lower
// MaxChunks×ChunkSize without a code change.
type SessionConfig struct {
	// TTL is the server-side session lifetime in the session store.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// CookieTTL is the Max-Age applied to each session chunk cookie write.
	CookieTTL time.Duration `env:"SESSION_COOKIE_TTL" envDefault:"1h"`

	// ChunkSize is the raw byte budget per chunk cookie.
	ChunkSize int `env:"SESSION_CHUNK_SIZE" envDefault:"1200"`

	// MaxChunks bounds the chunk sequence per value.
	MaxChunks int `env:"SESSION_MAX_CHUNKS" envDefault:"10"`

	// CookieSecure marks session cookies Secure. Enable everywhere HTTPS
	// terminates in front of the app.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 8 * time.Hour
	}
	if s.CookieTTL <= 0 {
		s.CookieTTL = time.Hour
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = 1200
	}
	if s.MaxChunks <= 0 {
		s.MaxChunks = 10
	}
}
