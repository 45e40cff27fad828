package session

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultChunkSize is the raw byte budget per chunk. Percent-encoding can
	// expand a byte up to 3x, so 1200 raw bytes stays safely under the
	// per-cookie limit even for fully multi-byte values.
	DefaultChunkSize = 1200

	// DefaultMaxChunks bounds both writes and the clear/read scans.
	DefaultMaxChunks = 10

	// DefaultCookieByteLimit is the per-cookie encoded size most browsers
	// enforce (name + value, ~4KB).
	DefaultCookieByteLimit = 4096

	// DefaultCookieTTL keeps chunk cookies session-scoped; every write
	// refreshes the clock.
	DefaultCookieTTL = time.Hour
)

// ChunkConfig controls cookie attributes and chunking limits. The limits are
// deliberately configuration, not constants: total cookie-header budgets vary
// by proxy and server, so deployments can lower MaxChunks×ChunkSize where an
// 8KB header cap applies.
type ChunkConfig struct {
	// Domain scopes every chunk cookie to the shared parent domain.
	Domain string
	// Secure marks cookies Secure; set when the site is served over HTTPS.
	Secure bool
	// TTL is the Max-Age applied on each write. Zero means DefaultCookieTTL.
	TTL time.Duration
	// ChunkSize is the raw bytes per chunk. Zero means DefaultChunkSize.
	ChunkSize int
	// MaxChunks bounds the chunk sequence. Zero means DefaultMaxChunks.
	MaxChunks int
	// CookieByteLimit is the per-cookie encoded cap. Zero means
	// DefaultCookieByteLimit.
	CookieByteLimit int
}

func (c ChunkConfig) withDefaults() ChunkConfig {
	if c.TTL <= 0 {
		c.TTL = DefaultCookieTTL
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxChunks <= 0 {
		c.MaxChunks = DefaultMaxChunks
	}
	if c.CookieByteLimit <= 0 {
		c.CookieByteLimit = DefaultCookieByteLimit
	}
	return c
}

// ChunkedCookieStore persists a string value larger than one cookie by
// splitting it into an ordered sequence of cookies named "{name}_{index}" on
// a shared parent domain. The sequence invariant is gap-free: chunk i absent
// implies all chunks past i are absent, and reads stop at the first gap.
type ChunkedCookieStore struct {
	jar CookieJar
	cfg ChunkConfig
}

// NewChunkedCookieStore builds a store over the given jar. A nil jar yields a
// store whose reads report absent and whose writes are dropped, which is the
// degraded mode used during server-side rendering.
func NewChunkedCookieStore(jar CookieJar, cfg ChunkConfig) *ChunkedCookieStore {
	return &ChunkedCookieStore{jar: jar, cfg: cfg.withDefaults()}
}

func chunkName(name string, i int) string {
	return fmt.Sprintf("%s_%d", name, i)
}

// Write persists value under name. Previously written chunks are cleared
// first so a shorter value leaves no stale tail. A value needing more than
// MaxChunks chunks is dropped entirely rather than stored truncated; an
// individual slice whose encoded form exceeds the per-cookie limit is
// skipped. Both are silent: callers keep a local mirror as their fallback.
func (s *ChunkedCookieStore) Write(name, value string) {
	if s.jar == nil {
		return
	}
	s.Clear(name)

	chunks := splitChunks(value, s.cfg.ChunkSize)
	if len(chunks) > s.cfg.MaxChunks {
		// Leaving the key absent beats leaving a stale value that no longer
		// matches the caller's mirror.
		return
	}

	for i, chunk := range chunks {
		encoded := url.QueryEscape(chunk)
		cn := chunkName(name, i)
		if len(cn)+len(encoded) > s.cfg.CookieByteLimit {
			continue
		}
		s.jar.Set(&http.Cookie{
			Name:     cn,
			Value:    encoded,
			Domain:   s.cfg.Domain,
			Path:     "/",
			MaxAge:   int(s.cfg.TTL.Seconds()),
			Secure:   s.cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Read reassembles the value by concatenating chunks 0..n in index order
// until the first missing index. It returns ok=false when chunk 0 is absent,
// distinguishing "never written" from an empty string.
func (s *ChunkedCookieStore) Read(name string) (string, bool) {
	if s.jar == nil {
		return "", false
	}
	var out []byte
	for i := 0; i < s.cfg.MaxChunks; i++ {
		raw, ok := s.jar.Get(chunkName(name, i))
		if !ok {
			if i == 0 {
				return "", false
			}
			break
		}
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			// A mangled chunk means the sequence can no longer be trusted;
			// a truncated session blob is worse than no session.
			return "", false
		}
		out = append(out, decoded...)
	}
	return string(out), true
}

// Clear removes every chunk cookie for name with a bounded scan over
// MaxChunks indices.
func (s *ChunkedCookieStore) Clear(name string) {
	if s.jar == nil {
		return
	}
	for i := 0; i < s.cfg.MaxChunks; i++ {
		s.jar.Set(&http.Cookie{
			Name:     chunkName(name, i),
			Value:    "",
			Domain:   s.cfg.Domain,
			Path:     "/",
			MaxAge:   -1,
			Secure:   s.cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// splitChunks slices s into size-byte pieces. Splitting may fall inside a
// multi-byte rune; that is safe because chunks are percent-encoded and
// decoded per chunk as raw bytes, and reassembly concatenates the bytes back
// in order.
func splitChunks(s string, size int) []string {
	if s == "" {
		return []string{""}
	}
	var chunks []string
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}
