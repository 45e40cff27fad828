package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/modhub/modhub-api/internal/session"
)

// Cookie names the auth flow owns. The session blob is chunked under the
// SessionCookiePrefix family; the remaining ones are small single cookies
// scoped to the login round trip.
const (
	// SessionCookiePrefix names the chunk cookie family carrying the
	// session envelope across module subdomains.
	SessionCookiePrefix = "mh_session"
	// VerifierCookieName holds the PKCE code verifier between the login
	// redirect and the provider callback. It is short and never chunked.
	VerifierCookieName = "mh_pkce_verifier"

	stateCookieName    = "mh_oauth_state"
	nonceCookieName    = "mh_oauth_nonce"
	redirectCookieName = "mh_post_login"

	// flowCookieTTL bounds the login round-trip cookies. A callback that
	// arrives later than this restarts the flow.
	flowCookieTTL = 10 * time.Minute
)

// Storage keys the session adapter routes. The adapter intercepts these two
// and carries them over cookies; any other key would pass through to the
// local mirror.
const (
	sessionStorageKey  = "modhub.session"
	verifierStorageKey = "modhub.pkce_verifier"
)

// CookieConfig controls how auth cookies are written. ParentDomain scopes the
// session chunk family to the shared parent so module subdomains can present
// it; chunk limits are deployment configuration, not constants.
type CookieConfig struct {
	ParentDomain string
	Secure       bool
	TTL          time.Duration
	ChunkSize    int
	MaxChunks    int
}

// adapter builds the per-request session storage adapter over the request's
// cookie jar. The server has no local storage mirror, so cookies are the only
// backend. A request host outside the parent domain gets host-only cookies;
// browsers reject a Domain attribute the request host is not under.
func (c CookieConfig) adapter(w http.ResponseWriter, r *http.Request, ttl time.Duration) *session.Adapter {
	domain := c.ParentDomain
	if !session.IsProductionOrigin(r.Host, c.ParentDomain) {
		domain = ""
	}
	return session.NewAdapter(session.NewRequestJar(w, r), nil, session.AdapterConfig{
		SessionKey:          sessionStorageKey,
		VerifierKey:         verifierStorageKey,
		VerifierCookie:      VerifierCookieName,
		SessionCookiePrefix: SessionCookiePrefix,
		ProductionOrigin:    true,
		Chunks: session.ChunkConfig{
			Domain:    domain,
			Secure:    c.Secure || requestIsSecure(r),
			TTL:       ttl,
			ChunkSize: c.ChunkSize,
			MaxChunks: c.MaxChunks,
		},
	})
}

func requestIsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// sessionEnvelope is the JSON payload stored in the chunked session cookies.
// Only the server-side session ID crosses the wire; everything else lives in
// the session store.
type sessionEnvelope struct {
	SID string `json:"sid"`
}

// writeSessionCookie persists the session envelope through the storage
// adapter's chunked cookie path. An envelope that cannot fit within the chunk
// budget is dropped rather than truncated, which reads back as "not signed
// in".
func writeSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, sessionID string) {
	payload, err := json.Marshal(sessionEnvelope{SID: sessionID})
	if err != nil {
		return
	}
	cfg.adapter(w, r, cfg.TTL).SetItem(sessionStorageKey, string(payload))
}

// readSessionID recovers the server-side session ID from the chunk family.
// A missing, gapped, or unparseable sequence reads as absent.
func readSessionID(w http.ResponseWriter, r *http.Request, cfg CookieConfig) (string, bool) {
	raw, ok := cfg.adapter(w, r, cfg.TTL).GetItem(sessionStorageKey)
	if !ok {
		return "", false
	}
	var env sessionEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.SID == "" {
		return "", false
	}
	return env.SID, true
}

// clearSessionCookie expires every chunk in the session family.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig) {
	cfg.adapter(w, r, cfg.TTL).RemoveItem(sessionStorageKey)
}

// readVerifier recovers the PKCE verifier parked at login time.
func readVerifier(w http.ResponseWriter, r *http.Request, cfg CookieConfig) (string, bool) {
	return cfg.adapter(w, r, flowCookieTTL).GetItem(verifierStorageKey)
}

// flowCookieParams groups the per-attempt login secrets parked in cookies
// between /auth/login and /auth/callback.
type flowCookieParams struct {
	State       string
	Nonce       string
	Verifier    string
	RedirectURI string
}

// setFlowCookies parks the login round-trip state. The verifier rides the
// storage adapter so it carries the same domain scoping as the session blob;
// state, nonce, and redirect stay host-only.
func setFlowCookies(w http.ResponseWriter, r *http.Request, cfg CookieConfig, p flowCookieParams) {
	cfg.adapter(w, r, flowCookieTTL).SetItem(verifierStorageKey, p.Verifier)

	secure := cfg.Secure || requestIsSecure(r)
	for name, value := range map[string]string{
		stateCookieName:    p.State,
		nonceCookieName:    p.Nonce,
		redirectCookieName: p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   int(flowCookieTTL / time.Second),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearFlowCookies(w http.ResponseWriter, r *http.Request, cfg CookieConfig) {
	cfg.adapter(w, r, flowCookieTTL).RemoveItem(verifierStorageKey)

	secure := cfg.Secure || requestIsSecure(r)
	for _, name := range []string{stateCookieName, nonceCookieName, redirectCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0).UTC(),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
