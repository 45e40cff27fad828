package session

import (
	"net/http"
	"time"
)

// AdapterConfig binds the storage adapter to the two keys an auth session
// needs and to the origin decision.
type AdapterConfig struct {
	// SessionKey is the storage key the identity-provider client uses for
	// the serialized session blob.
	SessionKey string
	// VerifierKey is the storage key for the PKCE code verifier.
	VerifierKey string
	// VerifierCookie is the dedicated cookie name for the verifier.
	// Verifiers are short and never need chunking.
	VerifierCookie string
	// SessionCookiePrefix names the chunk cookie family for the session blob.
	SessionCookiePrefix string
	// ProductionOrigin is true when the running origin shares the parent
	// domain and needs cross-subdomain cookie transport. Any other origin
	// passes straight through to local storage.
	ProductionOrigin bool

	Chunks ChunkConfig
}

// Adapter implements Storage for the identity-provider client, routing the
// session blob and PKCE verifier through cookies on production origins while
// mirroring into local storage, and passing every other key through
// untouched. Construct it per request (or per page), never at package load:
// it holds no globals and degrades to a no-op when both backends are nil,
// which is what server-side rendering sees.
type Adapter struct {
	cfg    AdapterConfig
	jar    CookieJar
	local  Storage
	chunks *ChunkedCookieStore
}

// NewAdapter builds an adapter over a cookie jar and a local store. Either
// may be nil: a nil jar disables the cookie path (reads fall back to local),
// and a nil local store disables the mirror. Both nil yields the inert
// adapter used outside a browser context.
func NewAdapter(jar CookieJar, local Storage, cfg AdapterConfig) *Adapter {
	a := &Adapter{cfg: cfg, jar: jar, local: local}
	if jar != nil {
		a.chunks = NewChunkedCookieStore(jar, cfg.Chunks)
	}
	return a
}

// GetItem reads a key. On production origins the cookie is authoritative for
// the two special keys, with local storage as the same-origin fallback; a
// corrupted or partial chunk sequence reads as absent, never as truncated
// data.
func (a *Adapter) GetItem(key string) (string, bool) {
	if !a.cfg.ProductionOrigin {
		return a.localGet(key)
	}

	switch key {
	case a.cfg.VerifierKey:
		if a.jar != nil {
			if v, ok := a.jar.Get(a.cfg.VerifierCookie); ok {
				return v, true
			}
		}
		return a.localGet(key)
	case a.cfg.SessionKey:
		if a.chunks != nil {
			if v, ok := a.chunks.Read(a.cfg.SessionCookiePrefix); ok {
				return v, true
			}
		}
		return a.localGet(key)
	default:
		return a.localGet(key)
	}
}

// SetItem writes a key. Cookie writes that cannot fit are dropped silently;
// the local mirror remains the same-origin source of truth.
func (a *Adapter) SetItem(key, value string) {
	if a.cfg.ProductionOrigin {
		switch key {
		case a.cfg.VerifierKey:
			a.setVerifierCookie(value)
		case a.cfg.SessionKey:
			if a.chunks != nil {
				a.chunks.Write(a.cfg.SessionCookiePrefix, value)
			}
		}
	}
	if a.local != nil {
		a.local.SetItem(key, value)
	}
}

// RemoveItem clears both the cookie side and the local entry for the special
// keys, so a sign-out on one path cannot leave a live session on the other.
func (a *Adapter) RemoveItem(key string) {
	if a.cfg.ProductionOrigin {
		switch key {
		case a.cfg.VerifierKey:
			a.clearVerifierCookie()
		case a.cfg.SessionKey:
			if a.chunks != nil {
				a.chunks.Clear(a.cfg.SessionCookiePrefix)
			}
		}
	}
	if a.local != nil {
		a.local.RemoveItem(key)
	}
}

func (a *Adapter) localGet(key string) (string, bool) {
	if a.local == nil {
		return "", false
	}
	return a.local.GetItem(key)
}

func (a *Adapter) setVerifierCookie(value string) {
	if a.jar == nil {
		return
	}
	cfg := a.cfg.Chunks.withDefaults()
	a.jar.Set(&http.Cookie{
		Name:     a.cfg.VerifierCookie,
		Value:    value,
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.TTL / time.Second),
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Adapter) clearVerifierCookie() {
	if a.jar == nil {
		return
	}
	cfg := a.cfg.Chunks.withDefaults()
	a.jar.Set(&http.Cookie{
		Name:     a.cfg.VerifierCookie,
		Value:    "",
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
