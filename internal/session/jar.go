package session

// Package session implements the cross-origin session plumbing: a chunked
// cookie store that carries values larger than one cookie across a shared
// parent domain, and the storage adapter the auth layer reads and writes
// through. Everything here is synchronous and local to one request or one
// in-memory jar; there are no network calls.

import (
	"net/http"
	"strings"
)

// CookieJar abstracts the cookie surface the chunk store writes through. In
// production this is a live request/response pair; tests use MemoryJar.
type CookieJar interface {
	// Get returns the named cookie's stored (wire) value. The second return
	// is false when the cookie is absent, distinguishing "absent" from "".
	Get(name string) (string, bool)

	// Set writes a cookie. A MaxAge < 0 deletes it.
	Set(c *http.Cookie)
}

// Storage is the generic key/value surface the identity-provider client
// expects; the browser's localStorage has the same shape.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string)
	RemoveItem(key string)
}

// RequestJar is a CookieJar over one HTTP exchange. Reads consult cookies
// set earlier in the same exchange before falling back to the request, so a
// write followed by a read behaves like a browser document.
type RequestJar struct {
	req     *http.Request
	w       http.ResponseWriter
	pending map[string]*http.Cookie
}

// NewRequestJar builds a jar over a request/response pair.
func NewRequestJar(w http.ResponseWriter, r *http.Request) *RequestJar {
	return &RequestJar{req: r, w: w, pending: make(map[string]*http.Cookie)}
}

func (j *RequestJar) Get(name string) (string, bool) {
	if c, ok := j.pending[name]; ok {
		if c.MaxAge < 0 {
			return "", false
		}
		return c.Value, true
	}
	c, err := j.req.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (j *RequestJar) Set(c *http.Cookie) {
	j.pending[c.Name] = c
	http.SetCookie(j.w, c)
}

// MemoryJar is an in-memory CookieJar for tests and non-HTTP contexts.
type MemoryJar struct {
	cookies map[string]string
}

// NewMemoryJar creates an empty MemoryJar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{cookies: make(map[string]string)}
}

func (j *MemoryJar) Get(name string) (string, bool) {
	v, ok := j.cookies[name]
	return v, ok
}

func (j *MemoryJar) Set(c *http.Cookie) {
	if c.MaxAge < 0 {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = c.Value
}

// Delete removes a cookie out-of-band, simulating a proxy or extension
// dropping one chunk.
func (j *MemoryJar) Delete(name string) {
	delete(j.cookies, name)
}

// Len returns the number of cookies held.
func (j *MemoryJar) Len() int { return len(j.cookies) }

// MemoryStorage is an in-memory Storage, the localStorage analog.
type MemoryStorage struct {
	items map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(key string) (string, bool) {
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStorage) SetItem(key, value string) {
	s.items[key] = value
}

func (s *MemoryStorage) RemoveItem(key string) {
	delete(s.items, key)
}

// IsProductionOrigin reports whether host belongs to the shared parent
// domain that needs cross-subdomain cookie sharing. Port suffixes are
// ignored; "app.modhub.io" and "modhub.io:443" both match "modhub.io".
func IsProductionOrigin(host, parentDomain string) bool {
	if host == "" || parentDomain == "" {
		return false
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i+1:], "]") {
		host = host[:i]
	}
	host = strings.ToLower(host)
	parentDomain = strings.ToLower(strings.TrimPrefix(parentDomain, "."))
	return host == parentDomain || strings.HasSuffix(host, "."+parentDomain)
}
