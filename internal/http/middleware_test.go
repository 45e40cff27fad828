package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)

	rec := client.do(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"modhub-api"}`, rec.Body.String())
}

func TestHasRequiredRole(t *testing.T) {
	tests := []struct {
		user     domainauth.Role
		required domainauth.Role
		want     bool
	}{
		{domainauth.RoleAdmin, domainauth.RoleAdmin, true},
		{domainauth.RoleAdmin, domainauth.RoleUser, true},
		{domainauth.RoleUser, domainauth.RoleAdmin, false},
		{domainauth.RoleUser, domainauth.RoleUser, true},
		{domainauth.RoleGuest, domainauth.RoleUser, false},
		{domainauth.Role("bogus"), domainauth.RoleUser, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasRequiredRole(tt.user, tt.required), "%s needs %s", tt.user, tt.required)
	}
}

func TestOptionalAuth_AttachesSessionWhenPresent(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)
	client.login()

	// The entitlement endpoint runs under OptionalAuth; a signed-in request
	// must see a gate decision beyond unauthenticated.
	rec := client.do(http.MethodGet, "/api/modules/summarizer/entitlement", nil)
	var body map[string]any
	decodeBody(t, rec, &body)
	assert.NotEqual(t, "unauthenticated", body["state"])
}

func TestRequireAuth_ExpiredServerSession(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)
	client.login()

	// Drop the server-side session while keeping the cookie, simulating a
	// store flush or expiry reap.
	saved, ok := client.cookies[SessionCookiePrefix+"_0"]
	require.True(t, ok)
	rec := client.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	client.cookies[SessionCookiePrefix+"_0"] = saved

	rec = client.do(http.MethodGet, "/api/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
