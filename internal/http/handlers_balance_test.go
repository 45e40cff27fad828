package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminClient(t *testing.T, env *testEnv) *cookieClient {
	t.Helper()
	client := newClient(t, env)
	env.provider.DefaultUser.Groups = []string{"modhub-admins"}
	client.login()
	return client
}

func TestBalance_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)

	rec := client.do(http.MethodGet, "/api/balance", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBalance_StartsAtZero(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)
	client.login()

	rec := client.do(http.MethodGet, "/api/balance", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decodeBody(t, rec, &body)
	assert.InDelta(t, 0, body["balance"], 0)
}

func TestAdminCredit_ForbiddenForRegularUser(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t, env)
	client.login()

	rec := client.do(http.MethodPost, "/api/admin/users/someone/credit", jsonBody(t, map[string]int{"amount": 50}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCredit_AddsTokens(t *testing.T) {
	env := newTestEnv(t)
	admin := adminClient(t, env)

	rec := admin.do(http.MethodPost, "/api/admin/users/customer-7/credit", jsonBody(t, map[string]int{"amount": 50}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "customer-7", body["user_id"])
	assert.InDelta(t, 50, body["balance"], 0)

	rec = admin.do(http.MethodPost, "/api/admin/users/customer-7/credit", jsonBody(t, map[string]int{"amount": 25}))
	decodeBody(t, rec, &body)
	assert.InDelta(t, 75, body["balance"], 0, "credits accumulate")
}

func TestAdminCredit_RejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	admin := adminClient(t, env)

	rec := admin.do(http.MethodPost, "/api/admin/users/customer-7/credit", jsonBody(t, map[string]int{"amount": 0}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestAdminSuspendReinstate(t *testing.T) {
	env := newTestEnv(t)

	user := newClient(t, env)
	user.login()
	user.creditBalance("mock-user-1", 10)
	rec := user.do(http.MethodPost, "/api/modules/summarizer/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	admin := adminClient(t, env)
	rec = admin.do(http.MethodPost, "/api/admin/entitlements/summarizer/suspend", jsonBody(t, map[string]string{"user_id": "mock-user-1"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = user.do(http.MethodGet, "/api/modules/summarizer/entitlement", nil)
	var gate map[string]any
	decodeBody(t, rec, &gate)
	assert.Equal(t, false, gate["isActivated"])
	assert.Equal(t, "needs_activation", gate["state"])

	// Token issuance must refuse a suspended entitlement.
	rec = user.do(http.MethodPost, "/api/modules/summarizer/token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = admin.do(http.MethodPost, "/api/admin/entitlements/summarizer/reinstate", jsonBody(t, map[string]string{"user_id": "mock-user-1"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = user.do(http.MethodGet, "/api/modules/summarizer/entitlement", nil)
	decodeBody(t, rec, &gate)
	assert.Equal(t, true, gate["isActivated"])
}

func TestAdminSuspend_UnknownEntitlement(t *testing.T) {
	env := newTestEnv(t)
	admin := adminClient(t, env)

	rec := admin.do(http.MethodPost, "/api/admin/entitlements/summarizer/suspend", jsonBody(t, map[string]string{"user_id": "nobody"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSuspend_MissingUserID(t *testing.T) {
	env := newTestEnv(t)
	admin := adminClient(t, env)

	rec := admin.do(http.MethodPost, "/api/admin/entitlements/summarizer/suspend", jsonBody(t, map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
