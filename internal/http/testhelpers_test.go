package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/modhub/modhub-api/internal/adapters/token"
	"github.com/modhub/modhub-api/internal/data"
	"github.com/modhub/modhub-api/internal/domain/model"
	mocksauth "github.com/modhub/modhub-api/internal/mocks/auth"
	"github.com/modhub/modhub-api/internal/ports"
	"github.com/modhub/modhub-api/internal/service"
	"github.com/modhub/modhub-api/internal/testutil"
)

// memStore backs the router tests with an in-memory rendition of the balance
// and entitlement repositories. It honors the same invariants the Postgres
// layer does: a usable entitlement makes activation a free no-op, and the
// usage ceiling deactivates in the same step that crosses it.
type memStore struct {
	mu       sync.Mutex
	balances map[string]int
	ents     map[string]*model.ModuleEntitlement
}

func newMemStore() *memStore {
	return &memStore{
		balances: make(map[string]int),
		ents:     make(map[string]*model.ModuleEntitlement),
	}
}

func entKey(userID, moduleID string) string { return userID + "|" + moduleID }

type memEntitlements struct{ s *memStore }

func (m memEntitlements) Get(_ context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ent, ok := m.s.ents[entKey(userID, moduleID)]
	if !ok {
		return nil, data.ErrEntitlementNotFound
	}
	cp := *ent
	return &cp, nil
}

func (m memEntitlements) Activate(_ context.Context, p ports.ActivateParams) (*model.ModuleEntitlement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := time.Now()
	if existing, ok := m.s.ents[entKey(p.UserID, p.ModuleID)]; ok && existing.Usable(now) {
		cp := *existing
		return &cp, nil
	}

	if m.s.balances[p.UserID] < p.Cost {
		return nil, data.ErrInsufficientTokens
	}
	m.s.balances[p.UserID] -= p.Cost

	ent := &model.ModuleEntitlement{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		ModuleID:  p.ModuleID,
		IsActive:  true,
		MaxUsage:  p.MaxUsage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.ValidFor > 0 {
		exp := now.Add(p.ValidFor)
		ent.ExpiresAt = &exp
	}
	m.s.ents[entKey(p.UserID, p.ModuleID)] = ent
	cp := *ent
	return &cp, nil
}

func (m memEntitlements) RecordUse(_ context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	ent, ok := m.s.ents[entKey(userID, moduleID)]
	if !ok {
		return nil, data.ErrEntitlementNotFound
	}
	now := time.Now()
	if !ent.Usable(now) {
		return nil, data.ErrEntitlementNotUsable
	}
	ent.UsageCount++
	ent.LastUsedAt = &now
	if ent.MaxUsage != nil && ent.UsageCount >= *ent.MaxUsage {
		ent.IsActive = false
	}
	ent.UpdatedAt = now
	cp := *ent
	return &cp, nil
}

func (m memEntitlements) SetActive(_ context.Context, userID, moduleID string, active bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	ent, ok := m.s.ents[entKey(userID, moduleID)]
	if !ok {
		return data.ErrEntitlementNotFound
	}
	ent.IsActive = active
	ent.UpdatedAt = time.Now()
	return nil
}

type memBalances struct{ s *memStore }

func (m memBalances) Get(_ context.Context, userID string) (*model.TokenBalance, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return &model.TokenBalance{UserID: userID, Balance: m.s.balances[userID], UpdatedAt: time.Now()}, nil
}

func (m memBalances) Credit(_ context.Context, userID string, amount int) (*model.TokenBalance, error) {
	if amount <= 0 {
		return nil, data.ErrInvalidAmount
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.balances[userID] += amount
	return &model.TokenBalance{UserID: userID, Balance: m.s.balances[userID], UpdatedAt: time.Now()}, nil
}

// testEnv wires a full router over in-memory stores and the mock identity
// provider.
type testEnv struct {
	router   http.Handler
	store    *memStore
	provider *mocksauth.MockAuthProvider
	sessions *mocksauth.MemorySessionStore
	signer   *token.HMACSigner
	cookies  CookieConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	provider := mocksauth.NewMockAuthProvider()
	sessions := mocksauth.NewMemorySessionStore()

	catalog, err := service.NewModuleCatalog(service.ModuleCatalogOptions{
		Modules: []model.Module{
			{ID: "summarizer", Name: "Summarizer", TokenCost: 10, DevPort: 3001},
			{ID: "image-lab", Name: "Image Lab", TokenCost: 25, MaxUsage: testutil.IntPtr(50), ValidFor: 30 * 24 * time.Hour, DevPort: 3002},
		},
		ParentDomain: "modhub.io",
	})
	require.NoError(t, err)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Roles:    mocksauth.StaticRoleMapper{AdminGroup: "modhub-admins"},
	})

	entSvc := service.NewEntitlementService(service.EntitlementServiceOptions{
		Entitlements: memEntitlements{s: store},
		Catalog:      catalog,
	})

	signer, err := token.NewHMACSigner("router-test-secret")
	require.NoError(t, err)

	issuer := service.NewAccessTokenIssuer(service.AccessTokenIssuerOptions{
		Entitlements: entSvc,
		Signer:       signer,
	})
	gate := service.NewActivationGate(service.ActivationGateOptions{
		Entitlements: entSvc,
		Issuer:       issuer,
		Catalog:      catalog,
	})

	cookies := CookieConfig{ParentDomain: "modhub.io"}

	router := NewRouter(RouterServices{
		Auth:         auth,
		Catalog:      catalog,
		Entitlements: entSvc,
		Issuer:       issuer,
		Gate:         gate,
		Balances:     memBalances{s: store},
		Cookies:      cookies,
		Logger:       slog.New(slog.DiscardHandler),
	})

	return &testEnv{
		router:   router,
		store:    store,
		provider: provider,
		sessions: sessions,
		signer:   signer,
		cookies:  cookies,
	}
}

// cookieClient drives the router like a browser: cookies set by one response
// ride along on the next request.
type cookieClient struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, env *testEnv) *cookieClient {
	return &cookieClient{t: t, env: env, cookies: make(map[string]*http.Cookie)}
}

func (c *cookieClient) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Host = "app.modhub.io"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	rec := httptest.NewRecorder()
	c.env.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

// login runs the full redirect dance against the mock provider.
func (c *cookieClient) login() {
	c.t.Helper()

	rec := c.do(http.MethodGet, "/auth/login?redirect_uri=/modules", nil)
	require.Equal(c.t, http.StatusFound, rec.Code)

	state, ok := c.cookies[stateCookieName]
	require.True(c.t, ok, "login must park the state cookie")

	rec = c.do(http.MethodGet, "/auth/callback?code=mock-code&state="+state.Value, nil)
	require.Equal(c.t, http.StatusFound, rec.Code)
	require.Equal(c.t, "/modules", rec.Header().Get("Location"))
}

func (c *cookieClient) creditBalance(userID string, amount int) {
	c.env.store.mu.Lock()
	defer c.env.store.mu.Unlock()
	c.env.store.balances[userID] += amount
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
