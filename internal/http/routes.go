package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
	"github.com/modhub/modhub-api/internal/ports"
	"github.com/modhub/modhub-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Catalog      *service.ModuleCatalog
	Entitlements *service.EntitlementService
	Issuer       *service.AccessTokenIssuer
	Gate         *service.ActivationGate
	Balances     ports.BalanceRepository
	Cookies      CookieConfig
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger}
	mux.HandleFunc("GET /auth/login", authHandlers.Login)
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	moduleHandlers := &ModuleHandlers{
		Catalog:      services.Catalog,
		Entitlements: services.Entitlements,
		Issuer:       services.Issuer,
		Gate:         services.Gate,
		Logger:       logger,
	}
	balanceHandlers := &BalanceHandlers{
		Balances:     services.Balances,
		Entitlements: services.Entitlements,
	}

	requireAuth := RequireAuth(services.Auth, services.Cookies)
	requireAdmin := RequireRole(services.Auth, services.Cookies, domainauth.RoleAdmin)
	optionalAuth := OptionalAuth(services.Auth, services.Cookies)

	mux.HandleFunc("GET /api/modules", moduleHandlers.List)
	mux.Handle("GET /api/modules/{id}/entitlement", optionalAuth(http.HandlerFunc(moduleHandlers.Entitlement)))
	mux.Handle("POST /api/modules/{id}/activate", requireAuth(http.HandlerFunc(moduleHandlers.Activate)))
	mux.Handle("POST /api/modules/{id}/token", requireAuth(http.HandlerFunc(moduleHandlers.Token)))
	mux.Handle("GET /api/modules/{id}/launch", requireAuth(http.HandlerFunc(moduleHandlers.Launch)))
	mux.Handle("GET /api/balance", requireAuth(http.HandlerFunc(balanceHandlers.Get)))

	mux.Handle("POST /api/admin/users/{id}/credit", requireAdmin(http.HandlerFunc(balanceHandlers.Credit)))
	mux.Handle("POST /api/admin/entitlements/{module}/suspend", requireAdmin(http.HandlerFunc(balanceHandlers.Suspend)))
	mux.Handle("POST /api/admin/entitlements/{module}/reinstate", requireAdmin(http.HandlerFunc(balanceHandlers.Reinstate)))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
