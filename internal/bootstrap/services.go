package bootstrap

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/modhub/modhub-api/config"
	"github.com/modhub/modhub-api/internal/adapters/token"
	"github.com/modhub/modhub-api/internal/data"
	"github.com/modhub/modhub-api/internal/ports"
	"github.com/modhub/modhub-api/internal/service"
)

// ServiceDeps contains the external dependencies services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Auth         *service.AuthService
	Catalog      *service.ModuleCatalog
	Entitlements *service.EntitlementService
	Issuer       *service.AccessTokenIssuer
	Gate         *service.ActivationGate
	Balances     ports.BalanceRepository
}

// BuildServices wires repositories, adapters, and services from configuration.
func BuildServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, errors.New("config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		SessionTTL:  cfg.Session.TTL,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	modules, err := cfg.Modules.ParseCatalog()
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("parse module catalog: %w", err)
	}

	catalog, err := service.NewModuleCatalog(service.ModuleCatalogOptions{
		Modules:      modules,
		ParentDomain: cfg.HTTP.ParentDomain,
		DevMode:      cfg.IsDev,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build module catalog: %w", err)
	}

	entitlements := service.NewEntitlementService(service.EntitlementServiceOptions{
		Entitlements: data.NewEntitlementRepo(deps.DB),
		Catalog:      catalog,
		Logger:       logger,
	})

	signer, err := buildTokenSigner(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	issuer := service.NewAccessTokenIssuer(service.AccessTokenIssuerOptions{
		Entitlements: entitlements,
		Signer:       signer,
		Config: service.IssuerConfig{
			TTL:    cfg.Token.TTL,
			Issuer: cfg.Token.Issuer,
		},
	})

	gate := service.NewActivationGate(service.ActivationGateOptions{
		Entitlements: entitlements,
		Issuer:       issuer,
		Catalog:      catalog,
	})

	return ServiceContainer{
		Auth:         auth,
		Catalog:      catalog,
		Entitlements: entitlements,
		Issuer:       issuer,
		Gate:         gate,
		Balances:     data.NewBalanceRepo(deps.DB),
	}, nil
}

// buildTokenSigner creates the access-token signer. Production requires an
// operator-supplied secret; development falls back to a per-process random
// one, which invalidates outstanding tokens on restart.
func buildTokenSigner(cfg *config.AppConfig, logger *slog.Logger) (*token.HMACSigner, error) {
	secret := cfg.Token.SigningSecret
	if secret == "" {
		if !cfg.IsDev {
			return nil, errors.New("TOKEN_SIGNING_SECRET is required outside development")
		}
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate dev signing secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("TOKEN_SIGNING_SECRET not set; using an ephemeral secret, issued tokens will not survive a restart")
	}

	signer, err := token.NewHMACSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("create token signer: %w", err)
	}
	return signer, nil
}
