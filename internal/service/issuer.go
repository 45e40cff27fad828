package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
	apperrors "github.com/modhub/modhub-api/internal/errors"
	"github.com/modhub/modhub-api/internal/ports"
)

// DefaultAccessTokenTTL bounds how long a module access token is accepted.
// Tokens are minted per launch, so the window only needs to cover the
// redirect to the module subdomain.
const DefaultAccessTokenTTL = 5 * time.Minute

// AccessTokenIssuerOptions groups dependencies for AccessTokenIssuer.
type AccessTokenIssuerOptions struct {
	Entitlements *EntitlementService
	Signer       ports.TokenSigner
	Config       IssuerConfig
}

// IssuerConfig holds issuance parameters.
type IssuerConfig struct {
	// TTL is how long issued tokens remain valid; DefaultAccessTokenTTL when zero.
	TTL time.Duration
	// Issuer is the iss claim value, typically the API origin.
	Issuer string
}

// AccessTokenIssuer mints short-lived signed tokens that module backends
// accept as proof of an active entitlement. Entitlement state is re-checked
// at issuance, and each issued token debits one use.
type AccessTokenIssuer struct {
	entitlements *EntitlementService
	signer       ports.TokenSigner
	ttl          time.Duration
	issuer       string

	now func() time.Time
}

// NewAccessTokenIssuer constructs a new AccessTokenIssuer.
func NewAccessTokenIssuer(opts AccessTokenIssuerOptions) *AccessTokenIssuer {
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &AccessTokenIssuer{
		entitlements: opts.Entitlements,
		signer:       opts.Signer,
		ttl:          ttl,
		issuer:       opts.Config.Issuer,
		now:          time.Now,
	}
}

// AccessToken is a signed module access token with its expiry.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue re-checks the entitlement and mints a signed token for the module.
// An entitlement that lapsed since activation (expired, ceiling reached, or
// suspended) refuses issuance with a NotEntitled error.
func (i *AccessTokenIssuer) Issue(ctx context.Context, sess domainauth.Session, moduleID string) (*AccessToken, error) {
	if sess.UserID == "" || sess.IsGuest() {
		return nil, apperrors.NotAuthenticated("no authenticated user")
	}

	// RecordUse enforces entitlement state at the moment of issuance; each
	// token debits exactly one use.
	ent, err := i.entitlements.RecordUse(ctx, sess.UserID, moduleID)
	if err != nil {
		return nil, err
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":       sess.UserID,
		"email":     sess.Email,
		"module_id": ent.ModuleID,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"jti":       uuid.New().String(),
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign access token")
	}

	slog.Default().InfoContext(ctx, "access token issued",
		"component", "issuer", "user_id", sess.UserID, "module_id", ent.ModuleID, "expires_at", expiresAt)

	return &AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}
