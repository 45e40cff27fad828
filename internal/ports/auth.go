package ports

// Package ports defines interfaces (hexagonal ports) for auth and entitlement
// behavior. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// BeginResult carries the provider auth URL plus the per-attempt secrets the
// caller must hold until the callback: opaque state, nonce, and the PKCE code
// verifier matched against the challenge embedded in the auth URL.
type BeginResult struct {
	AuthURL  string
	State    string
	Nonce    string
	Verifier string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code     string
	State    string
	Nonce    string
	Verifier string
}

// AuthProvider initiates and completes a PKCE authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow.
	Begin(ctx context.Context, in BeginInput) (BeginResult, error)

	// Exchange completes the login flow, verifying state, nonce, and PKCE
	// verifier, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions server-side.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
