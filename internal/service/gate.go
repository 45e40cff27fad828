package service

import (
	"context"
	"net/url"
	"time"

	domainauth "github.com/modhub/modhub-api/internal/domain/auth"
	"github.com/modhub/modhub-api/internal/domain/model"
	apperrors "github.com/modhub/modhub-api/internal/errors"
)

// GateState is the access decision for a user arriving at a module.
type GateState string

const (
	// GateUnauthenticated means there is no valid session; the user must log in.
	GateUnauthenticated GateState = "unauthenticated"
	// GateNeedsActivation means the user is signed in but holds no usable
	// entitlement for the module.
	GateNeedsActivation GateState = "needs_activation"
	// GateActive means the user may enter the module.
	GateActive GateState = "active"
)

// ActivationGateOptions groups dependencies for ActivationGate.
type ActivationGateOptions struct {
	Entitlements *EntitlementService
	Issuer       *AccessTokenIssuer
	Catalog      *ModuleCatalog
}

// ActivationGate decides what a user may do with a module: log in first,
// activate it, or enter. Handlers render the decision; the gate never
// redirects by itself.
type ActivationGate struct {
	entitlements *EntitlementService
	issuer       *AccessTokenIssuer
	catalog      *ModuleCatalog

	now func() time.Time
}

// NewActivationGate constructs a new ActivationGate.
func NewActivationGate(opts ActivationGateOptions) *ActivationGate {
	return &ActivationGate{
		entitlements: opts.Entitlements,
		issuer:       opts.Issuer,
		catalog:      opts.Catalog,
		now:          time.Now,
	}
}

// GateResult carries the access decision and, when one exists, the
// entitlement it was based on.
type GateResult struct {
	State       GateState                `json:"state"`
	Entitlement *model.ModuleEntitlement `json:"entitlement,omitempty"`
}

// Evaluate returns the gate decision for a session and module. A nil,
// expired, or guest session short-circuits to unauthenticated without
// touching the entitlement store.
func (g *ActivationGate) Evaluate(ctx context.Context, sess *domainauth.Session, moduleID string) (GateResult, error) {
	if sess == nil || sess.IsGuest() || sess.Expired(g.now()) {
		return GateResult{State: GateUnauthenticated}, nil
	}

	check, err := g.entitlements.CheckActive(ctx, sess.UserID, moduleID)
	if err != nil {
		return GateResult{}, err
	}
	if !check.Active {
		return GateResult{State: GateNeedsActivation, Entitlement: check.Entitlement}, nil
	}
	return GateResult{State: GateActive, Entitlement: check.Entitlement}, nil
}

// OpenTool mints an access token and returns the module URL carrying it as a
// query parameter. Entitlement state is verified at issuance, never from a
// cached gate decision, so a lapse between Evaluate and OpenTool surfaces
// here as NotEntitled.
func (g *ActivationGate) OpenTool(ctx context.Context, sess *domainauth.Session, moduleID string) (string, error) {
	if sess == nil || sess.IsGuest() || sess.Expired(g.now()) {
		return "", apperrors.NotAuthenticated("no authenticated user")
	}

	token, err := g.issuer.Issue(ctx, *sess, moduleID)
	if err != nil {
		return "", err
	}

	target, err := url.Parse(g.catalog.ResolveURL(moduleID))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "resolve module url")
	}
	q := target.Query()
	q.Set("token", token.Token)
	target.RawQuery = q.Encode()
	return target.String(), nil
}
