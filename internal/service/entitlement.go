package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modhub/modhub-api/internal/data"
	"github.com/modhub/modhub-api/internal/domain/model"
	apperrors "github.com/modhub/modhub-api/internal/errors"
	"github.com/modhub/modhub-api/internal/ports"
)

// EntitlementServiceOptions groups dependencies for EntitlementService.
type EntitlementServiceOptions struct {
	Entitlements ports.EntitlementRepository
	Catalog      *ModuleCatalog
	Logger       *slog.Logger
}

// EntitlementService orchestrates the entitlement lifecycle: activation with
// token debit, per-use recording with ceiling enforcement, and admin
// suspend/reinstate. It translates repository sentinels into the API error
// taxonomy.
type EntitlementService struct {
	entitlements ports.EntitlementRepository
	catalog      *ModuleCatalog
	logger       *slog.Logger

	now func() time.Time
}

// NewEntitlementService constructs a new EntitlementService.
func NewEntitlementService(opts EntitlementServiceOptions) *EntitlementService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EntitlementService{
		entitlements: opts.Entitlements,
		catalog:      opts.Catalog,
		logger:       logger.With("component", "entitlements"),
		now:          time.Now,
	}
}

// CheckResult reports whether a module is currently usable by a user.
type CheckResult struct {
	Active      bool
	Entitlement *model.ModuleEntitlement
}

// CheckActive reports whether the user holds a usable entitlement for the
// module. A missing row is a normal "not active" outcome, not an error.
func (s *EntitlementService) CheckActive(ctx context.Context, userID, moduleID string) (CheckResult, error) {
	if userID == "" {
		return CheckResult{}, apperrors.NotAuthenticated("no authenticated user")
	}
	if err := model.ValidateModuleID(moduleID); err != nil {
		return CheckResult{}, apperrors.ValidationField("module_id", err.Error())
	}

	ent, err := s.entitlements.Get(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, data.ErrEntitlementNotFound) {
			return CheckResult{Active: false}, nil
		}
		return CheckResult{}, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "check entitlement for %s", moduleID)
	}

	return CheckResult{
		Active:      ent.Usable(s.now()),
		Entitlement: ent,
	}, nil
}

// Activate unlocks a module for the user, debiting its token cost. Repeated
// activation while the entitlement is usable is idempotent and free.
func (s *EntitlementService) Activate(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	if userID == "" {
		return nil, apperrors.NotAuthenticated("no authenticated user")
	}
	mod, err := s.catalog.Get(moduleID)
	if err != nil {
		return nil, err
	}

	ent, err := s.entitlements.Activate(ctx, ports.ActivateParams{
		UserID:   userID,
		ModuleID: mod.ID,
		Cost:     mod.TokenCost,
		MaxUsage: mod.MaxUsage,
		ValidFor: mod.ValidFor,
	})
	if err != nil {
		if errors.Is(err, data.ErrInsufficientTokens) {
			return nil, apperrors.InsufficientTokensf("activating %s costs %d tokens", mod.ID, mod.TokenCost)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "activate %s", mod.ID)
	}

	s.logger.InfoContext(ctx, "module activated", "user_id", userID, "module_id", mod.ID, "cost", mod.TokenCost)
	return ent, nil
}

// RecordUse debits one use from the user's entitlement. The caller must hold
// a usable entitlement; a lapsed or missing one is a NotEntitled error.
func (s *EntitlementService) RecordUse(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	if userID == "" {
		return nil, apperrors.NotAuthenticated("no authenticated user")
	}

	ent, err := s.entitlements.Get(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, data.ErrEntitlementNotFound) {
			return nil, apperrors.NotEntitledf("module %s is not activated", moduleID)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "load entitlement for %s", moduleID)
	}
	if !ent.Usable(s.now()) {
		return nil, apperrors.NotEntitledf("entitlement for %s has lapsed", moduleID)
	}

	// The repository re-checks usability inside the debit, so a suspension
	// or concurrent final use landing after the read above still refuses.
	used, err := s.entitlements.RecordUse(ctx, userID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrEntitlementNotFound):
			return nil, apperrors.NotEntitledf("module %s is not activated", moduleID)
		case errors.Is(err, data.ErrEntitlementNotUsable):
			return nil, apperrors.NotEntitledf("entitlement for %s has lapsed", moduleID)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "record use of %s", moduleID)
	}
	return used, nil
}

// Suspend deactivates an entitlement without touching usage or expiry.
func (s *EntitlementService) Suspend(ctx context.Context, userID, moduleID string) error {
	if err := s.setActive(ctx, userID, moduleID, false); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entitlement suspended", "user_id", userID, "module_id", moduleID)
	return nil
}

// Reinstate re-enables a suspended entitlement. Expiry and usage ceilings
// still apply: reinstating an expired entitlement does not make it usable.
func (s *EntitlementService) Reinstate(ctx context.Context, userID, moduleID string) error {
	if err := s.setActive(ctx, userID, moduleID, true); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entitlement reinstated", "user_id", userID, "module_id", moduleID)
	return nil
}

func (s *EntitlementService) setActive(ctx context.Context, userID, moduleID string, active bool) error {
	if userID == "" {
		return apperrors.ValidationField("user_id", "user id is required")
	}
	if err := model.ValidateModuleID(moduleID); err != nil {
		return apperrors.ValidationField("module_id", err.Error())
	}

	if err := s.entitlements.SetActive(ctx, userID, moduleID, active); err != nil {
		if errors.Is(err, data.ErrEntitlementNotFound) {
			return apperrors.NotFoundf("no entitlement for user %s and module %s", userID, moduleID)
		}
		return fmt.Errorf("set entitlement active: %w", err)
	}
	return nil
}
