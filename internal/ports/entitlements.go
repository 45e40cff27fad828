package ports

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/modhub/modhub-api/internal/domain/model"
)

// ActivateParams groups inputs for an entitlement activation.
type ActivateParams struct {
	UserID   string
	ModuleID string
	// Cost is debited from the user's balance inside the same transaction
	// that creates or reactivates the entitlement row.
	Cost int
	// MaxUsage and ValidFor come from the module definition; nil/zero mean
	// unbounded usage and no expiry.
	MaxUsage *int
	ValidFor time.Duration
}

// EntitlementRepository is the transactional store behind the entitlement
// service. Activate and RecordUse must each be a single atomic unit: two
// concurrent Activate calls for the same (user, module) produce exactly one
// debit, and no RecordUse can leave a reader observing usage at the ceiling
// with the row still active.
type EntitlementRepository interface {
	// Get returns the entitlement row, or a NotFound error when absent.
	Get(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error)

	// Activate debits the cost and creates or reactivates the row in one
	// transaction. When a usable entitlement already exists it is returned
	// unchanged with no debit. Fails with InsufficientTokens when the
	// balance cannot cover the cost.
	Activate(ctx context.Context, p ActivateParams) (*model.ModuleEntitlement, error)

	// RecordUse increments usage_count and stamps last_used_at, deactivating
	// the row in the same update when the ceiling is reached. The debit only
	// lands on a currently usable row; a suspended, expired, or at-ceiling
	// row fails with EntitlementNotUsable instead of incrementing.
	RecordUse(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error)

	// SetActive flips is_active directly without touching usage or expiry.
	// Used by admin suspend/reinstate.
	SetActive(ctx context.Context, userID, moduleID string, active bool) error
}

// BalanceRepository manages users' spendable token holdings. Debits happen
// only inside EntitlementRepository.Activate; this port covers reads and
// credits (top-ups from the payment collaborator).
type BalanceRepository interface {
	Get(ctx context.Context, userID string) (*model.TokenBalance, error)
	Credit(ctx context.Context, userID string, amount int) (*model.TokenBalance, error)
}

// TokenSigner signs claim sets for module access tokens. The signing key and
// algorithm are the implementation's concern; the issuer only decides what
// goes into the token and when issuance is refused.
type TokenSigner interface {
	Sign(claims jwt.MapClaims) (string, error)
}
