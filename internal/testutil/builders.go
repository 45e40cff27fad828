package testutil

import (
	"time"

	"github.com/modhub/modhub-api/internal/ports"
)

// ActivateParamsBuilder provides a fluent interface for building entitlement
// activation parameters for testing.
type ActivateParamsBuilder struct {
	p ports.ActivateParams
}

// NewActivateParams creates a new ActivateParamsBuilder with sensible defaults.
func NewActivateParams() *ActivateParamsBuilder {
	return &ActivateParamsBuilder{
		p: ports.ActivateParams{
			UserID:   "user-1",
			ModuleID: "summarizer",
			Cost:     10,
		},
	}
}

// WithUser sets the user ID.
func (b *ActivateParamsBuilder) WithUser(userID string) *ActivateParamsBuilder {
	b.p.UserID = userID
	return b
}

// WithModule sets the module ID.
func (b *ActivateParamsBuilder) WithModule(moduleID string) *ActivateParamsBuilder {
	b.p.ModuleID = moduleID
	return b
}

// WithCost sets the activation cost in tokens.
func (b *ActivateParamsBuilder) WithCost(cost int) *ActivateParamsBuilder {
	b.p.Cost = cost
	return b
}

// WithMaxUsage bounds the entitlement to the given number of uses.
func (b *ActivateParamsBuilder) WithMaxUsage(n int) *ActivateParamsBuilder {
	b.p.MaxUsage = &n
	return b
}

// WithValidFor sets the validity window.
func (b *ActivateParamsBuilder) WithValidFor(d time.Duration) *ActivateParamsBuilder {
	b.p.ValidFor = d
	return b
}

// Build returns the built parameters.
func (b *ActivateParamsBuilder) Build() ports.ActivateParams {
	return b.p
}
