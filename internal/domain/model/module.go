//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

const maxModuleIDLen = 64

// Module describes one hosted tool in the catalog: what it costs to unlock
// and the usage/validity limits baked into the entitlement it grants.
type Module struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TokenCost int    `json:"token_cost"`
	// MaxUsage caps uses per entitlement; nil means unbounded.
	MaxUsage *int `json:"max_usage,omitempty"`
	// ValidFor bounds entitlement lifetime from activation; zero means no expiry.
	ValidFor time.Duration `json:"valid_for,omitempty"`
	// DevPort is the localhost port the tool listens on in development.
	DevPort int `json:"dev_port,omitempty"`
}

// Validate checks module definition invariants.
func (m *Module) Validate() error {
	if err := ValidateModuleID(m.ID); err != nil {
		return err
	}
	if m.TokenCost < 0 {
		return errors.New("token_cost must be >= 0")
	}
	if m.MaxUsage != nil && *m.MaxUsage <= 0 {
		return errors.New("max_usage must be positive when bounded")
	}
	return nil
}

// ValidateModuleID checks that a module id is a usable subdomain label:
// non-empty, lowercase alphanumerics and hyphens, bounded length.
func ValidateModuleID(id string) error {
	if id == "" {
		return errors.New("module id is required")
	}
	if len(id) > maxModuleIDLen {
		return errors.New("module id is too long")
	}
	if strings.HasPrefix(id, "-") || strings.HasSuffix(id, "-") {
		return errors.New("module id must not start or end with a hyphen")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return errors.New("module id must contain only lowercase letters, digits, and hyphens")
		}
	}
	return nil
}

// TokenBalance is a user's spendable token holding.
type TokenBalance struct {
	UserID    string    `json:"user_id"    db:"user_id"`
	Balance   int       `json:"balance"    db:"balance"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
