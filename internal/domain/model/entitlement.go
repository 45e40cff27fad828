//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"time"
)

// ModuleEntitlement is the per-user, per-module record of whether a module is
// unlocked, how much it has been used, and when it stops being usable.
// There is at most one row per (user, module); the lifecycle is soft-only
// (suspend/expire), rows are never hard-deleted.
type ModuleEntitlement struct {
	ID         string     `json:"id"                     db:"id"`
	UserID     string     `json:"user_id"                db:"user_id"`
	ModuleID   string     `json:"module_id"              db:"module_id"`
	IsActive   bool       `json:"is_active"              db:"is_active"`
	UsageCount int        `json:"usage_count"            db:"usage_count"`
	MaxUsage   *int       `json:"max_usage,omitempty"    db:"max_usage"`
	CreatedAt  time.Time  `json:"created_at"             db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"   db:"expires_at"`
	UpdatedAt  time.Time  `json:"updated_at"             db:"updated_at"`
}

// Usable reports whether the entitlement grants access at the given instant:
// active, not expired, and with usage headroom. A nil MaxUsage means
// unbounded usage; a nil ExpiresAt means no expiry.
func (e *ModuleEntitlement) Usable(now time.Time) bool {
	if e == nil || !e.IsActive {
		return false
	}
	if e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
		return false
	}
	if e.MaxUsage != nil && e.UsageCount >= *e.MaxUsage {
		return false
	}
	return true
}

// Validate checks structural invariants on a loaded row.
func (e *ModuleEntitlement) Validate() error {
	if e.UserID == "" {
		return errors.New("user_id is required")
	}
	if e.ModuleID == "" {
		return errors.New("module_id is required")
	}
	if e.UsageCount < 0 {
		return errors.New("usage_count must be >= 0")
	}
	if e.MaxUsage != nil && *e.MaxUsage <= 0 {
		return errors.New("max_usage must be positive when bounded")
	}
	return nil
}
