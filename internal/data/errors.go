package data

import "errors"

// Shared sentinel errors for data-layer repositories. Services translate
// these into the API error taxonomy.
var (
	// Entitlement repository sentinels.
	ErrEntitlementNotFound  = errors.New("entitlement not found")
	ErrEntitlementNotUsable = errors.New("entitlement not usable")
	ErrInsufficientTokens   = errors.New("insufficient token balance")

	// Balance repository sentinels.
	ErrBalanceNotFound = errors.New("token balance not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
)
