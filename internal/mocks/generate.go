// Package mocks provides mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockEntitlementRepository(ctrl)
//	mockRepo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(ent, nil)
package mocks

// Generate mock for EntitlementRepository interface from internal/ports.
// This creates MockEntitlementRepository with methods:
// Get, Activate, RecordUse, SetActive
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=entitlement_repository_mock.go github.com/modhub/modhub-api/internal/ports EntitlementRepository

// Generate mock for BalanceRepository interface from internal/ports.
// This creates MockBalanceRepository with methods:
// Get, Credit
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=balance_repository_mock.go github.com/modhub/modhub-api/internal/ports BalanceRepository

// Generate mock for TokenSigner interface from internal/ports.
// This creates MockTokenSigner with method:
// Sign
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=token_signer_mock.go github.com/modhub/modhub-api/internal/ports TokenSigner
