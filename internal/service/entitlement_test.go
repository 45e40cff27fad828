package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modhub/modhub-api/internal/data"
	"github.com/modhub/modhub-api/internal/domain/model"
	apperrors "github.com/modhub/modhub-api/internal/errors"
	"github.com/modhub/modhub-api/internal/mocks"
	"github.com/modhub/modhub-api/internal/ports"
	"github.com/modhub/modhub-api/internal/testutil"
)

func newTestEntitlementService(t *testing.T) (*EntitlementService, *mocks.MockEntitlementRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntitlementRepository(ctrl)
	cat, err := NewModuleCatalog(ModuleCatalogOptions{ParentDomain: "modhub.io", Modules: testModules()})
	require.NoError(t, err)

	svc := NewEntitlementService(EntitlementServiceOptions{Entitlements: repo, Catalog: cat})
	svc.now = func() time.Time { return testutil.TestTime() }
	return svc, repo
}

func usableEntitlement() *model.ModuleEntitlement {
	return &model.ModuleEntitlement{
		ID:       "ent-1",
		UserID:   "user-1",
		ModuleID: "summarizer",
		IsActive: true,
	}
}

func TestCheckActive(t *testing.T) {
	svc, repo := newTestEntitlementService(t)
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(usableEntitlement(), nil)
	res, err := svc.CheckActive(ctx, "user-1", "summarizer")
	require.NoError(t, err)
	assert.True(t, res.Active)
	require.NotNil(t, res.Entitlement)

	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(nil, data.ErrEntitlementNotFound)
	res, err = svc.CheckActive(ctx, "user-1", "summarizer")
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Nil(t, res.Entitlement)
}

func TestCheckActive_LapsedRowIsInactive(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	ent := usableEntitlement()
	ent.ExpiresAt = testutil.TimePtr(testutil.TestTime().Add(-time.Minute))
	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(ent, nil)

	res, err := svc.CheckActive(context.Background(), "user-1", "summarizer")
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.NotNil(t, res.Entitlement, "lapsed row is still reported for display")
}

func TestCheckActive_InputValidation(t *testing.T) {
	svc, _ := newTestEntitlementService(t)

	_, err := svc.CheckActive(context.Background(), "", "summarizer")
	assert.True(t, apperrors.IsNotAuthenticated(err))

	_, err = svc.CheckActive(context.Background(), "user-1", "Bad_ID")
	assert.True(t, apperrors.IsValidation(err))
}

func TestActivate(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	repo.EXPECT().
		Activate(gomock.Any(), ports.ActivateParams{UserID: "user-1", ModuleID: "summarizer", Cost: 10}).
		Return(usableEntitlement(), nil)

	ent, err := svc.Activate(context.Background(), "user-1", "summarizer")
	require.NoError(t, err)
	assert.True(t, ent.IsActive)
}

func TestActivate_UnknownModule(t *testing.T) {
	svc, _ := newTestEntitlementService(t)
	_, err := svc.Activate(context.Background(), "user-1", "unknown")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestActivate_InsufficientTokens(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	repo.EXPECT().Activate(gomock.Any(), gomock.Any()).Return(nil, data.ErrInsufficientTokens)

	_, err := svc.Activate(context.Background(), "user-1", "image-lab")
	assert.True(t, apperrors.IsInsufficientTokens(err))
}

func TestRecordUse(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	used := usableEntitlement()
	used.UsageCount = 1
	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(usableEntitlement(), nil)
	repo.EXPECT().RecordUse(gomock.Any(), "user-1", "summarizer").Return(used, nil)

	got, err := svc.RecordUse(context.Background(), "user-1", "summarizer")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)
}

func TestRecordUse_NotActivated(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(nil, data.ErrEntitlementNotFound)

	_, err := svc.RecordUse(context.Background(), "user-1", "summarizer")
	assert.True(t, apperrors.IsNotEntitled(err))
}

func TestRecordUse_Lapsed(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	ent := usableEntitlement()
	ent.IsActive = false
	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(ent, nil)

	_, err := svc.RecordUse(context.Background(), "user-1", "summarizer")
	assert.True(t, apperrors.IsNotEntitled(err))
}

func TestRecordUse_SuspendedAfterCheck(t *testing.T) {
	svc, repo := newTestEntitlementService(t)

	// The read sees a usable row, but a suspension lands before the debit.
	// The guarded debit refuses instead of incrementing a suspended row.
	repo.EXPECT().Get(gomock.Any(), "user-1", "summarizer").Return(usableEntitlement(), nil)
	repo.EXPECT().RecordUse(gomock.Any(), "user-1", "summarizer").Return(nil, data.ErrEntitlementNotUsable)

	_, err := svc.RecordUse(context.Background(), "user-1", "summarizer")
	assert.True(t, apperrors.IsNotEntitled(err))
}

func TestSuspendAndReinstate(t *testing.T) {
	svc, repo := newTestEntitlementService(t)
	ctx := context.Background()

	repo.EXPECT().SetActive(gomock.Any(), "user-1", "summarizer", false).Return(nil)
	require.NoError(t, svc.Suspend(ctx, "user-1", "summarizer"))

	repo.EXPECT().SetActive(gomock.Any(), "user-1", "summarizer", true).Return(nil)
	require.NoError(t, svc.Reinstate(ctx, "user-1", "summarizer"))

	repo.EXPECT().SetActive(gomock.Any(), "user-1", "summarizer", false).Return(data.ErrEntitlementNotFound)
	err := svc.Suspend(ctx, "user-1", "summarizer")
	assert.True(t, apperrors.IsNotFound(err))

	repo.EXPECT().SetActive(gomock.Any(), "user-1", "summarizer", true).Return(errors.New("db down"))
	err = svc.Reinstate(ctx, "user-1", "summarizer")
	assert.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}
