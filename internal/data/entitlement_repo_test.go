package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/modhub/modhub-api/internal/testutil"
)

func creditTokens(t *testing.T, db *sql.DB, userID string, amount int) {
	t.Helper()
	_, err := NewBalanceRepo(db).Credit(context.Background(), userID, amount)
	require.NoError(t, err)
}

func balanceOf(t *testing.T, db *sql.DB, userID string) int {
	t.Helper()
	b, err := NewBalanceRepo(db).Get(context.Background(), userID)
	require.NoError(t, err)
	return b.Balance
}

func TestEntitlementRepo_Activate_DebitsAndCreates(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 15)

		ent, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).Build())
		require.NoError(t, err)
		assert.True(t, ent.IsActive)
		assert.Equal(t, 0, ent.UsageCount)
		assert.Nil(t, ent.ExpiresAt)
		assert.Equal(t, 5, balanceOf(t, db, "user-1"))

		got, err := repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.Equal(t, ent.ID, got.ID)
	})
}

func TestEntitlementRepo_Activate_IdempotentNoSecondDebit(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 15)
		params := testutil.NewActivateParams().WithUser("user-1").WithModule("summarizer").WithCost(10).Build()

		first, err := repo.Activate(ctx, params)
		require.NoError(t, err)

		second, err := repo.Activate(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 5, balanceOf(t, db, "user-1"), "repeat activation must not debit again")
	})
}

func TestEntitlementRepo_Activate_InsufficientTokens(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 5)

		_, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).Build())
		require.ErrorIs(t, err, ErrInsufficientTokens)

		// Nothing was debited and no row was created.
		assert.Equal(t, 5, balanceOf(t, db, "user-1"))
		_, err = repo.Get(ctx, "user-1", "summarizer")
		assert.ErrorIs(t, err, ErrEntitlementNotFound)
	})
}

func TestEntitlementRepo_Activate_ConcurrentSingleDebit(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 30)
		params := testutil.NewActivateParams().WithUser("user-1").WithModule("summarizer").WithCost(10).Build()

		var g errgroup.Group
		for i := 0; i < 8; i++ {
			g.Go(func() error {
				_, err := repo.Activate(ctx, params)
				return err
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, 20, balanceOf(t, db, "user-1"), "concurrent activations must debit exactly once")

		ent, err := repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.True(t, ent.IsActive)
		assert.Equal(t, 0, ent.UsageCount)
	})
}

func TestEntitlementRepo_RecordUse_CeilingDeactivatesAtomically(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 10)
		_, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).WithMaxUsage(2).Build())
		require.NoError(t, err)

		first, err := repo.RecordUse(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.Equal(t, 1, first.UsageCount)
		assert.True(t, first.IsActive)
		require.NotNil(t, first.LastUsedAt)

		second, err := repo.RecordUse(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.Equal(t, 2, second.UsageCount)
		assert.False(t, second.IsActive, "hitting the ceiling must deactivate in the same update")
	})
}

func TestEntitlementRepo_RecordUse_Unknown(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEntitlementRepo(db)
		_, err := repo.RecordUse(context.Background(), "nobody", "summarizer")
		assert.ErrorIs(t, err, ErrEntitlementNotFound)
	})
}

func TestEntitlementRepo_RecordUse_RefusesSuspended(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 10)
		_, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).Build())
		require.NoError(t, err)

		require.NoError(t, repo.SetActive(ctx, "user-1", "summarizer", false))

		_, err = repo.RecordUse(ctx, "user-1", "summarizer")
		assert.ErrorIs(t, err, ErrEntitlementNotUsable)

		ent, err := repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.Equal(t, 0, ent.UsageCount, "a refused use must not increment")
		assert.False(t, ent.IsActive)
	})
}

func TestEntitlementRepo_RecordUse_RefusesAtCeiling(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 10)
		_, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).WithMaxUsage(1).Build())
		require.NoError(t, err)

		_, err = repo.RecordUse(ctx, "user-1", "summarizer")
		require.NoError(t, err)

		_, err = repo.RecordUse(ctx, "user-1", "summarizer")
		assert.ErrorIs(t, err, ErrEntitlementNotUsable)

		ent, err := repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.Equal(t, 1, ent.UsageCount, "usage must never pass the ceiling")
	})
}

func TestEntitlementRepo_SetActive_SuspendReinstate(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewEntitlementRepo(db)

		creditTokens(t, db, "user-1", 10)
		_, err := repo.Activate(ctx, testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).Build())
		require.NoError(t, err)

		require.NoError(t, repo.SetActive(ctx, "user-1", "summarizer", false))
		ent, err := repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.False(t, ent.IsActive)

		require.NoError(t, repo.SetActive(ctx, "user-1", "summarizer", true))
		ent, err = repo.Get(ctx, "user-1", "summarizer")
		require.NoError(t, err)
		assert.True(t, ent.IsActive)

		err = repo.SetActive(ctx, "user-1", "unknown-module", false)
		assert.ErrorIs(t, err, ErrEntitlementNotFound)
	})
}

func TestEntitlementRepo_Activate_ReactivatesExpiredWithFreshDebit(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewEntitlementRepoWithTimeProvider(db, tp)

		creditTokens(t, db, "user-1", 25)
		params := testutil.NewActivateParams().
			WithUser("user-1").WithModule("summarizer").WithCost(10).WithValidFor(time.Hour).Build()

		first, err := repo.Activate(ctx, params)
		require.NoError(t, err)
		require.NotNil(t, first.ExpiresAt)
		assert.Equal(t, 15, balanceOf(t, db, "user-1"))

		// Past expiry the row is no longer usable, so activation debits again
		// and resets usage.
		tp.AddTime(2 * time.Hour)
		second, err := repo.Activate(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 0, second.UsageCount)
		assert.True(t, second.ExpiresAt.After(*first.ExpiresAt))
		assert.Equal(t, 5, balanceOf(t, db, "user-1"))
	})
}
