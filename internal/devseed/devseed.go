// Package devseed gives the development identity a usable starting state so
// a fresh database is immediately explorable: tokens to spend and nothing
// activated yet.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/modhub/modhub-api/internal/data"
)

// DefaultStartingBalance is enough to activate every built-in module at
// least once.
const DefaultStartingBalance = 100

// Seed credits the development user's token balance when it is empty.
// Re-running against an already seeded database is a no-op, so restarts do
// not inflate the balance.
func Seed(ctx context.Context, db *sql.DB, userID string, logger *slog.Logger) error {
	if userID == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	balances := data.NewBalanceRepo(db)

	current, err := balances.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("read dev balance: %w", err)
	}
	if current.Balance > 0 {
		logger.DebugContext(ctx, "dev balance already seeded",
			"user_id", userID, "balance", current.Balance)
		return nil
	}

	seeded, err := balances.Credit(ctx, userID, DefaultStartingBalance)
	if err != nil {
		return fmt.Errorf("seed dev balance: %w", err)
	}

	logger.InfoContext(ctx, "seeded dev token balance",
		"user_id", userID, "balance", seeded.Balance)
	return nil
}
