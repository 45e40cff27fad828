package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/modhub/modhub-api/internal/data/pgxutil"
	"github.com/modhub/modhub-api/internal/domain/model"
)

// BalanceRepo provides database operations for token balances. Debits happen
// only inside EntitlementRepo.Activate; this repo covers reads and credits.
type BalanceRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBalanceRepo creates a new BalanceRepo with real time provider.
func NewBalanceRepo(db *sql.DB) *BalanceRepo {
	return &BalanceRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBalanceRepoWithTimeProvider creates a new BalanceRepo with a custom time provider (useful for tests).
func NewBalanceRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BalanceRepo {
	return &BalanceRepo{DB: db, timeProvider: tp}
}

// Get returns the user's balance. Users with no balance row are reported as
// holding zero tokens rather than as an error.
func (r *BalanceRepo) Get(ctx context.Context, userID string) (*model.TokenBalance, error) {
	var out model.TokenBalance
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			SELECT user_id, balance, updated_at
			FROM token_balances
			WHERE user_id = $1
		`, userID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TokenBalance])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.TokenBalance{UserID: userID, Balance: 0, UpdatedAt: r.timeProvider.Now().UTC()}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &out, nil
}

// Credit adds tokens to the user's balance, creating the row when absent.
func (r *BalanceRepo) Credit(ctx context.Context, userID string, amount int) (*model.TokenBalance, error) {
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := r.timeProvider.Now().UTC()
	var out model.TokenBalance
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			INSERT INTO token_balances (user_id, balance, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET
				balance    = token_balances.balance + EXCLUDED.balance,
				updated_at = EXCLUDED.updated_at
			RETURNING user_id, balance, updated_at
		`, userID, amount, now)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TokenBalance])
		return collectErr
	})
	if err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}
	return &out, nil
}
