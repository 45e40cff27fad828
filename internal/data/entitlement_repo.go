package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/modhub/modhub-api/internal/data/pgxutil"
	"github.com/modhub/modhub-api/internal/domain/model"
	"github.com/modhub/modhub-api/internal/ports"
)

const entitlementColumns = `id, user_id, module_id, is_active, usage_count, max_usage, created_at, last_used_at, expires_at, updated_at`

// EntitlementRepo provides database operations for module entitlements.
// Activate and RecordUse are the two write paths that carry money-like
// invariants: activation debits the token balance in the same transaction
// that creates the row, and usage recording deactivates the row in the same
// statement that pushes usage to the ceiling.
type EntitlementRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEntitlementRepo creates a new EntitlementRepo with real time provider.
func NewEntitlementRepo(db *sql.DB) *EntitlementRepo {
	return &EntitlementRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEntitlementRepoWithTimeProvider creates a new EntitlementRepo with a custom time provider (useful for tests).
func NewEntitlementRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EntitlementRepo {
	return &EntitlementRepo{DB: db, timeProvider: tp}
}

// Get retrieves the entitlement row for a (user, module) pair.
func (r *EntitlementRepo) Get(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	var out model.ModuleEntitlement
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			SELECT `+entitlementColumns+`
			FROM module_entitlements
			WHERE user_id = $1 AND module_id = $2
		`, userID, moduleID)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ModuleEntitlement])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntitlementNotFound
		}
		return nil, fmt.Errorf("get entitlement: %w", err)
	}
	return &out, nil
}

// Activate unlocks a module for a user. The token debit and the entitlement
// upsert happen in one transaction with the balance row locked, so two
// concurrent activations for the same pair serialize: the first debits and
// creates the row, the second observes a usable entitlement and returns it
// without a second debit. Returns ErrInsufficientTokens when the balance
// cannot cover the cost.
func (r *EntitlementRepo) Activate(ctx context.Context, p ports.ActivateParams) (*model.ModuleEntitlement, error) {
	if p.UserID == "" || p.ModuleID == "" {
		return nil, errors.New("user_id and module_id are required")
	}
	if p.Cost < 0 {
		return nil, ErrInvalidAmount
	}

	now := r.timeProvider.Now().UTC()
	var out model.ModuleEntitlement
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		// Guarantee a balance row exists so FOR UPDATE has something to lock.
		if _, execErr := tx.Exec(ctx, `
			INSERT INTO token_balances (user_id, balance) VALUES ($1, 0)
			ON CONFLICT (user_id) DO NOTHING
		`, p.UserID); execErr != nil {
			return fmt.Errorf("ensure balance row: %w", execErr)
		}

		var balance int
		if scanErr := tx.QueryRow(ctx, `
			SELECT balance FROM token_balances WHERE user_id = $1 FOR UPDATE
		`, p.UserID).Scan(&balance); scanErr != nil {
			return fmt.Errorf("lock balance row: %w", scanErr)
		}

		existing, lookupErr := lockEntitlement(ctx, tx, p.UserID, p.ModuleID)
		if lookupErr != nil {
			return lookupErr
		}
		if existing != nil && existing.Usable(now) {
			// Idempotent: already unlocked, nothing to debit.
			out = *existing
			return nil
		}

		if balance < p.Cost {
			return ErrInsufficientTokens
		}
		if _, debitErr := tx.Exec(ctx, `
			UPDATE token_balances SET balance = balance - $2, updated_at = $3 WHERE user_id = $1
		`, p.UserID, p.Cost, now); debitErr != nil {
			return fmt.Errorf("debit balance: %w", debitErr)
		}

		var expiresAt *time.Time
		if p.ValidFor > 0 {
			e := now.Add(p.ValidFor)
			expiresAt = &e
		}

		rows, upsertErr := tx.Query(ctx, `
			INSERT INTO module_entitlements (
				user_id, module_id, is_active, usage_count, max_usage, created_at, last_used_at, expires_at, updated_at
			) VALUES ($1, $2, TRUE, 0, $3, $4, NULL, $5, $4)
			ON CONFLICT ON CONSTRAINT module_entitlements_user_module_key DO UPDATE SET
				is_active    = TRUE,
				usage_count  = 0,
				max_usage    = EXCLUDED.max_usage,
				last_used_at = NULL,
				expires_at   = EXCLUDED.expires_at,
				updated_at   = EXCLUDED.updated_at
			RETURNING `+entitlementColumns+`
		`, p.UserID, p.ModuleID, p.MaxUsage, now, expiresAt)
		if upsertErr != nil {
			return fmt.Errorf("upsert entitlement: %w", upsertErr)
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ModuleEntitlement])
		return collectErr
	}})
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) {
			return nil, ErrInsufficientTokens
		}
		return nil, fmt.Errorf("activate entitlement: %w", err)
	}
	return &out, nil
}

// RecordUse debits one use from the entitlement. The usability guards, the
// increment, the last_used_at stamp, and the at-ceiling deactivation are a
// single UPDATE so a suspension, expiry, or concurrent debit landing between
// a caller's read and this write cannot push usage past the ceiling or
// revive a lapsed row. A row that exists but fails the guards surfaces as
// ErrEntitlementNotUsable.
func (r *EntitlementRepo) RecordUse(ctx context.Context, userID, moduleID string) (*model.ModuleEntitlement, error) {
	now := r.timeProvider.Now().UTC()
	var out model.ModuleEntitlement
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, `
			UPDATE module_entitlements SET
				usage_count  = usage_count + 1,
				last_used_at = $3,
				is_active    = CASE
					WHEN max_usage IS NOT NULL AND usage_count + 1 >= max_usage THEN FALSE
					ELSE is_active
				END,
				updated_at   = $3
			WHERE user_id = $1 AND module_id = $2
				AND is_active
				AND (expires_at IS NULL OR expires_at > $3)
				AND (max_usage IS NULL OR usage_count < max_usage)
			RETURNING `+entitlementColumns+`
		`, userID, moduleID, now)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ModuleEntitlement])
		if errors.Is(collectErr, pgx.ErrNoRows) {
			// Distinguish a missing row from one the guards rejected.
			var exists bool
			if scanErr := conn.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM module_entitlements WHERE user_id = $1 AND module_id = $2
				)
			`, userID, moduleID).Scan(&exists); scanErr != nil {
				return scanErr
			}
			if exists {
				return ErrEntitlementNotUsable
			}
			return ErrEntitlementNotFound
		}
		return collectErr
	})
	if err != nil {
		if errors.Is(err, ErrEntitlementNotFound) || errors.Is(err, ErrEntitlementNotUsable) {
			return nil, err
		}
		return nil, fmt.Errorf("record use: %w", err)
	}
	return &out, nil
}

// SetActive flips the is_active flag without touching usage or expiry.
func (r *EntitlementRepo) SetActive(ctx context.Context, userID, moduleID string, active bool) error {
	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE module_entitlements SET is_active = $3, updated_at = $4
			WHERE user_id = $1 AND module_id = $2
		`, userID, moduleID, active, now)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrEntitlementNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEntitlementNotFound) {
			return ErrEntitlementNotFound
		}
		return fmt.Errorf("set entitlement active: %w", err)
	}
	return nil
}

// lockEntitlement fetches the row FOR UPDATE inside an activation transaction.
// Returns (nil, nil) when no row exists yet.
func lockEntitlement(ctx context.Context, tx pgx.Tx, userID, moduleID string) (*model.ModuleEntitlement, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+entitlementColumns+`
		FROM module_entitlements
		WHERE user_id = $1 AND module_id = $2
		FOR UPDATE
	`, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("lock entitlement row: %w", err)
	}
	defer rows.Close()
	existing, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ModuleEntitlement])
	if collectErr != nil {
		if errors.Is(collectErr, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock entitlement row: %w", collectErr)
	}
	return &existing, nil
}
