package httpx

import (
	"errors"
	"net/http"

	"github.com/modhub/modhub-api/internal/data"
	apperrors "github.com/modhub/modhub-api/internal/errors"
	"github.com/modhub/modhub-api/internal/ports"
	"github.com/modhub/modhub-api/internal/service"
)

// BalanceHandlers provides HTTP handlers for token balances and the admin
// credit/suspend/reinstate surface.
type BalanceHandlers struct {
	Balances     ports.BalanceRepository
	Entitlements *service.EntitlementService
}

// Get handles GET /api/balance for the signed-in user.
func (h *BalanceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.NotAuthenticated("no authenticated user"))
		return
	}

	balance, err := h.Balances.Get(r.Context(), sess.UserID)
	if err != nil {
		WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read balance"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"balance":    balance.Balance,
		"updated_at": balance.UpdatedAt,
	})
}

type creditRequest struct {
	Amount int `json:"amount"`
}

// Credit handles POST /api/admin/users/{id}/credit. This is where the payment
// collaborator lands purchased tokens.
func (h *BalanceHandlers) Credit(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		WriteAppError(w, apperrors.ValidationField("user_id", "user id is required"))
		return
	}

	var req creditRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	balance, err := h.Balances.Credit(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, data.ErrInvalidAmount) {
			WriteAppError(w, apperrors.ValidationField("amount", "amount must be positive"))
			return
		}
		WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "credit balance"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": balance.UserID,
		"balance": balance.Balance,
	})
}

type entitlementAdminRequest struct {
	UserID string `json:"user_id"`
}

// Suspend handles POST /api/admin/entitlements/{module}/suspend.
func (h *BalanceHandlers) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setEntitlementActive(w, r, false)
}

// Reinstate handles POST /api/admin/entitlements/{module}/reinstate.
func (h *BalanceHandlers) Reinstate(w http.ResponseWriter, r *http.Request) {
	h.setEntitlementActive(w, r, true)
}

func (h *BalanceHandlers) setEntitlementActive(w http.ResponseWriter, r *http.Request, active bool) {
	moduleID := r.PathValue("module")

	var req entitlementAdminRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		WriteAppError(w, apperrors.ValidationField("user_id", "user id is required"))
		return
	}

	var err error
	if active {
		err = h.Entitlements.Reinstate(r.Context(), req.UserID, moduleID)
	} else {
		err = h.Entitlements.Suspend(r.Context(), req.UserID, moduleID)
	}
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "is_active": active})
}
