package httpx

import (
	"log/slog"
	"net/http"

	"github.com/modhub/modhub-api/internal/domain/model"
	apperrors "github.com/modhub/modhub-api/internal/errors"
	"github.com/modhub/modhub-api/internal/service"
)

// ModuleHandlers provides HTTP handlers for the module catalog, activation,
// and access-token issuance.
type ModuleHandlers struct {
	Catalog      *service.ModuleCatalog
	Entitlements *service.EntitlementService
	Issuer       *service.AccessTokenIssuer
	Gate         *service.ActivationGate
	Logger       *slog.Logger
}

// moduleView is the catalog entry shape returned to clients. The resolved URL
// is derived per deployment; clients never hardcode module origins.
type moduleView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TokenCost int    `json:"token_cost"`
	MaxUsage  *int   `json:"max_usage,omitempty"`
	URL       string `json:"url"`
}

// List handles GET /api/modules.
func (h *ModuleHandlers) List(w http.ResponseWriter, r *http.Request) {
	modules := h.Catalog.List()
	views := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, moduleView{
			ID:        m.ID,
			Name:      m.Name,
			TokenCost: m.TokenCost,
			MaxUsage:  m.MaxUsage,
			URL:       h.Catalog.ResolveURL(m.ID),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"modules": views})
}

// Entitlement handles GET /api/modules/{id}/entitlement.
// Anonymous requests are a normal outcome: the gate reports unauthenticated
// rather than the middleware rejecting the request.
func (h *ModuleHandlers) Entitlement(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("id")
	if err := model.ValidateModuleID(moduleID); err != nil {
		WriteAppError(w, apperrors.ValidationField("module_id", err.Error()))
		return
	}
	if _, err := h.Catalog.Get(moduleID); err != nil {
		WriteAppError(w, err)
		return
	}

	sess, _ := GetSessionFromContext(r.Context())
	result, err := h.Gate.Evaluate(r.Context(), sess, moduleID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"isActivated": result.State == service.GateActive,
		"state":       result.State,
	})
}

// Activate handles POST /api/modules/{id}/activate.
func (h *ModuleHandlers) Activate(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.NotAuthenticated("no authenticated user"))
		return
	}
	moduleID := r.PathValue("id")

	ent, err := h.Entitlements.Activate(r.Context(), sess.UserID, moduleID)
	if err != nil {
		h.logger().InfoContext(r.Context(), "activation refused",
			"module", moduleID, "user", sess.UserID, "error", err)
		WriteJSON(w, statusForError(err), map[string]any{
			"success": false,
			"error":   string(apperrors.GetCode(err)),
			"message": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"entitlement": ent,
	})
}

// Token handles POST /api/modules/{id}/token. Issuance re-checks the
// entitlement, so a lapse since activation comes back as not_entitled.
func (h *ModuleHandlers) Token(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.NotAuthenticated("no authenticated user"))
		return
	}
	moduleID := r.PathValue("id")

	token, err := h.Issuer.Issue(r.Context(), *sess, moduleID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, token)
}

// Launch handles GET /api/modules/{id}/launch: mints a token and redirects
// into the module with it attached, so "open tool" is a single click.
func (h *ModuleHandlers) Launch(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.NotAuthenticated("no authenticated user"))
		return
	}
	moduleID := r.PathValue("id")
	if _, err := h.Catalog.Get(moduleID); err != nil {
		WriteAppError(w, err)
		return
	}

	target, err := h.Gate.OpenTool(r.Context(), sess, moduleID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *ModuleHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
