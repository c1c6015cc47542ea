package http

import (
	"net/http"

	"github.com/monitordb/auth/internal/auth/service"
	"github.com/monitordb/auth/pkg/httpx"
	"github.com/monitordb/auth/pkg/slogx"
)

// MeHandler serves the authenticated self-service reads: GET /v1/auth/me,
// GET /v1/auth/me/permissions, and GET /v1/auth/validate-token.
type MeHandler struct {
	AuthService *service.AuthService
}

// HandleMe returns the caller's own public profile from storage, not from
// the token, so a role change shows here before the token is refreshed.
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no subject in context")
		return
	}

	user, err := h.AuthService.GetUser(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}

// HandlePermissions returns the permission snapshot carried in the caller's
// access token.
func (h *MeHandler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no claims in context")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":     claims.Subject,
		"role":        claims.Role,
		"permissions": claims.Permissions,
	})
}

// HandleValidate answers 200 for any token that passed authn. Used by
// sibling services to offload verification.
func (h *MeHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no claims in context")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"user_id": claims.Subject,
		"email":   claims.Email,
		"role":    claims.Role,
		"expires": claims.ExpiresAt.Time,
	})
}
