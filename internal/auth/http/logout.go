package http

import (
	"net/http"

	"github.com/monitordb/auth/internal/auth/service"
	"github.com/monitordb/auth/pkg/httpx"
	"github.com/monitordb/auth/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. Invalidates every session the
// caller owns.
type LogoutHandler struct {
	AuthService *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no subject in context")
		return
	}

	if err := h.AuthService.Logout(ctx, userID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
