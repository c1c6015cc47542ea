package http

import (
	"encoding/json"
	"net/http"

	"github.com/monitordb/auth/internal/auth/service"
	"github.com/monitordb/auth/pkg/httpx"
	"github.com/monitordb/auth/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register. Gated on admin:users; only
// administrators create accounts.
type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email, password, and role are required")
		return
	}

	createdBy := httpx.UserIDFromContext(ctx)

	user, err := h.AuthService.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, createdBy)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, user)
}
