package http

import (
	"net/http"

	"github.com/monitordb/auth/internal/auth/rbac"
	"github.com/monitordb/auth/pkg/httpx"
)

// RolesHandler serves the static role and permission catalogs. Available to
// any authenticated caller so clients can render role pickers.
type RolesHandler struct{}

// HandleRoles serves GET /v1/auth/roles.
func (h *RolesHandler) HandleRoles(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"roles": rbac.ListRoles(),
	})
}

// HandlePermissions serves GET /v1/auth/permissions.
func (h *RolesHandler) HandlePermissions(w http.ResponseWriter, _ *http.Request) {
	perms := rbac.Strings(rbac.AllPermissions())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"permissions": perms,
		"count":       len(perms),
	})
}
