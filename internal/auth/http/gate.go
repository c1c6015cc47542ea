package http

import (
	"net/http"

	"github.com/monitordb/auth/internal/auth/rbac"
	"github.com/monitordb/auth/pkg/httpx"
)

// RequirePermission gates a handler on one permission from the caller's
// token. The check runs against the permission snapshot in the claims, so a
// role change takes effect on the next refresh, not mid-token. Must sit
// inside AuthnMiddleware in the chain.
func RequirePermission(permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := httpx.ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no claims in context")
				return
			}

			for _, p := range claims.Permissions {
				if p == permission {
					next.ServeHTTP(w, r)
					return
				}
			}

			httpx.WriteError(w, http.StatusForbidden,
				"insufficient_permission", "missing permission: "+permission)
		})
	}
}

// RequireRole gates a handler on a minimum role level. Exists for the rare
// endpoint where a level check reads better than a permission check.
func RequireRole(minimum rbac.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := httpx.ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "no claims in context")
				return
			}

			role, err := rbac.ParseRole(claims.Role)
			if err != nil || !rbac.HasLevel(role, minimum) {
				httpx.WriteError(w, http.StatusForbidden,
					"insufficient_permission", "requires role "+string(minimum)+" or above")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
