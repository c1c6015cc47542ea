package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/monitordb/auth/internal/auth/metrics"
	"github.com/monitordb/auth/internal/auth/service"
	"github.com/monitordb/auth/internal/auth/store"
	"github.com/monitordb/auth/pkg/httpx"
	"github.com/monitordb/auth/pkg/jwtx"
	"github.com/monitordb/auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerUsers()
	r.registerRoles()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit by IP (no authn, the token is the credential)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - authenticated, lenient rate limit by user
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /register - admin-only user creation, moderate rate limit by user
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.AuthnMiddleware(r.verifier),
			RequirePermission("admin:users"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccount() {
	// POST /change-password - strict rate limit by user (carries the current password)
	changeHandler := &ChangePasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(changeHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	me := &MeHandler{AuthService: r.AuthService}
	secured := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/auth/me", secured(http.HandlerFunc(me.HandleMe)))
	r.Mux.Handle("GET /v1/auth/me/permissions", secured(http.HandlerFunc(me.HandlePermissions)))
	r.Mux.Handle("GET /v1/auth/validate-token", secured(http.HandlerFunc(me.HandleValidate)))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{AuthService: r.AuthService}

	// All user administration requires the admin:users permission.
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		RequirePermission("admin:users"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.verifier),
		RequirePermission("admin:users"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// Role assignment is gated separately on admin:roles.
	securedRole := httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
		httpx.AuthnMiddleware(r.verifier),
		RequirePermission("admin:roles"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/auth/users", securedList)
	r.Mux.Handle("GET /v1/auth/users/{id}", securedGet)
	r.Mux.Handle("PUT /v1/auth/users/role", securedRole)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/auth/roles", secured(h.HandleRoles))
	r.Mux.Handle("GET /v1/auth/permissions", secured(h.HandlePermissions))
}

func (r *Router) registerSystem() {
	// Health check endpoint - lenient rate limit (monitoring systems poll frequently)
	r.Mux.Handle("GET /healthz",
		httpx.Chain(HealthzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", metrics.Handler())
}
