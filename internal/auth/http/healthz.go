package http

import (
	"net/http"
	"time"

	"github.com/monitordb/auth/internal/auth/store"
	"github.com/monitordb/auth/pkg/httpx"
)

// HealthzHandler reports service health including database reachability.
// Returns 503 when the database ping fails so load balancers stop routing.
func HealthzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, map[string]string{
			"status":  status,
			"uptime":  time.Since(startTime).String(),
			"version": version,
		})
	}
}
