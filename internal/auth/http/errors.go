package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/monitordb/auth/internal/auth/service"
	"github.com/monitordb/auth/pkg/httpx"
	"github.com/monitordb/auth/pkg/jwtx"
)

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Anything unrecognized is a 500 and gets logged; classified errors are the
// caller's fault and are not.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var locked *service.AccountLockedError
	if errors.As(err, &locked) {
		retry := max(int(time.Until(locked.Until).Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		httpx.WriteJSON(w, http.StatusLocked, map[string]any{
			"error":             "account_locked",
			"error_description": "account locked after repeated failed logins",
			"locked_until":      locked.Until.Format(time.RFC3339),
		})
		return
	}

	var weak *service.WeakPasswordError
	if errors.As(err, &weak) {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "weak_password",
			"error_description": "password does not meet the policy",
			"violations":        weak.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
			"incorrect email or password")
	case errors.Is(err, service.ErrAccountInactive):
		httpx.WriteError(w, http.StatusForbidden, "account_inactive",
			"account is not active")
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusConflict, "duplicate_email",
			"email is already registered")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role",
			"unknown role")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found",
			"no such user")
	case isTokenError(err):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token",
			"refresh token is invalid or expired")
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"internal error")
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, jwtx.ErrMalformed) ||
		errors.Is(err, jwtx.ErrInvalidSig) ||
		errors.Is(err, jwtx.ErrExpired) ||
		errors.Is(err, jwtx.ErrNotYet) ||
		errors.Is(err, jwtx.ErrIssuer) ||
		errors.Is(err, jwtx.ErrTokenType)
}
