package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req["password"] != "Str0ng!Pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "incorrect email or password",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "bearer",
			ExpiresIn:    1800,
			UserID:       "u-1",
			Role:         "analyst",
		})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access-2",
			RefreshToken: "refresh",
			TokenType:    "bearer",
		})
	})
	mux.HandleFunc("GET /v1/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(ValidateResponse{Valid: true, UserID: "u-1", Role: "analyst"})
	})
	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLogin(t *testing.T) {
	srv := newStubServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		bundle, err := client.Login(ctx, "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		require.Equal(t, "access", bundle.AccessToken)
		require.Equal(t, "analyst", bundle.Role)
	})

	t.Run("bad credentials map to ErrUnauthorized", func(t *testing.T) {
		_, err := client.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrUnauthorized)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "invalid_credentials", apiErr.Code)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})
}

func TestClientRefreshAndValidate(t *testing.T) {
	srv := newStubServer(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	bundle, err := client.Refresh(ctx, "refresh")
	require.NoError(t, err)
	require.Equal(t, "access-2", bundle.AccessToken)

	res, err := client.ValidateToken(ctx, "access")
	require.NoError(t, err)
	require.True(t, res.Valid)

	_, err = client.ValidateToken(ctx, "stale")
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, client.Logout(ctx, "access"))
}
