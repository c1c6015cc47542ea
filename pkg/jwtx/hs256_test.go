package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestHS256(t *testing.T) *HS256 {
	t.Helper()

	h, err := NewHS256(testSecret, "auth-test", time.Minute, time.Hour)
	require.NoError(t, err)
	return h
}

func TestNewHS256Validation(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		_, err := NewHS256([]byte("short"), "iss", time.Minute, time.Hour)
		require.Error(t, err)
	})

	t.Run("rejects access TTL not shorter than refresh TTL", func(t *testing.T) {
		_, err := NewHS256(testSecret, "iss", time.Hour, time.Hour)
		require.Error(t, err)
	})

	t.Run("zero TTLs fall back to defaults", func(t *testing.T) {
		h, err := NewHS256(testSecret, "iss", 0, 0)
		require.NoError(t, err)
		require.Equal(t, DefaultAccessTokenTTL, h.TTL(TokenTypeAccess))
		require.Equal(t, DefaultRefreshTokenTTL, h.TTL(TokenTypeRefresh))
	})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	h := newTestHS256(t)

	id := Identity{
		UserID:      "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Email:       "alice@example.com",
		Role:        "analyst",
		Permissions: []string{"client:read", "transaction:read"},
	}

	token, issued, err := h.Issue(id, TokenTypeAccess)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, issued.ID, "jti is set")

	claims, err := h.Verify(token, TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, id.UserID, claims.Subject)
	require.Equal(t, id.Email, claims.Email)
	require.Equal(t, id.Role, claims.Role)
	require.Equal(t, id.Permissions, claims.Permissions)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
	require.Equal(t, issued.ID, claims.ID)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	h := newTestHS256(t)

	refresh, _, err := h.Issue(Identity{UserID: "u1"}, TokenTypeRefresh)
	require.NoError(t, err)

	_, err = h.Verify(refresh, TokenTypeAccess)
	require.ErrorIs(t, err, ErrTokenType)

	access, _, err := h.Issue(Identity{UserID: "u1"}, TokenTypeAccess)
	require.NoError(t, err)

	_, err = h.Verify(access, TokenTypeRefresh)
	require.ErrorIs(t, err, ErrTokenType)
}

func TestVerifyExpiredAlwaysErrExpired(t *testing.T) {
	h := newTestHS256(t)

	// Hand-craft a token whose exp is in the past.
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auth-test",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			ID:        NewJTI(),
		},
		TokenType: TokenTypeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = h.Verify(token, TokenTypeAccess)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	h := newTestHS256(t)

	other, err := NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "auth-test", time.Minute, time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue(Identity{UserID: "u1"}, TokenTypeAccess)
	require.NoError(t, err)

	_, err = h.Verify(token, TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	h := newTestHS256(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := h.Verify(tok, TokenTypeAccess)
		require.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	h := newTestHS256(t)

	other, err := NewHS256(testSecret, "someone-else", time.Minute, time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue(Identity{UserID: "u1"}, TokenTypeAccess)
	require.NoError(t, err)

	_, err = h.Verify(token, TokenTypeAccess)
	require.ErrorIs(t, err, ErrIssuer)
}
