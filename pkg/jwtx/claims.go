// Package jwtx issues and verifies the signed bearer tokens that carry
// identity, role, and permission claims between the auth service and its
// consumers.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes short-lived access tokens from the longer-lived
// refresh tokens used solely to mint new access tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Default token lifetimes. Access tokens stay short so a leaked token has a
// narrow window; refresh tokens trade that for user convenience.
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the token payload. Permissions are a snapshot taken at issuance;
// a role change server-side does not touch tokens already in the wild.
type Claims struct {
	jwt.RegisteredClaims

	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	TokenType   TokenType `json:"token_type"`
}

// Identity is the caller-supplied part of the claims. The signer fills in
// issuer, timestamps, and the jti.
type Identity struct {
	UserID      string
	Email       string
	Role        string
	Permissions []string
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
