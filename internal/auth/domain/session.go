package domain

import "time"

// Session records one successful login for audit and bulk invalidation. It
// stores a deterministic fingerprint of the refresh token, never the token
// itself, and it does not participate in per-request authorization.
type Session struct {
	ID               string
	UserID           string
	TokenFingerprint string // base64url SHA-256 of the refresh token
	IP               string
	UserAgent        string

	IsActive  bool
	ExpiresAt time.Time
	LogoutAt  *time.Time

	CreatedAt time.Time
}
