package domain

import "github.com/monitordb/auth/internal/auth/rbac"

// TokenBundle is what a successful login or refresh returns.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"` // always "bearer"
	ExpiresIn    int64     `json:"expires_in"` // access-token lifetime in seconds
	UserID       string    `json:"user_id"`
	Role         rbac.Role `json:"role"`
}
