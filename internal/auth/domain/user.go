package domain

import (
	"time"

	"github.com/monitordb/auth/internal/auth/rbac"
)

// Status is the lifecycle state of a user account. Only Active accounts can
// authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User is the identity record owned by the credential store. It is mutated
// only through the auth service operations.
type User struct {
	ID           string
	Email        string // unique, lowercased and trimmed
	PasswordHash string // argon2id PHC encoded
	Role         rbac.Role
	Status       Status

	FailedLoginAttempts int
	LockedUntil         *time.Time // set iff the account is locked
	LastLogin           *time.Time

	Metadata UserMetadata

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserMetadata is the auxiliary block carried alongside the account.
type UserMetadata struct {
	PasswordChangedAt  *time.Time `json:"password_changed_at,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	EmailVerified      bool       `json:"email_verified"`
}

// Locked reports whether the account is locked at the given instant.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserPublic is the externally visible projection of a User. It never carries
// the password hash or lockout counters.
type UserPublic struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          rbac.Role  `json:"role"`
	Status        Status     `json:"status"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Public returns the externally visible projection of u.
func (u *User) Public() UserPublic {
	return UserPublic{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Status:        u.Status,
		LastLogin:     u.LastLogin,
		EmailVerified: u.Metadata.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
