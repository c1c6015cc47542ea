package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// The service layer is the only place low-level store and crypto failures
// are classified into this taxonomy. Handlers switch on these with
// errors.Is/As and never see raw store errors.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrAccountLocked   = errors.New("account_locked")
	ErrAccountInactive = errors.New("account_inactive")
	ErrWeakPassword    = errors.New("weak_password")
	ErrDuplicateEmail  = errors.New("duplicate_email")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrUserNotFound    = errors.New("user_not_found")
)

// AccountLockedError carries the unlock time alongside ErrAccountLocked.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account_locked until %s", e.Until.Format(time.RFC3339))
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }

// WeakPasswordError carries the itemized policy violations alongside
// ErrWeakPassword.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return "weak_password: " + strings.Join(e.Violations, "; ")
}

func (e *WeakPasswordError) Unwrap() error { return ErrWeakPassword }
