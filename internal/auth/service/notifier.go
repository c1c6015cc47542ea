package service

import (
	"context"
	"time"
)

// Event priorities mirror the external notification dispatcher's levels.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Event types emitted by the auth service.
const (
	EventUserCreated   = "user.created"
	EventAccountLocked = "account.locked"
)

// Event is a security notification handed to the external Notifier.
type Event struct {
	Type     string    `json:"type"`
	Priority string    `json:"priority"`
	UserID   string    `json:"user_id,omitempty"`
	Email    string    `json:"email,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Notifier delivers events best-effort. Failures are logged and swallowed by
// the caller; they never affect the user-facing response.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
