package authsdk

import (
	"errors"
	"fmt"
)

// ErrUnauthorized covers 401 responses: bad credentials or a bad token.
var ErrUnauthorized = errors.New("authsdk: unauthorized")

// APIError is a non-2xx response carrying the server's error payload.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Violations []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authsdk: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps 401 responses onto ErrUnauthorized so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}
