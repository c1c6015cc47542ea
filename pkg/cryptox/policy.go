package cryptox

import (
	"fmt"
	"unicode"
)

// Policy configures which password-strength rules are enforced.
type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPolicy is the service-wide default: 8+ characters with at least one
// uppercase letter, one lowercase letter, one digit, and one special
// character.
var DefaultPolicy = Policy{
	MinLength:      8,
	RequireUpper:   true,
	RequireLower:   true,
	RequireDigit:   true,
	RequireSpecial: true,
}

// ValidateStrength checks password against policy and returns one message per
// unmet rule. An empty slice means the password is acceptable. The check is
// side-effect free.
func ValidateStrength(password string, policy Policy) []string {
	var violations []string

	if policy.MinLength > 0 && len(password) < policy.MinLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters long", policy.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if policy.RequireLower && !hasLower {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if policy.RequireDigit && !hasDigit {
		violations = append(violations, "password must contain at least one digit")
	}
	if policy.RequireSpecial && !hasSpecial {
		violations = append(violations, "password must contain at least one special character")
	}

	return violations
}
