package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateStrength(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		policy     Policy
		violations int
	}{
		{"compliant", "Str0ng!pass", DefaultPolicy, 0},
		{"too short", "S0r!t", DefaultPolicy, 1},
		{"missing upper", "weak1pass!", DefaultPolicy, 1},
		{"missing lower", "WEAK1PASS!", DefaultPolicy, 1},
		{"missing digit", "Weakpass!!", DefaultPolicy, 1},
		{"missing special", "Weak1passX", DefaultPolicy, 1},
		{"everything wrong", "abc", DefaultPolicy, 4},
		{"empty", "", DefaultPolicy, 5},
		{"relaxed policy accepts anything", "abc", Policy{MinLength: 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStrength(tt.password, tt.policy)
			require.Len(t, got, tt.violations, "violations: %v", got)
		})
	}
}

func TestValidateStrengthMessagesAreItemized(t *testing.T) {
	got := ValidateStrength("short", DefaultPolicy)

	require.Contains(t, got, "password must be at least 8 characters long")
	require.Contains(t, got, "password must contain at least one uppercase letter")
	require.Contains(t, got, "password must contain at least one digit")
	require.Contains(t, got, "password must contain at least one special character")
}
