package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEmpty(t, a)

	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "tokens must be unique")

	_, err = GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("token-one")
	fp2 := FingerprintToken("token-one")
	fp3 := FingerprintToken("token-two")

	require.Equal(t, fp1, fp2, "fingerprint is deterministic")
	require.NotEqual(t, fp1, fp3)

	// base64url of SHA-256, no padding
	require.Len(t, fp1, 43)
}
