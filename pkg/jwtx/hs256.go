package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrNotYet     = errors.New("jwtx: token not yet valid")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrTokenType  = errors.New("jwtx: unexpected token type")
)

// MinSecretLength rejects secrets too short to resist brute force.
const MinSecretLength = 32

// Signer mints signed tokens for an identity.
type Signer interface {
	Issue(id Identity, typ TokenType) (string, Claims, error)
}

// Verifier checks a token's signature, lifetime, issuer, and type.
// Verification is pure: no I/O, safe under unbounded concurrency.
type Verifier interface {
	Verify(token string, expect TokenType) (*Claims, error)
}

// HS256 signs and verifies tokens with a single process-wide symmetric
// secret. It implements both Signer and Verifier.
type HS256 struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewHS256 builds an HS256 signer/verifier. Zero TTLs fall back to the
// package defaults.
func NewHS256(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwtx: secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	if accessTTL >= refreshTTL {
		return nil, fmt.Errorf("jwtx: access TTL %v must be shorter than refresh TTL %v", accessTTL, refreshTTL)
	}

	return &HS256{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// TTL returns the configured lifetime for the given token type.
func (h *HS256) TTL(typ TokenType) time.Duration {
	if typ == TokenTypeRefresh {
		return h.refreshTTL
	}
	return h.accessTTL
}

// Issue signs a token of the given type for id, stamping iat/nbf to now,
// exp by token type, and a fresh jti.
func (h *HS256) Issue(id Identity, typ TokenType) (string, Claims, error) {
	now := time.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TTL(typ))),
			ID:        NewJTI(),
		},
		Email:       id.Email,
		Role:        id.Role,
		Permissions: id.Permissions,
		TokenType:   typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}

	return signed, claims, nil
}

// Verify parses and validates token, then checks issuer and the expected
// token type. An expired token always surfaces ErrExpired, never another
// kind.
func (h *HS256) Verify(token string, expect TokenType) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return nil, ErrIssuer
	}
	if claims.TokenType != expect {
		return nil, ErrTokenType
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYet
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
