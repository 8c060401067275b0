package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is how long an issued token stays valid.
const DefaultTokenLifetime = time.Hour

var signingMethod = jwt.SigningMethodHS256

// TokenManager signs and verifies HS256 session tokens with one shared
// secret. It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithLifetime overrides DefaultTokenLifetime. Non-positive values are ignored.
func WithLifetime(d time.Duration) TokenOption {
	return func(m *TokenManager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

// WithClock replaces time.Now for both issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager copies secret; an empty secret yields a manager whose
// Issue and Verify return common.ErrorConfiguration.
func NewTokenManager(secret []byte, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret:   append([]byte(nil), secret...),
		lifetime: DefaultTokenLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configured reports whether a signing secret is present.
func (m *TokenManager) Configured() bool {
	return m != nil && len(m.secret) > 0
}

// Lifetime returns the validity window applied to new tokens.
func (m *TokenManager) Lifetime() time.Duration {
	return m.lifetime
}

// Issue returns a signed token for the given identity.
func (m *TokenManager) Issue(subject, email string, role Role) (string, error) {
	if !m.Configured() {
		return "", fmt.Errorf("%w: signing secret is not set", common.ErrorConfiguration)
	}

	now := m.now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}
	if !claims.complete() {
		return "", fmt.Errorf("%w: subject, email and a valid role are required", ErrMalformedClaims)
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks, in order: token structure, signature, expiry and the
// presence of the identity claims. The returned Claims must be treated as
// read-only.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	if !m.Configured() {
		return nil, fmt.Errorf("%w: signing secret is not set", common.ErrorConfiguration)
	}
	if strings.TrimSpace(token) == "" || strings.Count(token, ".") != 2 {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}

	if !claims.complete() {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

// classify maps jwt parser errors onto the verification taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}
}
